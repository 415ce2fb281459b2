package main

import (
	"os"

	"github.com/joho/godotenv"

	"dayplan/pkg/cli"
)

func main() {
	// Values in .env become DAYPLAN_* overrides; a missing file is fine.
	_ = godotenv.Load()

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
