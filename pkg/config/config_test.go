package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dayplan/pkg/api"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "cfg", "config.json")
	cfg, styles, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config written: %v", err)
	}
	if cfg.BaseURL != api.DefaultBaseURL {
		t.Fatalf("expected base url %q, got %q", api.DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", cfg.RequestTimeout)
	}
	if off, _ := cfg.Offset(); off != 9*time.Hour {
		t.Fatalf("expected +09:00 offset, got %v", off)
	}
	if cfg.Strategy() != api.TokenFromBody {
		t.Fatalf("expected body token strategy, got %q", cfg.Strategy())
	}
	if styles != DefaultStyles() {
		t.Fatalf("expected default styles, got %+v", styles)
	}
	if _, err := os.Stat(cfg.StylesFile); err != nil {
		t.Fatalf("expected styles file written: %v", err)
	}

	// Second load reads the file back unchanged.
	again, _, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.BaseURL != cfg.BaseURL || again.Database != cfg.Database {
		t.Fatalf("reload mismatch: %+v vs %+v", again, cfg)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.json")
	body := `{"base_url":"http://file.example","display_offset":"-05:00","token_source":"header","request_timeout":"3s","keymap":{"QuitApp":"x"},"styles_file":""}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAYPLAN_BASE_URL", "http://env.example")

	cfg, styles, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://env.example" {
		t.Fatalf("expected env override, got %q", cfg.BaseURL)
	}
	if off, _ := cfg.Offset(); off != -5*time.Hour {
		t.Fatalf("expected -5h, got %v", off)
	}
	if cfg.Strategy() != api.TokenFromHeader {
		t.Fatalf("expected header strategy, got %q", cfg.Strategy())
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %v", cfg.RequestTimeout)
	}
	if cfg.KeyMap["quitapp"] != "x" {
		t.Fatalf("expected keymap override, got %v", cfg.KeyMap)
	}
	if styles != DefaultStyles() {
		t.Fatalf("empty styles_file should fall back to defaults")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"offset", `{"display_offset":"+99:00"}`},
		{"token source", `{"token_source":"cookie"}`},
	}
	for _, tc := range cases {
		home := t.TempDir()
		t.Setenv("HOME", home)
		path := filepath.Join(home, "config.json")
		if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
