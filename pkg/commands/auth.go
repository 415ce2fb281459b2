package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dayplan/pkg/api"
)

// Login prompts for whatever is missing and stores the session.
func Login(ctx context.Context, env *Env, email string) error {
	var err error
	if email == "" {
		if email, err = env.prompt("Email: "); err != nil {
			return err
		}
	}
	password, err := env.promptSecret("Password: ")
	if err != nil {
		return err
	}

	res := env.Sessions.Login(ctx, api.Credentials{Email: strings.TrimSpace(email), Password: password})
	if !res.OK {
		return fmt.Errorf("login failed: %s", res.Message)
	}
	fmt.Fprintf(env.Out, "Logged in as %s\n", displayName(res.Session.User))
	return nil
}

// Logout forgets the stored session.
func Logout(env *Env) {
	env.Sessions.Logout()
	fmt.Fprintln(env.Out, "Logged out")
}

// Whoami prints the user of the restored session.
func Whoami(ctx context.Context, env *Env) error {
	s, err := env.RequireSession(ctx)
	if err != nil {
		return err
	}
	u := s.User
	if u.Name != "" {
		fmt.Fprintf(env.Out, "%s <%s>\n", u.Name, u.Email)
	} else {
		fmt.Fprintln(env.Out, u.Email)
	}
	return nil
}

// Signup registers an email account. The password is asked twice.
func Signup(ctx context.Context, env *Env, name, email string) error {
	var err error
	if name == "" {
		if name, err = env.prompt("Name: "); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = env.prompt("Email: "); err != nil {
			return err
		}
	}
	password, err := env.promptSecret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := env.promptSecret("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	u, err := env.Client.Signup(ctx, api.SignupRequest{Name: name, Email: email, Password: password, LoginMethod: "email"})
	if err != nil {
		return fmt.Errorf("signup failed: %s", api.Message(err))
	}
	fmt.Fprintf(env.Out, "Account created for %s. Run `dayplan login` to sign in.\n", u.Email)
	return nil
}

func displayName(u api.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
