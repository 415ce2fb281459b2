package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"dayplan/pkg/api"
	"dayplan/pkg/session"
	"dayplan/pkg/utils"
)

const (
	loginEmailField = iota
	loginPasswordField
)

const (
	signupNameField = iota
	signupEmailField
	signupPasswordField
	signupConfirmField
)

// authForm is the login or signup form plus its in-flight state.
type authForm struct {
	form
	submitting bool
}

func newLoginForm() authForm {
	return authForm{form: newForm(
		formField{label: "Email", placeholder: "you@example.com"},
		formField{label: "Password", placeholder: "password", password: true},
	)}
}

func newSignupForm() authForm {
	return authForm{form: newForm(
		formField{label: "Name", placeholder: "Your name"},
		formField{label: "Email", placeholder: "you@example.com"},
		formField{label: "Password", placeholder: "password", password: true},
		formField{label: "Confirm password", placeholder: "password again", password: true},
	)}
}

func (f *authForm) reset() {
	f.form.reset()
	f.submitting = false
}

type loginDoneMsg struct{ res session.Result }

type signupDoneMsg struct {
	email string
	err   error
}

func (a *App) updateLogin(msg tea.KeyMsg) tea.Cmd {
	f := &a.login
	if key.Matches(msg, a.keyMap.GoSignup) {
		a.signup.reset()
		return a.navigate(RouteSignup)
	}
	if f.submitting {
		return nil
	}
	submit, cancel, cmd := f.handleKey(msg)
	if cancel {
		f.reset()
		return nil
	}
	if !submit {
		return cmd
	}

	creds := api.Credentials{Email: f.value(loginEmailField), Password: f.value(loginPasswordField)}
	if creds.Email == "" || creds.Password == "" {
		f.err = "email and password are required"
		return nil
	}
	f.err = ""
	f.submitting = true
	a.notice = ""
	ctx, sessions := a.ctx, a.sessions
	return func() tea.Msg {
		return loginDoneMsg{res: sessions.Login(ctx, creds)}
	}
}

func (a *App) onLoginDone(msg loginDoneMsg) tea.Cmd {
	a.login.submitting = false
	switch {
	case msg.res.OK:
		utils.Log("login finished", "user", msg.res.Session.User.Email)
	case errors.Is(msg.res.Err, session.ErrSuperseded):
		// A newer transition owns the outcome.
	default:
		a.login.err = msg.res.Message
	}
	return nil
}

func (a *App) updateSignup(msg tea.KeyMsg) tea.Cmd {
	f := &a.signup
	if key.Matches(msg, a.keyMap.GoSignup) {
		return a.navigate(RouteLogin)
	}
	if f.submitting {
		return nil
	}
	submit, cancel, cmd := f.handleKey(msg)
	if cancel {
		return a.navigate(RouteLogin)
	}
	if !submit {
		return cmd
	}

	req := api.SignupRequest{
		Name:        f.value(signupNameField),
		Email:       f.value(signupEmailField),
		Password:    f.value(signupPasswordField),
		LoginMethod: "email",
	}
	if msg := validateSignup(req, f.value(signupConfirmField)); msg != "" {
		f.err = msg
		return nil
	}
	f.err = ""
	f.submitting = true
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		_, err := backend.Signup(ctx, req)
		return signupDoneMsg{email: req.Email, err: err}
	}
}

func validateSignup(req api.SignupRequest, confirm string) string {
	switch {
	case req.Name == "" || req.Email == "" || req.Password == "":
		return "name, email and password are required"
	case !strings.Contains(req.Email, "@"):
		return "enter a valid email address"
	case req.Password != confirm:
		return "passwords do not match"
	}
	return ""
}

func (a *App) onSignupDone(msg signupDoneMsg) tea.Cmd {
	a.signup.submitting = false
	if msg.err != nil {
		utils.LogError("signup failed", msg.err)
		a.signup.err = api.Message(msg.err)
		return nil
	}
	a.signup.reset()
	a.login.reset()
	a.login.set(loginEmailField, msg.email)
	a.login.focus(loginPasswordField)
	cmd := a.navigate(RouteLogin)
	a.notice = "account created, please log in"
	return cmd
}
