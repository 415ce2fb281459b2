// Package commands implements the scriptable subcommands on top of the
// backend client and the session store.
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
	"dayplan/pkg/session"
)

// ErrNotLoggedIn is returned by commands that need a session when none
// could be restored.
var ErrNotLoggedIn = errors.New("not logged in: run `dayplan login` first")

// Env is what every command runs against.
type Env struct {
	Client   *api.Client
	Sessions *session.Store
	Norm     datenorm.Normalizer
	Now      func() time.Time
	In       io.Reader
	Out      io.Writer

	reader *bufio.Reader
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) today() datenorm.CalendarDay {
	return e.Norm.Today(e.now())
}

// RequireSession restores the stored session and fails if there is none.
func (e *Env) RequireSession(ctx context.Context) (session.Session, error) {
	if s, ok := e.Sessions.Current(); ok {
		return s, nil
	}
	if err := e.Sessions.Restore(ctx); err != nil {
		return session.Session{}, err
	}
	s, ok := e.Sessions.Current()
	if !ok {
		return session.Session{}, ErrNotLoggedIn
	}
	return s, nil
}

// notFound rewrites a 404 from the backend into a message naming the id.
func notFound(what, id string, err error) error {
	var e *api.Error
	if errors.Is(err, api.ErrStatus) && errors.As(err, &e) && e.Status == http.StatusNotFound {
		return fmt.Errorf("no %s with id %s: %w", what, id, err)
	}
	return err
}

// prompt writes label and reads one line.
func (e *Env) prompt(label string) (string, error) {
	fmt.Fprint(e.Out, label)
	if e.reader == nil {
		e.reader = bufio.NewReader(e.In)
	}
	line, err := e.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a line without echo when input is a terminal.
func (e *Env) promptSecret(label string) (string, error) {
	f, ok := e.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return e.prompt(label)
	}
	fmt.Fprint(e.Out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(e.Out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// confirm asks a y/N question.
func (e *Env) confirm(question string) (bool, error) {
	answer, err := e.prompt(question + " (y/N): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
