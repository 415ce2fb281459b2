package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"dayplan/pkg/api"
	"dayplan/pkg/commands"
)

// testNow is 2025-01-25 12:00 at +09:00.
var testNow = time.Date(2025, 1, 25, 3, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu        sync.Mutex
	nextID    int
	todos     []api.Todo
	schedules []api.Schedule
	signups   []api.SignupRequest
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/users/email-login":
		var creds api.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok",
			"user":  map[string]string{"_id": "u1", "name": "Kim", "email": creds.Email},
		})
		return

	case r.Method == http.MethodPost && r.URL.Path == "/users/user":
		var req api.SignupRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.signups = append(f.signups, req)
		writeJSON(w, http.StatusCreated, map[string]any{"user": map[string]string{"_id": "u2", "email": req.Email, "name": req.Name}})
		return
	}

	if r.Header.Get("Authorization") != "Bearer tok" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	todoID := strings.TrimPrefix(r.URL.Path, "/todos/todo/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/users/me":
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"_id": "u1", "name": "Kim", "email": "x@x.com"}})

	case r.Method == http.MethodGet && r.URL.Path == "/todos/todo":
		writeJSON(w, http.StatusOK, map[string]any{"todoAllData": f.todos})

	case r.Method == http.MethodPost && r.URL.Path == "/todos/todo":
		var t api.Todo
		json.NewDecoder(r.Body).Decode(&t)
		t.ID = f.id("t")
		f.todos = append(f.todos, t)
		writeJSON(w, http.StatusCreated, map[string]any{"todo": t})

	case r.Method == http.MethodPatch && todoID != r.URL.Path:
		var p api.TodoPatch
		json.NewDecoder(r.Body).Decode(&p)
		for i := range f.todos {
			if f.todos[i].ID == todoID && p.Status != nil {
				f.todos[i].Status = *p.Status
				writeJSON(w, http.StatusOK, map[string]any{"todo": f.todos[i]})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "todo not found"})

	case r.Method == http.MethodDelete && todoID != r.URL.Path:
		for i := range f.todos {
			if f.todos[i].ID == todoID {
				f.todos = append(f.todos[:i], f.todos[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "todo not found"})

	case r.Method == http.MethodGet && r.URL.Path == "/schedules/schedule":
		writeJSON(w, http.StatusOK, map[string]any{"schedules": f.schedules})

	case r.Method == http.MethodPost && r.URL.Path == "/schedules/schedule":
		var s api.Schedule
		json.NewDecoder(r.Body).Decode(&s)
		s.ID = f.id("s")
		f.schedules = append(f.schedules, s)
		writeJSON(w, http.StatusCreated, map[string]any{"schedule": s})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route"})
	}
}

type testEnv struct {
	dir     string
	config  string
	backend *fakeBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := map[string]any{
		"base_url":    srv.URL,
		"database":    filepath.Join(dir, "session.db"),
		"styles_file": "",
	}
	b, _ := json.Marshal(cfg)
	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, b, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &testEnv{dir: dir, config: configPath, backend: backend}
}

func runCLI(t *testing.T, env *testEnv, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&App{now: func() time.Time { return testNow }})

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.config}, args...))

	err := cmd.Execute()
	return outBuf.String(), err
}

func login(t *testing.T, env *testEnv) {
	t.Helper()
	out, err := runCLI(t, env, "pw\n", "login", "--email", "x@x.com")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if !strings.Contains(out, "Logged in as Kim") {
		t.Fatalf("unexpected login output %q", out)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "", "todo", "list")
	if !errors.Is(err, commands.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	_, err = runCLI(t, env, "bad\n", "login", "--email", "x@x.com")
	if err == nil || !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("expected rejected login, got %v", err)
	}
}

func TestSessionPersistsAcrossInvocations(t *testing.T) {
	env := newTestEnv(t)
	login(t, env)

	out, err := runCLI(t, env, "", "whoami")
	if err != nil {
		t.Fatalf("whoami error: %v", err)
	}
	if strings.TrimSpace(out) != "Kim <x@x.com>" {
		t.Fatalf("unexpected whoami output %q", out)
	}

	if _, err := runCLI(t, env, "", "logout"); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if _, err := runCLI(t, env, "", "whoami"); !errors.Is(err, commands.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn after logout, got %v", err)
	}
}

func TestTodoLifecycle(t *testing.T) {
	env := newTestEnv(t)
	login(t, env)

	if _, err := runCLI(t, env, "", "todo", "add", "buy", "milk", "+home", "--date", "2025-01-20"); err != nil {
		t.Fatalf("todo add error: %v", err)
	}
	if len(env.backend.todos) != 1 {
		t.Fatalf("expected one todo on the backend, got %d", len(env.backend.todos))
	}
	got := env.backend.todos[0]
	if got.Title != "buy milk" || got.Category != "home" || got.Status != api.StatusNotDone {
		t.Fatalf("unexpected todo %+v", got)
	}
	if want := "2025-01-19T15:00:00.000Z"; got.DueDate.String() != want {
		t.Fatalf("expected due %s, got %s", want, got.DueDate)
	}

	out, err := runCLI(t, env, "", "todo", "list")
	if err != nil {
		t.Fatalf("todo list error: %v", err)
	}
	if want := "t1  [!] 2025-01-20  buy milk +home"; !strings.Contains(out, want) {
		t.Fatalf("expected %q in list output %q", want, out)
	}

	if _, err := runCLI(t, env, "", "todo", "done", "t1"); err != nil {
		t.Fatalf("todo done error: %v", err)
	}
	_, err = runCLI(t, env, "", "todo", "delete", "nope")
	if !errors.Is(err, api.ErrStatus) || !strings.Contains(err.Error(), "no todo with id nope") {
		t.Fatalf("expected a not-found error naming the id, got %v", err)
	}
	if !env.backend.todos[0].Completed() {
		t.Fatalf("expected todo completed")
	}

	out, err = runCLI(t, env, "", "history", "list")
	if err != nil {
		t.Fatalf("history list error: %v", err)
	}
	if !strings.Contains(out, "20.01.2025:\n- [x] buy milk +home") {
		t.Fatalf("unexpected history output %q", out)
	}

	out, err = runCLI(t, env, "n\n", "todo", "purge", "--done")
	if err != nil || !strings.Contains(out, "Operation cancelled.") || len(env.backend.todos) != 1 {
		t.Fatalf("expected cancelled purge, out=%q err=%v", out, err)
	}
	out, err = runCLI(t, env, "", "todo", "purge", "--done", "--yes")
	if err != nil {
		t.Fatalf("todo purge error: %v", err)
	}
	if !strings.Contains(out, "Successfully deleted 1 todo(s)") || len(env.backend.todos) != 0 {
		t.Fatalf("unexpected purge result %q, remaining %d", out, len(env.backend.todos))
	}
}

func TestTodoImportAndHistoryExport(t *testing.T) {
	env := newTestEnv(t)
	login(t, env)

	list := filepath.Join(env.dir, "todos.txt")
	content := "10.01.2025:\n- [x] filed taxes +admin\n- [ ] call bank\n2025-02-01:\n- [ ] later\n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}

	out, err := runCLI(t, env, "", "todo", "import", list)
	if err != nil {
		t.Fatalf("todo import error: %v", err)
	}
	if !strings.Contains(out, "Successfully imported 3 todo(s)") {
		t.Fatalf("unexpected import output %q", out)
	}

	exported := filepath.Join(env.dir, "out", "history.json")
	if _, err := runCLI(t, env, "", "history", "export", exported); err != nil {
		t.Fatalf("history export error: %v", err)
	}
	b, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var entries []commands.HistoryEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected the completed and the overdue todo, got %+v", entries)
	}
	for _, e := range entries {
		if e.Day != "2025-01-10" {
			t.Fatalf("unexpected day in %+v", e)
		}
	}

	if _, err := runCLI(t, env, "", "history", "export", exported, "--type", "csv"); err == nil {
		t.Fatalf("expected unknown export type to fail")
	}
}

func TestScheduleAddListExport(t *testing.T) {
	env := newTestEnv(t)
	login(t, env)

	_, err := runCLI(t, env, "", "schedule", "add", "Standup", "--date", "2025-01-15", "--start", "10:00", "--end", "09:00")
	if err == nil || len(env.backend.schedules) != 0 {
		t.Fatalf("expected end-before-start to be rejected locally, err=%v", err)
	}

	if _, err := runCLI(t, env, "", "schedule", "add", "Standup", "--date", "2025-01-15", "--start", "09:00", "--end", "09:30"); err != nil {
		t.Fatalf("schedule add error: %v", err)
	}
	s := env.backend.schedules[0]
	if s.StartTime.String() != "2025-01-15T00:00:00.000Z" || s.EndTime.String() != "2025-01-15T00:30:00.000Z" {
		t.Fatalf("unexpected instants %s - %s", s.StartTime, s.EndTime)
	}

	out, err := runCLI(t, env, "", "schedule", "list", "--date", "2025-01-15")
	if err != nil {
		t.Fatalf("schedule list error: %v", err)
	}
	if !strings.Contains(out, "09:00-09:30  Standup") {
		t.Fatalf("unexpected list output %q", out)
	}

	ics := filepath.Join(env.dir, "standup.ics")
	if _, err := runCLI(t, env, "", "schedule", "export", "--ics", ics); err != nil {
		t.Fatalf("schedule export error: %v", err)
	}
	b, err := os.ReadFile(ics)
	if err != nil {
		t.Fatalf("read ics: %v", err)
	}
	if !strings.Contains(string(b), "SUMMARY:Standup") {
		t.Fatalf("unexpected ics:\n%s", b)
	}

	if _, err := runCLI(t, env, "", "schedule", "export", "--date", "2025-01-16"); err == nil {
		t.Fatalf("expected an empty export to fail")
	}

	if _, err := runCLI(t, env, "", "schedule", "add", "Review", "--date", "2025-01-16", "--start", "23:30", "--end", "23:59"); err != nil {
		t.Fatalf("schedule add error: %v", err)
	}
	out, err = runCLI(t, env, "", "schedule", "list", "--date", "2025-01-15", "--days", "2")
	if err != nil {
		t.Fatalf("schedule list --days error: %v", err)
	}
	if !strings.Contains(out, "2025-01-15:\n") || !strings.Contains(out, "2025-01-16:\n") || !strings.Contains(out, "23:30-23:59  Review") {
		t.Fatalf("unexpected multi-day output %q", out)
	}
	out, err = runCLI(t, env, "", "schedule", "list", "--date", "2025-01-15")
	if err != nil || strings.Contains(out, "Review") {
		t.Fatalf("single day must not include the next day, out=%q err=%v", out, err)
	}
}

func TestSignupPromptsAndChecksConfirmation(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "secret\nother\n", "signup", "--name", "Kim", "--email", "k@x.com")
	if err == nil || len(env.backend.signups) != 0 {
		t.Fatalf("expected mismatch to fail before any request, err=%v", err)
	}

	out, err := runCLI(t, env, "Kim\nk@x.com\nsecret\nsecret\n", "signup")
	if err != nil {
		t.Fatalf("signup error: %v", err)
	}
	if !strings.Contains(out, "Account created for k@x.com") {
		t.Fatalf("unexpected signup output %q", out)
	}
	if got := env.backend.signups[0]; got.LoginMethod != "email" || got.Password != "secret" {
		t.Fatalf("unexpected signup request %+v", got)
	}
}

func TestUnknownView(t *testing.T) {
	env := newTestEnv(t)
	if _, err := runCLI(t, env, "", "--view", "/nowhere"); err == nil {
		t.Fatalf("expected unknown view to fail")
	}
}
