package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dayplan/pkg/api"
)

type memStorage struct {
	mu      sync.Mutex
	data    map[string]string
	failSet string
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string]string{}}
}

func (m *memStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failSet {
		return errors.New("disk full")
	}
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStorage) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

type fakeAuth struct {
	login   func(ctx context.Context, creds api.Credentials) (api.LoginResult, error)
	me      func(ctx context.Context, token string) (api.User, error)
	meCalls int
}

func (f *fakeAuth) Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
	return f.login(ctx, creds)
}

func (f *fakeAuth) Me(ctx context.Context, token string) (api.User, error) {
	f.meCalls++
	return f.me(ctx, token)
}

var kim = api.User{ID: "u1", Name: "Kim", Email: "x@x.com"}

func okAuth() *fakeAuth {
	return &fakeAuth{
		login: func(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
			u := kim
			return api.LoginResult{Token: "tok-1", User: &u}, nil
		},
		me: func(ctx context.Context, token string) (api.User, error) {
			if token != "tok-1" {
				return api.User{}, &api.Error{Kind: api.KindAuth, Status: 401}
			}
			return kim, nil
		},
	}
}

func TestLoginThenLogout(t *testing.T) {
	storage := newMemStorage()
	s := New(okAuth(), storage)

	var events []Event
	unsubscribe := s.Subscribe(func(e Event) { events = append(events, e) })
	defer unsubscribe()

	res := s.Login(context.Background(), api.Credentials{Email: "x@x.com", Password: "pw"})
	if !res.OK {
		t.Fatalf("expected login to succeed, got %q", res.Message)
	}
	sess, ok := s.Current()
	if !ok || sess.Token != "tok-1" || sess.User.ID != "u1" {
		t.Fatalf("unexpected session %+v ok=%v", sess, ok)
	}
	if tok, _, _ := storage.Get(TokenKey); tok != "tok-1" {
		t.Fatalf("expected persisted token, got %q", tok)
	}
	if raw, _, _ := storage.Get(UserKey); raw == "" {
		t.Fatalf("expected persisted user")
	}
	bearer, err := s.Token()
	if err != nil || bearer.AccessToken != "tok-1" {
		t.Fatalf("unexpected token source result %+v %v", bearer, err)
	}

	s.Logout()
	if _, ok := s.Current(); ok {
		t.Fatalf("expected no session after logout")
	}
	if storage.len() != 0 {
		t.Fatalf("expected storage cleared, got %v", storage.data)
	}
	if _, err := s.Token(); !errors.Is(err, api.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	if len(events) != 2 || events[0].Kind != LoggedIn || events[1].Kind != LoggedOut || events[1].Session != nil {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestLoginRejectedLeavesStateUntouched(t *testing.T) {
	storage := newMemStorage()
	auth := okAuth()
	auth.login = func(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
		return api.LoginResult{}, &api.Error{Kind: api.KindAuth, Status: 401, Message: "invalid credentials"}
	}
	s := New(auth, storage)
	notified := 0
	s.Subscribe(func(Event) { notified++ })

	res := s.Login(context.Background(), api.Credentials{Email: "x@x.com", Password: "bad"})
	if res.OK || res.Message == "" {
		t.Fatalf("expected failure with message, got %+v", res)
	}
	if !errors.Is(res.Err, api.ErrAuth) {
		t.Fatalf("expected auth error, got %v", res.Err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("expected no session")
	}
	if storage.len() != 0 {
		t.Fatalf("nothing may be persisted on failure, got %v", storage.data)
	}
	if notified != 0 {
		t.Fatalf("failed login must not notify")
	}
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	auth := okAuth()
	auth.login = func(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
		t.Fatalf("backend must not be called")
		return api.LoginResult{}, nil
	}
	res := New(auth, newMemStorage()).Login(context.Background(), api.Credentials{Email: "x@x.com"})
	if res.OK || !errors.Is(res.Err, api.ErrValidation) {
		t.Fatalf("expected validation failure, got %+v", res)
	}
}

func TestLoginResolvesUserWhenBodyHasNone(t *testing.T) {
	auth := okAuth()
	auth.login = func(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
		return api.LoginResult{Token: "tok-1"}, nil
	}
	s := New(auth, newMemStorage())
	res := s.Login(context.Background(), api.Credentials{Email: "x@x.com", Password: "pw"})
	if !res.OK || res.Session.User.ID != "u1" || auth.meCalls != 1 {
		t.Fatalf("expected user resolved through /users/me, got %+v (me calls %d)", res, auth.meCalls)
	}
}

func TestRestoreMatchesLoginShape(t *testing.T) {
	storage := newMemStorage()
	first := New(okAuth(), storage)
	loginRes := first.Login(context.Background(), api.Credentials{Email: "x@x.com", Password: "pw"})

	second := New(okAuth(), storage)
	var got []Event
	second.Subscribe(func(e Event) { got = append(got, e) })
	if err := second.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	sess, ok := second.Current()
	if !ok || sess != loginRes.Session {
		t.Fatalf("expected restored session %+v, got %+v ok=%v", loginRes.Session, sess, ok)
	}
	if len(got) != 1 || got[0].Kind != Restored || got[0].Session == nil {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestRestoreFailureClearsStorage(t *testing.T) {
	storage := newMemStorage()
	storage.Set(TokenKey, "stale")
	storage.Set(UserKey, `{"id":"u1"}`)

	s := New(okAuth(), storage)
	var got []Event
	s.Subscribe(func(e Event) { got = append(got, e) })
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("expected no session")
	}
	if storage.len() != 0 {
		t.Fatalf("expected storage cleared, got %v", storage.data)
	}
	if len(got) != 1 || got[0].Kind != Restored || got[0].Session != nil {
		t.Fatalf("expected one empty restore event, got %+v", got)
	}
}

func TestRestoreWithoutTokenNeedsNoNetwork(t *testing.T) {
	auth := okAuth()
	s := New(auth, newMemStorage())
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if auth.meCalls != 0 {
		t.Fatalf("expected no /users/me call")
	}
}

func TestRestoreClearsExpiredJWTWithoutNetwork(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	storage := newMemStorage()
	storage.Set(TokenKey, signed)
	auth := okAuth()
	s := New(auth, storage, WithClock(func() time.Time { return now }))
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if auth.meCalls != 0 {
		t.Fatalf("expired token must not be sent to the backend")
	}
	if storage.len() != 0 {
		t.Fatalf("expected storage cleared")
	}
}

func TestExpiredIgnoresOpaqueTokens(t *testing.T) {
	now := time.Now()
	if expired("opaque-token", now) {
		t.Fatalf("opaque token must not be treated as expired")
	}
	fresh, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("k"))
	if expired(fresh, now) {
		t.Fatalf("fresh token reported expired")
	}
}

func TestLogoutSupersedesPendingLogin(t *testing.T) {
	storage := newMemStorage()
	started := make(chan struct{})
	auth := okAuth()
	auth.login = func(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
		close(started)
		<-ctx.Done()
		return api.LoginResult{}, &api.Error{Kind: api.KindTransport, Err: ctx.Err()}
	}
	s := New(auth, storage)

	done := make(chan Result, 1)
	go func() {
		done <- s.Login(context.Background(), api.Credentials{Email: "x@x.com", Password: "pw"})
	}()
	<-started
	s.Logout()

	res := <-done
	if res.OK || !errors.Is(res.Err, ErrSuperseded) {
		t.Fatalf("expected superseded login, got %+v", res)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("superseded login must not leave a session")
	}
	if storage.len() != 0 {
		t.Fatalf("superseded login must not persist anything")
	}
}

func TestNewerLoginSupersedesOlder(t *testing.T) {
	storage := newMemStorage()
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	auth := okAuth()
	auth.login = func(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
		if creds.Email == "slow@x.com" {
			close(firstStarted)
			<-release
			u := api.User{ID: "slow", Email: creds.Email}
			return api.LoginResult{Token: "slow-token", User: &u}, nil
		}
		u := kim
		return api.LoginResult{Token: "tok-1", User: &u}, nil
	}
	s := New(auth, storage)

	slow := make(chan Result, 1)
	go func() {
		slow <- s.Login(context.Background(), api.Credentials{Email: "slow@x.com", Password: "pw"})
	}()
	<-firstStarted

	fast := s.Login(context.Background(), api.Credentials{Email: "x@x.com", Password: "pw"})
	if !fast.OK {
		t.Fatalf("expected newer login to succeed, got %+v", fast)
	}
	close(release)

	if res := <-slow; res.OK || !errors.Is(res.Err, ErrSuperseded) {
		t.Fatalf("expected older login discarded, got %+v", res)
	}
	sess, _ := s.Current()
	if sess.Token != "tok-1" {
		t.Fatalf("expected newer session to win, got %+v", sess)
	}
	if tok, _, _ := storage.Get(TokenKey); tok != "tok-1" {
		t.Fatalf("expected newer token persisted, got %q", tok)
	}
}

func TestReloginStorageFailureKeepsPreviousSession(t *testing.T) {
	storage := newMemStorage()
	auth := okAuth()
	store := New(auth, storage)

	if res := store.Login(context.Background(), api.Credentials{Email: "x@x.com", Password: "pw"}); !res.OK {
		t.Fatalf("first login failed: %s", res.Message)
	}
	oldUser := storage.data[UserKey]

	auth.login = func(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
		u := api.User{ID: "u2", Email: "y@x.com"}
		return api.LoginResult{Token: "tok-2", User: &u}, nil
	}
	storage.failSet = UserKey

	res := store.Login(context.Background(), api.Credentials{Email: "y@x.com", Password: "pw"})
	if res.OK {
		t.Fatalf("expected login to fail when the user cannot be stored")
	}
	if got := storage.data[TokenKey]; got != "tok-1" {
		t.Fatalf("expected stored token to be restored to tok-1, got %q", got)
	}
	if got := storage.data[UserKey]; got != oldUser {
		t.Fatalf("expected stored user unchanged, got %q", got)
	}
	sess, ok := store.Current()
	if !ok || sess.Token != "tok-1" || sess.User.Email != "x@x.com" {
		t.Fatalf("expected previous session in memory, got %+v ok=%v", sess, ok)
	}
}

func TestFirstLoginStorageFailureLeavesNothingStored(t *testing.T) {
	storage := newMemStorage()
	storage.failSet = UserKey
	store := New(okAuth(), storage)

	if res := store.Login(context.Background(), api.Credentials{Email: "x@x.com", Password: "pw"}); res.OK {
		t.Fatalf("expected login to fail")
	}
	if storage.len() != 0 {
		t.Fatalf("expected empty storage, got %v", storage.data)
	}
	if _, ok := store.Current(); ok {
		t.Fatalf("expected no session")
	}
}
