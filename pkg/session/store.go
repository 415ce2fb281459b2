// Package session holds the single source of truth for who is logged in.
//
// A Store keeps the bearer token and the user it resolves to, persists both
// in local storage, and notifies subscribers on every transition. At most
// one authentication transition (Login or Restore) is pending at a time:
// starting another one, or calling Logout, supersedes the pending call,
// whose result is then discarded.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"dayplan/pkg/api"
	"dayplan/pkg/utils"
)

// Keys under which the session is persisted.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// ErrSuperseded is reported by a Login or Restore whose result was discarded
// because a later transition started before it finished.
var ErrSuperseded = errors.New("superseded by a newer session change")

// Storage is the persistent key/value store the session lives in.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Authenticator is the slice of the backend the store needs.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error)
	Me(ctx context.Context, token string) (api.User, error)
}

// Session is an authenticated identity. Token and User are always set
// together.
type Session struct {
	Token string
	User  api.User
}

// EventKind names a session transition.
type EventKind int

const (
	Restored EventKind = iota + 1
	LoggedIn
	LoggedOut
)

func (k EventKind) String() string {
	switch k {
	case Restored:
		return "restored"
	case LoggedIn:
		return "logged in"
	case LoggedOut:
		return "logged out"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after each transition. Session is nil
// when nobody is logged in afterwards.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Result is what Login reports to its caller.
type Result struct {
	OK      bool
	Message string
	Session Session
	Err     error
}

// Store owns the current session.
type Store struct {
	auth    Authenticator
	storage Storage
	now     func() time.Time

	mu      sync.Mutex
	current *Session
	gen     uint64
	cancel  context.CancelFunc
	subs    map[int]func(Event)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a store with no session; call Restore to rehydrate it.
func New(auth Authenticator, storage Storage, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		storage: storage,
		now:     time.Now,
		subs:    make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the in-memory session. It never performs I/O.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Token implements oauth2.TokenSource over the live session.
func (s *Store) Token() (*oauth2.Token, error) {
	sess, ok := s.Current()
	if !ok {
		return nil, api.ErrUnauthenticated
	}
	return api.BearerToken(sess.Token), nil
}

// Subscribe registers fn for every future transition and returns a function
// that removes it. fn is called outside the store's lock.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Restore rehydrates the session from storage. A stored token that cannot
// be resolved to a user is cleared. It returns ErrSuperseded if another
// transition overtook it; otherwise nil, whether or not a session resulted.
func (s *Store) Restore(ctx context.Context) error {
	ctx, gen := s.begin(ctx)

	token, ok, err := s.storage.Get(TokenKey)
	if err != nil {
		utils.LogError("reading stored token", err)
	}
	if err != nil || !ok || token == "" {
		return s.finishRestore(gen, nil)
	}

	if expired(token, s.now()) {
		utils.Log("stored token expired, clearing")
		return s.finishRestore(gen, nil)
	}

	user, err := s.auth.Me(ctx, token)
	if err != nil {
		utils.LogError("resolving stored token", err)
		return s.finishRestore(gen, nil)
	}
	return s.finishRestore(gen, &Session{Token: token, User: user})
}

// Login authenticates with the backend. On failure the session and storage
// are left unchanged and Result.Message explains why.
func (s *Store) Login(ctx context.Context, creds api.Credentials) Result {
	if creds.Email == "" || creds.Password == "" {
		err := &api.Error{Kind: api.KindValidation, Message: "email and password are required"}
		return Result{Message: err.Message, Err: err}
	}

	ctx, gen := s.begin(ctx)

	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		return s.abort(gen, err)
	}
	user := res.User
	if user == nil {
		u, err := s.auth.Me(ctx, res.Token)
		if err != nil {
			return s.abort(gen, err)
		}
		user = &u
	}

	sess := &Session{Token: res.Token, User: *user}
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return failed(ErrSuperseded)
	}
	if err := s.persist(sess); err != nil {
		s.clearPending()
		s.mu.Unlock()
		return failed(err)
	}
	s.current = sess
	s.clearPending()
	event := Event{Kind: LoggedIn, Session: copySession(sess)}
	subs := s.subscribers()
	s.mu.Unlock()

	utils.Log("logged in", "user", sess.User.Email)
	notify(subs, event)
	return Result{OK: true, Session: *sess}
}

// Logout clears the session locally. It cancels any pending transition.
func (s *Store) Logout() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current = nil
	if err := s.storage.Delete(TokenKey, UserKey); err != nil {
		utils.LogError("clearing stored session", err)
	}
	subs := s.subscribers()
	s.mu.Unlock()

	utils.Log("logged out")
	notify(subs, Event{Kind: LoggedOut})
}

// begin supersedes any pending transition and starts a new one.
func (s *Store) begin(ctx context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

// abort ends a failed transition. A failure caused by being superseded is
// reported as such rather than as the underlying cancellation.
func (s *Store) abort(gen uint64, err error) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return failed(ErrSuperseded)
	}
	s.clearPending()
	return failed(err)
}

func (s *Store) clearPending() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Store) finishRestore(gen uint64, sess *Session) error {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.clearPending()
	if sess != nil {
		if err := s.persist(sess); err != nil {
			utils.LogError("persisting restored user", err)
		}
	} else if err := s.storage.Delete(TokenKey, UserKey); err != nil {
		utils.LogError("clearing stored session", err)
	}
	s.current = sess
	event := Event{Kind: Restored, Session: copySession(sess)}
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, event)
	return nil
}

// persist writes token and user. If the user cannot be written the
// previously stored token is put back, so storage never pairs the new token
// with the old user.
func (s *Store) persist(sess *Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	prevToken, hadToken, err := s.storage.Get(TokenKey)
	if err != nil {
		return err
	}
	if err := s.storage.Set(TokenKey, sess.Token); err != nil {
		return err
	}
	if err := s.storage.Set(UserKey, string(userJSON)); err != nil {
		var rollback error
		if hadToken {
			rollback = s.storage.Set(TokenKey, prevToken)
		} else {
			rollback = s.storage.Delete(TokenKey)
		}
		if rollback != nil {
			utils.LogError("rolling back stored token", rollback)
		}
		return err
	}
	return nil
}

func (s *Store) subscribers() []func(Event) {
	out := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Event), e Event) {
	for _, fn := range subs {
		fn(e)
	}
}

func copySession(sess *Session) *Session {
	if sess == nil {
		return nil
	}
	c := *sess
	return &c
}

func failed(err error) Result {
	msg := api.Message(err)
	if msg == "" {
		msg = "login failed"
	}
	return Result{Message: msg, Err: err}
}
