package session

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/malo-app/malo-web/internal/logger"
	"github.com/malo-app/malo-web/internal/model"
)

// CookieName is the browser cookie carrying the session id and notices.
const CookieName = "malo_session"

// userKey prefixes the stored account of every session.
const userKey = "user"

const sidValue = "sid"

func init() {
	// flashes are kept as []interface{} inside the gob-encoded cookie
	gob.Register([]interface{}{})
}

// Options tune the session cookie and stored account lifetime.
type Options struct {
	TTL    time.Duration
	Secure bool
}

// Manager is the session/auth context.  Login overwrites the stored
// account; callers that change a single field copy the current account
// first.
type Manager struct {
	cookies *sessions.CookieStore
	store   Store
	ttl     time.Duration
	now     func() time.Time
}

// NewManager signs cookies with secret and keeps accounts in store.
func NewManager(secret []byte, store Store, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	cs.MaxAge(int(opts.TTL / time.Second))
	return &Manager{cookies: cs, store: store, ttl: opts.TTL, now: time.Now}
}

// cookie returns the request's cookie session.  A cookie that fails
// verification is replaced by a fresh one.
func (m *Manager) cookie(r *http.Request) *sessions.Session {
	s, err := m.cookies.Get(r, CookieName)
	if err != nil {
		s, _ = m.cookies.New(r, CookieName)
	}
	return s
}

func storeKey(sid string) string { return userKey + ":" + sid }

// Load returns the raw stored account for r, or nil when the browser has
// no session.  A stored account whose token carries an expired "exp" claim
// is deleted and reported as absent.
func (m *Manager) Load(r *http.Request) ([]byte, error) {
	sid, _ := m.cookie(r).Values[sidValue].(string)
	if sid == "" {
		return nil, nil
	}
	raw, err := m.store.Get(r.Context(), storeKey(sid))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if acc, ok := decodeAccount(raw); ok && tokenExpired(acc.Token, m.now()) {
		logger.FromContext(r.Context()).Info("session token expired, dropping session")
		if err := m.store.Delete(r.Context(), storeKey(sid)); err != nil {
			return nil, fmt.Errorf("drop expired session: %w", err)
		}
		return nil, nil
	}
	return raw, nil
}

// Current returns the account of r's session.  A store failure counts as
// signed out.
func (m *Manager) Current(r *http.Request) (model.Account, bool) {
	raw, err := m.Load(r)
	if err != nil {
		return model.Account{}, false
	}
	return decodeAccount(raw)
}

// Login stores acc under a fresh session id and writes the cookie.  The
// previous session, if any, is removed.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, acc model.Account) error {
	raw, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	s := m.cookie(r)
	if old, _ := s.Values[sidValue].(string); old != "" {
		_ = m.store.Delete(r.Context(), storeKey(old))
	}
	sid := uuid.NewString()
	if err := m.store.Set(r.Context(), storeKey(sid), raw, m.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	s.Values[sidValue] = sid
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save cookie: %w", err)
	}
	*r = *r.WithContext(WithRaw(r.Context(), raw))
	return nil
}

// Update overwrites the stored account of the current session without
// rotating the id.  It falls back to Login when there is no session.
func (m *Manager) Update(w http.ResponseWriter, r *http.Request, acc model.Account) error {
	sid, _ := m.cookie(r).Values[sidValue].(string)
	if sid == "" {
		return m.Login(w, r, acc)
	}
	raw, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	if err := m.store.Set(r.Context(), storeKey(sid), raw, m.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	*r = *r.WithContext(WithRaw(r.Context(), raw))
	return nil
}

// Logout removes the stored account and clears the session id.  Pending
// notices survive so that a "signed out" message can still be shown.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	s := m.cookie(r)
	if sid, _ := s.Values[sidValue].(string); sid != "" {
		if err := m.store.Delete(r.Context(), storeKey(sid)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	delete(s.Values, sidValue)
	*r = *r.WithContext(WithRaw(r.Context(), nil))
	return s.Save(r, w)
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	s := m.cookie(r)
	s.AddFlash(msg)
	return s.Save(r, w)
}

// Flashes pops the queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	s := m.cookie(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if str, ok := f.(string); ok {
			out = append(out, str)
		}
	}
	return out, s.Save(r, w)
}

type rawKey struct{}

// WithRaw places the raw stored account in ctx for the outgoing API client.
func WithRaw(ctx context.Context, raw []byte) context.Context {
	return context.WithValue(ctx, rawKey{}, raw)
}

// RawFromContext returns what WithRaw stored.
func RawFromContext(ctx context.Context) []byte {
	raw, _ := ctx.Value(rawKey{}).([]byte)
	return raw
}

// AccountFromContext parses the raw account in ctx.  Malformed data is
// treated as no account.
func AccountFromContext(ctx context.Context) (model.Account, bool) {
	return decodeAccount(RawFromContext(ctx))
}

func decodeAccount(raw []byte) (model.Account, bool) {
	if len(raw) == 0 {
		return model.Account{}, false
	}
	var acc model.Account
	if err := json.Unmarshal(raw, &acc); err != nil {
		return model.Account{}, false
	}
	return acc, true
}

// ContextTokens reads the bearer token of the account in the request
// context.  It implements apiclient.TokenSource.
type ContextTokens struct{}

// Token returns "" when there is no account, the stored data is malformed
// or the account has no token.
func (ContextTokens) Token(ctx context.Context) string {
	acc, ok := AccountFromContext(ctx)
	if !ok {
		return ""
	}
	return acc.Token
}
