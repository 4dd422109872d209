// Package auth guards the admin pages. The admin password is held only as a bcrypt
// hash; a successful login issues a random session token carried in a cookie.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName        = "prizewheel_session"
	DefaultSessionTTL = 24 * time.Hour
)

var (
	ErrEmptyPassword   = errors.New("admin password must not be empty")
	ErrInvalidPassword = errors.New("invalid password")
)

var passwordWords = []string{
	"wheel", "spin", "star", "prize", "trophy",
	"rose", "rocket", "diamond", "bouquet", "heart",
	"lucky", "jackpot", "gift", "cake", "teddy",
	"bonus", "reel", "gold", "silver",
}

// Option configures an Auth
type Option func(*Auth)

// WithSessionTTL sets how long a session stays valid after login
func WithSessionTTL(d time.Duration) Option {
	return func(a *Auth) {
		if d > 0 {
			a.ttl = d
		}
	}
}

// WithClock replaces time.Now, for expiry tests
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

// Auth is the admin session store
type Auth struct {
	hash []byte
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
}

// New hashes password and returns an empty session store
func New(password string, opts ...Option) (*Auth, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	a := &Auth{
		hash:     hash,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// GeneratePassword returns three wheel words joined by dashes, e.g. "lucky-rose-reel"
func GeneratePassword() (string, error) {
	words := make([]string, 3)
	limit := big.NewInt(int64(len(passwordWords)))
	for i := range words {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		words[i] = passwordWords[n.Int64()]
	}
	return strings.Join(words, "-"), nil
}

// Login starts a session when password matches the hash. Expired sessions are
// swept on every successful login.
func (a *Auth) Login(password string) (string, error) {
	if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
		return "", ErrInvalidPassword
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruneLocked(now)
	a.sessions[token] = now.Add(a.ttl)
	return token, nil
}

// Logout ends a session; unknown tokens are ignored
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// Valid reports whether token names a live session
func (a *Auth) Valid(token string) bool {
	if token == "" {
		return false
	}
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()
	expiry, ok := a.sessions[token]
	if !ok {
		return false
	}
	if !now.Before(expiry) {
		delete(a.sessions, token)
		return false
	}
	return true
}

// Active returns the number of live sessions
func (a *Auth) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruneLocked(a.now())
	return len(a.sessions)
}

func (a *Auth) pruneLocked(now time.Time) {
	for token, expiry := range a.sessions {
		if !now.Before(expiry) {
			delete(a.sessions, token)
		}
	}
}

// Session returns the request's session token if it is valid
func (a *Auth) Session(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	if !a.Valid(cookie.Value) {
		return "", false
	}
	return cookie.Value, true
}

// Require returns middleware that passes requests with a valid session to the
// wrapped handler and everything else to denied.
func (a *Auth) Require(denied http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := a.Session(r); ok {
				next.ServeHTTP(w, r)
				return
			}
			denied.ServeHTTP(w, r)
		})
	}
}

// SetCookie issues the session cookie. It is marked Secure when the request came
// in over HTTPS, directly or through a tunnel that sets X-Forwarded-Proto.
func (a *Auth) SetCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.ttl.Seconds()),
	})
}

// ClearCookie expires the session cookie in the browser
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
