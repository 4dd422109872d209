package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// clock is a settable time source
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestAuth(t *testing.T, opts ...Option) (*Auth, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)}
	a, err := New("lucky-rose-reel", append([]Option{WithClock(c.Now)}, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a, c
}

func mustLogin(t *testing.T, a *Auth) string {
	t.Helper()
	token, err := a.Login("lucky-rose-reel")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return token
}

// ==================== Password Tests ====================

func TestNew_StoresOnlyHash(t *testing.T) {
	a, _ := newTestAuth(t)

	if strings.Contains(string(a.hash), "lucky-rose-reel") {
		t.Fatal("plain password kept in memory")
	}
	if cost, err := bcrypt.Cost(a.hash); err != nil || cost != bcrypt.DefaultCost {
		t.Errorf("expected bcrypt hash with default cost, got cost=%d err=%v", cost, err)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"empty", "", ErrEmptyPassword},
		{"longer than bcrypt accepts", strings.Repeat("spin", 20), bcrypt.ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	known := make(map[string]bool, len(passwordWords))
	for _, w := range passwordWords {
		known[w] = true
	}

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword()
		if err != nil {
			t.Fatalf("GeneratePassword failed: %v", err)
		}
		parts := strings.Split(pw, "-")
		if len(parts) != 3 {
			t.Fatalf("expected three words, got %q", pw)
		}
		for _, p := range parts {
			if !known[p] {
				t.Errorf("unexpected word %q in %q", p, pw)
			}
		}
		seen[pw] = true
	}
	if len(seen) < 3 {
		t.Errorf("expected varied passwords, got %d distinct", len(seen))
	}
}

func TestGeneratePassword_UsableWithNew(t *testing.T) {
	pw, err := GeneratePassword()
	if err != nil {
		t.Fatalf("GeneratePassword failed: %v", err)
	}
	a, err := New(pw)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := a.Login(pw); err != nil {
		t.Errorf("expected the generated password to log in, got %v", err)
	}
}

// ==================== Session Tests ====================

func TestLogin(t *testing.T) {
	a, _ := newTestAuth(t)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"correct", "lucky-rose-reel", nil},
		{"wrong", "lucky-rose", ErrInvalidPassword},
		{"empty", "", ErrInvalidPassword},
		{"case differs", "Lucky-Rose-Reel", ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := a.Login(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				if token != "" {
					t.Error("expected no token on failure")
				}
				return
			}
			if len(token) != 64 {
				t.Errorf("expected 64 hex chars, got %d", len(token))
			}
			if !a.Valid(token) {
				t.Error("expected the new session to be valid")
			}
		})
	}
}

func TestLogin_TokensAreDistinct(t *testing.T) {
	a, _ := newTestAuth(t)

	if mustLogin(t, a) == mustLogin(t, a) {
		t.Error("expected distinct tokens for separate logins")
	}
	if n := a.Active(); n != 2 {
		t.Errorf("expected 2 active sessions, got %d", n)
	}
}

func TestLogout(t *testing.T) {
	a, _ := newTestAuth(t)
	token := mustLogin(t, a)

	a.Logout(token)
	a.Logout("never-issued")

	if a.Valid(token) {
		t.Error("expected session to end on logout")
	}
}

func TestValid_Expiry(t *testing.T) {
	a, c := newTestAuth(t, WithSessionTTL(time.Hour))
	token := mustLogin(t, a)

	c.Advance(59 * time.Minute)
	if !a.Valid(token) {
		t.Fatal("expected session valid before its TTL")
	}

	c.Advance(time.Minute)
	if a.Valid(token) {
		t.Error("expected session to expire at its TTL")
	}
	if n := a.Active(); n != 0 {
		t.Errorf("expected expired session removed, %d active", n)
	}
}

func TestLogin_SweepsExpiredSessions(t *testing.T) {
	a, c := newTestAuth(t, WithSessionTTL(time.Minute))
	mustLogin(t, a)
	mustLogin(t, a)

	c.Advance(2 * time.Minute)
	fresh := mustLogin(t, a)

	a.mu.Lock()
	stored := len(a.sessions)
	a.mu.Unlock()
	if stored != 1 {
		t.Errorf("expected only the fresh session stored, got %d", stored)
	}
	if !a.Valid(fresh) {
		t.Error("expected fresh session valid")
	}
}

func TestValid_EmptyToken(t *testing.T) {
	a, _ := newTestAuth(t)
	if a.Valid("") {
		t.Error("expected empty token to be invalid")
	}
}

// ==================== HTTP Tests ====================

func TestSession(t *testing.T) {
	a, _ := newTestAuth(t)
	token := mustLogin(t, a)

	tests := []struct {
		name   string
		cookie *http.Cookie
		ok     bool
	}{
		{"valid", &http.Cookie{Name: CookieName, Value: token}, true},
		{"no cookie", nil, false},
		{"unknown token", &http.Cookie{Name: CookieName, Value: "deadbeef"}, false},
		{"other cookie", &http.Cookie{Name: "theme", Value: token}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			got, ok := a.Session(req)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got != token {
				t.Errorf("expected token %q, got %q", token, got)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	a, _ := newTestAuth(t)
	token := mustLogin(t, a)

	denied := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	protected := a.Require(denied)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with a session, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected the denied handler without a session, got %d", rec.Code)
	}
}

func TestSetCookie(t *testing.T) {
	a, _ := newTestAuth(t, WithSessionTTL(2*time.Hour))

	tests := []struct {
		name   string
		proto  string
		secure bool
	}{
		{"plain http", "", false},
		{"behind https tunnel", "https", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rec := httptest.NewRecorder()
			a.SetCookie(rec, req, "token-1")

			cookies := rec.Result().Cookies()
			if len(cookies) != 1 {
				t.Fatalf("expected 1 cookie, got %d", len(cookies))
			}
			c := cookies[0]
			if c.Name != CookieName || c.Value != "token-1" || !c.HttpOnly || c.Path != "/" {
				t.Errorf("unexpected cookie %+v", c)
			}
			if c.Secure != tt.secure {
				t.Errorf("expected Secure=%v, got %v", tt.secure, c.Secure)
			}
			if c.MaxAge != int((2 * time.Hour).Seconds()) {
				t.Errorf("expected MaxAge to follow the session TTL, got %d", c.MaxAge)
			}
		})
	}
}

func TestClearCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearCookie(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].MaxAge != -1 {
		t.Errorf("expected an expired session cookie, got %+v", cookies)
	}
}

func TestConcurrentSessions(t *testing.T) {
	a, _ := newTestAuth(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := a.Login("lucky-rose-reel")
			if err != nil {
				t.Error(err)
				return
			}
			a.Valid(token)
			a.Logout(token)
		}()
	}
	wg.Wait()

	if n := a.Active(); n != 0 {
		t.Errorf("expected no sessions left, got %d", n)
	}
}
