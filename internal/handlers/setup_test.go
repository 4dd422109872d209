package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/abrezinsky/prizewheel/internal/auth"
	"github.com/abrezinsky/prizewheel/internal/handlers"
	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/repository"
	"github.com/abrezinsky/prizewheel/internal/repository/mock"
	"github.com/abrezinsky/prizewheel/internal/services"
	"github.com/abrezinsky/prizewheel/internal/testutil"
	"github.com/abrezinsky/prizewheel/internal/websocket"
)

var fixedNow = time.Date(2025, time.March, 8, 14, 30, 0, 0, time.UTC)

// testSetup creates all the dependencies needed for testing handlers
type testSetup struct {
	repo       *repository.Repository
	mockRepo   *mock.Repository
	spin       *services.SpinService
	handlers   *handlers.Handlers
	router     http.Handler
	authCookie *http.Cookie
	log        *logger.SlogLogger
}

// newTestSetup creates a new test setup with in-memory repository.
// The wheel always lands on catalog index 1 ("Rose").
func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	mockRepo := mock.NewRepository(repo)
	log := logger.Discard()

	userService := services.NewUserService(log, mockRepo, 2)
	spinService := services.NewSpinService(log, mockRepo, testutil.TestCatalog(), 2)
	spinService.SetPicker(func(int) int { return 1 })
	spinService.SetClock(func() time.Time { return fixedNow })
	adminService := services.NewAdminService(log, mockRepo, 2)
	settingsService := services.NewSettingsService(log, mockRepo)

	h := handlers.NewForTesting(userService, spinService, adminService, settingsService)
	h.Log = log

	// Login to get a session cookie for authenticated requests
	token, err := h.Auth.Login(handlers.TestPassword)
	if err != nil {
		t.Fatalf("login with test password failed: %v", err)
	}

	return &testSetup{
		repo:       repo,
		mockRepo:   mockRepo,
		spin:       spinService,
		handlers:   h,
		router:     h.Router(),
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
		log:        log,
	}
}

// do sends a JSON request through the router, adding the auth cookie when authed is set
func (ts *testSetup) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.AddCookie(ts.authCookie)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a response body, failing the test on error
func decode(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// expectError checks the status code and the error code of an APIError body
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	if body.Code != code {
		t.Errorf("expected code %q, got %q (%s)", code, body.Code, body.Error)
	}
}

// createTestTemplatesFS returns the minimum template set handlers.New parses
func createTestTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html": &fstest.MapFile{
			Data: []byte(`<html><body>Prize Wheel</body></html>`),
		},
		"admin/login.html": &fstest.MapFile{
			Data: []byte(`<html><body>Login{{if .Error}} - {{.Error}}{{end}}</body></html>`),
		},
		"admin/layout.html": &fstest.MapFile{
			Data: []byte(`{{define "admin"}}<html><title>{{.Title}}</title><body>{{template "content" .}}</body></html>{{end}}`),
		},
		"admin/dashboard.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}Dashboard{{end}}`),
		},
		"admin/users.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}Players max={{.MaxAttempts}}{{end}}`),
		},
		"admin/settings.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}Settings{{end}}`),
		},
	}
}

// testSetupWithTemplates wires the full handlers.New path, hub included
type testSetupWithTemplates struct {
	repo       *repository.Repository
	handlers   *handlers.Handlers
	router     http.Handler
	authCookie *http.Cookie
}

func newTestSetupWithTemplates(t *testing.T) *testSetupWithTemplates {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := logger.Discard()

	userService := services.NewUserService(log, repo, 2)
	spinService := services.NewSpinService(log, repo, testutil.TestCatalog(), 2)
	adminService := services.NewAdminService(log, repo, 2)
	settingsService := services.NewSettingsService(log, repo)

	adminAuth, err := auth.New(handlers.TestPassword)
	if err != nil {
		t.Fatalf("failed to create auth: %v", err)
	}
	hub := websocket.New(log, settingsService, adminService)

	staticFS := fstest.MapFS{
		"css/admin.css": &fstest.MapFile{Data: []byte("body{}")},
	}

	h, err := handlers.New(
		userService,
		spinService,
		adminService,
		settingsService,
		createTestTemplatesFS(),
		handlers.NewStaticServer(staticFS),
		adminAuth,
		hub,
		handlers.NoopHTTPLogger{},
		nil,
	)
	if err != nil {
		t.Fatalf("failed to create handlers: %v", err)
	}

	token, err := h.Auth.Login(handlers.TestPassword)
	if err != nil {
		t.Fatalf("login with test password failed: %v", err)
	}

	return &testSetupWithTemplates{
		repo:       repo,
		handlers:   h,
		router:     h.Router(),
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

// newPreflight builds a CORS preflight request for a POST to path
func newPreflight(path, origin string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
