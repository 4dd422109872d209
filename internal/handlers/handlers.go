package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/prizewheel/internal/auth"
	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/services"
	"github.com/abrezinsky/prizewheel/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// AdminPageData holds the data passed to admin templates
type AdminPageData struct {
	Title       string
	PageTitle   string
	ActiveNav   string
	MaxAttempts int
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index          *template.Template
	AdminLogin     *template.Template
	AdminDashboard *template.Template
	AdminUsers     *template.Template
	AdminSettings  *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	User           services.UserServicer
	Spin           services.SpinServicer
	Admin          services.AdminServicer
	Settings       services.SettingsServicer
	Auth           *auth.Auth
	Hub            *websocket.Hub
	Log            HTTPLogger
	AllowedOrigins []string
	templates      *Templates
	staticServer   http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// appLog returns the structured logger behind Log, or one that discards
func (h *Handlers) appLog() logger.Logger {
	if l, ok := h.Log.(logger.Logger); ok {
		return l
	}
	return logger.Discard()
}

// New creates a new Handlers instance with all dependencies
func New(
	user services.UserServicer,
	spin services.SpinServicer,
	admin services.AdminServicer,
	settings services.SettingsServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
	allowedOrigins []string,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		User:           user,
		Spin:           spin,
		Admin:          admin,
		Settings:       settings,
		Auth:           adminAuth,
		Hub:            hub,
		Log:            log,
		AllowedOrigins: allowedOrigins,
		templates:      templates,
		staticServer:   staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// TestPassword is the admin password used by NewForTesting
const TestPassword = "test-password"

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(
	user services.UserServicer,
	spin services.SpinServicer,
	admin services.AdminServicer,
	settings services.SettingsServicer,
) *Handlers {
	testAuth, err := auth.New(TestPassword)
	if err != nil {
		panic(err)
	}
	return &Handlers{
		User:     user,
		Spin:     spin,
		Admin:    admin,
		Settings: settings,
		Auth:     testAuth,
		Log:      NoopHTTPLogger{},
		// templates left nil - API endpoints don't use templates
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.AdminLogin, err = template.ParseFS(templatesFS, "admin/login.html"); err != nil {
		return nil, fmt.Errorf("admin login template: %w", err)
	}
	if t.AdminDashboard, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/dashboard.html"); err != nil {
		return nil, fmt.Errorf("admin dashboard template: %w", err)
	}
	if t.AdminUsers, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/users.html"); err != nil {
		return nil, fmt.Errorf("admin users template: %w", err)
	}
	if t.AdminSettings, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/settings.html"); err != nil {
		return nil, fmt.Errorf("admin settings template: %w", err)
	}

	return t, nil
}
