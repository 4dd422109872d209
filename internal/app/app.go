package app

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/prizewheel/internal/auth"
	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/handlers"
	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/repository"
	"github.com/abrezinsky/prizewheel/internal/services"
	"github.com/abrezinsky/prizewheel/internal/websocket"
)

// DefaultStatsInterval is how often the dashboard totals are pushed over the websocket
const DefaultStatsInterval = 2 * time.Second

// Config holds the server settings resolved from flags and environment
type Config struct {
	DBPath         string
	MaxAttempts    int
	Catalog        *catalog.Catalog
	AppURL         string // overrides the stored mini-app URL when set
	AllowedOrigins []string
	StatsInterval  time.Duration
}

// App holds all application dependencies
type App struct {
	log         logger.Logger
	handlers    *handlers.Handlers
	repo        *repository.Repository
	settings    *services.SettingsService
	appURL      string
	cancelFeeds context.CancelFunc

	mu     sync.Mutex
	server *http.Server
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg Config, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", cfg.MaxAttempts)
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = DefaultStatsInterval
	}

	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	userService := services.NewUserService(log, repo, cfg.MaxAttempts)
	spinService := services.NewSpinService(log, repo, cfg.Catalog, cfg.MaxAttempts)
	adminService := services.NewAdminService(log, repo, cfg.MaxAttempts)
	settingsService := services.NewSettingsService(log, repo)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, settingsService, adminService)
	hub.Start()
	spinService.SetBroadcaster(hub)
	adminService.SetBroadcaster(hub)
	settingsService.SetBroadcaster(hub)

	// Stats feed runs until Close
	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartStatsFeed(ctx, cfg.StatsInterval)

	// Create static file server
	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(
		userService,
		spinService,
		adminService,
		settingsService,
		templatesFS,
		staticServer,
		adminAuth,
		hub,
		log,
		cfg.AllowedOrigins,
	)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	log.Info("Prize catalog loaded", "prizes", cfg.Catalog.Len(), "max_attempts", cfg.MaxAttempts)

	return &App{
		log:         log,
		handlers:    h,
		repo:        repo,
		settings:    settingsService,
		appURL:      cfg.AppURL,
		cancelFeeds: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close stops background feeds and the HTTP server
func (a *App) Close() {
	if a.cancelFeeds != nil {
		a.cancelFeeds()
	}
	a.mu.Lock()
	server := a.server
	a.mu.Unlock()
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			a.log.Warn("Server shutdown failed", "error", err)
		}
	}
}

// Run starts the HTTP server and blocks until it stops
func (a *App) Run(addr string) error {
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.configureAppURL(baseURL)

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Admin URL", "url", baseURL+"/admin")

	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// configureAppURL stores the mini-app URL used for the admin QR code.
// An explicit -app-url always wins. Otherwise the LAN address is stored when
// nothing is set yet or the stored value points at localhost.
func (a *App) configureAppURL(lanURL string) {
	ctx := context.Background()

	if a.appURL != "" {
		if err := a.settings.SetAppURL(ctx, a.appURL); err != nil {
			a.log.Warn("Failed to set app_url", "error", err)
		}
		return
	}

	existing, _ := a.settings.GetAppURL(ctx)
	if existing != "" && !strings.Contains(existing, "localhost") {
		return
	}
	if err := a.settings.SetAppURL(ctx, lanURL); err != nil {
		a.log.Warn("Failed to set default app_url", "error", err)
		return
	}
	a.log.Info("Default app URL set", "url", lanURL)
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
