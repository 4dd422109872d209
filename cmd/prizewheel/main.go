package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abrezinsky/prizewheel/internal/app"
	"github.com/abrezinsky/prizewheel/internal/auth"
	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/web"
)

// ANSI escape codes
const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	reset     = "\033[0m"
	yellow    = "\033[33m"
	red       = "\033[31m"
	green     = "\033[32m"
	cyan      = "\033[36m"
	bold      = "\033[1m"
)

var (
	version = "dev"
)

// showStartupAnimation draws the logo, then spins a small prize strip under it
func showStartupAnimation(cat *catalog.Catalog, skipSpin bool) {
	const width = 62
	border := strings.Repeat("═", width)

	logo := []string{
		"    ____       _           _    _ _               _        ",
		"   |  _ \\ _ __(_)_______  | |  | | |__   ___  ___| |       ",
		"   | |_) | '__| |_  / _ \\ | |/\\| | '_ \\ / _ \\/ _ \\ |       ",
		"   |  __/| |  | |/ /  __/ \\  /\\  / | | |  __/  __/ |       ",
		"   |_|   |_|  |_/___\\___|  \\/  \\/|_| |_|\\___|\\___|_|       ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s%-*s%s║%s\n", cyan, yellow, width, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	if skipSpin || cat.Len() == 0 {
		fmt.Print("\n")
		return
	}

	fmt.Printf(moveUp, 1)
	fmt.Printf("%s  %s╠%s╣%s\n", clearLine, cyan, border, reset)

	// One cell per prize, the pointer sits in the middle of the window
	const cell = 10
	var strip []rune
	for i := 0; i < 8; i++ {
		for _, p := range cat.Prizes() {
			label := []rune(p.Name)
			if len(label) > cell-2 {
				label = label[:cell-2]
			}
			strip = append(strip, []rune(fmt.Sprintf("%-*s", cell, " "+string(label)))...)
		}
	}

	winner := rand.IntN(cat.Len())
	stop := (3*cat.Len()+winner)*cell - width/2 + cell/2
	if stop < 0 {
		stop = 0
	}
	pointer := fmt.Sprintf("%*s", width/2+1, "▼")

	fmt.Printf("  %s║%s%-*s%s║%s\n", cyan, yellow, width, pointer, cyan, reset)
	fmt.Printf("  %s║%s║%s\n", cyan, strings.Repeat(" ", width), reset)
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	const frames = 30
	for frame := 1; frame <= frames; frame++ {
		// ease-out: fast start, slow finish
		progress := 1 - float64((frames-frame)*(frames-frame))/float64(frames*frames)
		pos := int(progress * float64(stop))
		fmt.Printf(moveUp, 2)
		fmt.Printf("%s  %s║%s%s║%s\n", clearLine, cyan, string(strip[pos:pos+width]), cyan, reset)
		fmt.Printf("%s  %s╚%s╝%s\n", clearLine, cyan, border, reset)
		time.Sleep(60 * time.Millisecond)
	}

	p := cat.At(winner)
	result := fmt.Sprintf(" Sample spin: %s (%d⭐)", p.Name, p.StarPrice)
	if !p.IsWin() {
		result = " Sample spin: better luck next time"
	}
	fmt.Printf(moveUp, 1)
	fmt.Printf("%s  %s╠%s╣%s\n", clearLine, cyan, border, reset)
	fmt.Printf("  %s║%s%-*s%s║%s\n", cyan, green, width, result, cyan, reset)
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

// nextLogLevel returns the level after current in debug -> info -> warn -> error
func nextLogLevel(current string) string {
	switch current {
	case "DEBUG":
		return "info"
	case "INFO":
		return "warn"
	case "WARN":
		return "error"
	case "ERROR":
		return "debug"
	default:
		return "info"
	}
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	next := nextLogLevel(appLog.GetLevel().String())
	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sa%s      - Open admin page in browser\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n", red, err, reset)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("prizewheel %s\n", version)
		os.Exit(0)
	}

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
	})

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			fmt.Fprintf(os.Stderr, "%sFailed to load catalog: %v%s\n", red, err, reset)
			os.Exit(1)
		}
	}

	showStartupAnimation(cat, cfg.NoAnimate)

	// Setup admin authentication
	password := cfg.AdminPassword
	if password == "" {
		if password, err = auth.GeneratePassword(); err != nil {
			fmt.Fprintf(os.Stderr, "%sFailed to generate admin password: %v%s\n", red, err, reset)
			os.Exit(1)
		}
	}
	adminAuth, err := auth.New(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sInvalid admin password: %v%s\n", red, err, reset)
		os.Exit(1)
	}

	a, err := app.New(appLog, app.Config{
		DBPath:         cfg.DBPath,
		MaxAttempts:    cfg.MaxAttempts,
		Catalog:        cat,
		AppURL:         cfg.AppURL,
		AllowedOrigins: cfg.AllowedOrigins,
	}, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sFailed to initialize application: %v%s\n", red, err, reset)
		os.Exit(1)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", cfg.Port)
	appLog.Info("Admin password", "password", password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(addr)
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	if !cfg.NoKeyboard {
		printKeyboardHelp()
		adminURL := fmt.Sprintf("http://localhost:%d/admin", cfg.Port)
		go listenForKeyboard(adminURL, appLog, stop)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	select {
	case err := <-serverErr:
		if err != nil {
			appLog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
	}
}
