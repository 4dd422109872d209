package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/spinner"
	"github.com/abrezinsky/prizewheel/internal/strip"
	"github.com/abrezinsky/prizewheel/internal/termview"
	"github.com/abrezinsky/prizewheel/pkg/outcome"
)

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	yellow = "\033[33m"
)

var (
	version = "dev"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	server := flag.String("server", envOr("WHEEL_SERVER", "http://localhost:8000"), "Outcome server base URL")
	user := flag.String("user", os.Getenv("WHEEL_USER_ID"), "User ID (positive integer)")
	rounds := flag.Int("rounds", strip.DefaultRounds, "Full loops per spin")
	catalogPath := flag.String("catalog", "", "Load prizes from a YAML file instead of the server")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	logFile := flag.String("logfile", "", "Write logs to this file (logs are discarded if empty)")
	logFormat := flag.String("logformat", "text", "Log format (text, json)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `wheelspin - Prize wheel terminal client

Usage:
  wheelspin -user ID [options]

Options:
  -server url     Outcome server base URL (default "http://localhost:8000", env WHEEL_SERVER)
  -user id        User ID, a positive integer (env WHEEL_USER_ID)
  -rounds int     Full loops per spin (default 5)
  -catalog path   Load prizes from a YAML file instead of the server
  -loglevel str   Log level: debug, info, warn, error (default "info")
  -logfile path   Write logs to this file
  -logformat str  Log format: text, json (default "text")
  -version        Show version and exit
  -help           Show this help message

Keys:
  space, enter   Spin
  r              Refresh attempts and gifts
  q, ctrl+c      Quit

Examples:
  wheelspin -user 42
  wheelspin -user 42 -server https://wheel.example.com -logfile wheel.log
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("wheelspin %s\n", version)
		os.Exit(0)
	}

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%sFailed to open log file: %v%s\n", red, err, reset)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(*logLevel),
		Format: logger.ParseFormat(*logFormat),
		Output: logOut,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := outcome.NewHTTPClient(*server, appLog)

	cat, err := loadCatalog(ctx, client, *catalogPath)
	if err != nil {
		appLog.Error("Failed to load catalog", "error", err)
		fmt.Fprintf(os.Stderr, "%sFailed to load prize catalog: %v%s\n", red, err, reset)
		os.Exit(1)
	}
	appLog.Info("Catalog loaded", "prizes", cat.Len(), "server", client.BaseURL())

	// A missing or malformed id reaches the machine as 0 and disables spinning
	userID, _ := strconv.ParseInt(*user, 10, 64)

	os.Exit(run(ctx, appLog, client, cat, userID, *rounds))
}

func loadCatalog(ctx context.Context, client outcome.Client, path string) (*catalog.Catalog, error) {
	if path != "" {
		return catalog.Load(path)
	}
	fctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	prizes, err := client.FetchCatalog(fctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(prizes)
}

func run(ctx context.Context, appLog logger.Logger, client outcome.Client, cat *catalog.Catalog, userID int64, rounds int) int {
	stdin := int(os.Stdin.Fd())
	if term.IsTerminal(stdin) {
		oldState, err := term.MakeRaw(stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%sFailed to set raw mode: %v%s\n", red, err, reset)
			return 1
		}
		defer term.Restore(stdin, oldState)
	} else {
		fmt.Fprintf(os.Stderr, "%sstdin is not a terminal; keys are read line by line%s\n", yellow, reset)
	}

	screen := termview.New(os.Stdout, termview.WithTitle("Prize Wheel - "+client.BaseURL()))
	screen.Open()
	defer screen.Close()

	if g, err := screen.Measure(); err == nil {
		if idle, err := strip.IdleLayout(cat, g); err == nil {
			screen.RenderStrip(idle)
		}
	}

	machine := spinner.New(appLog, client, cat, screen, screen, screen, spinner.WithRounds(rounds))
	if err := machine.Start(ctx, userID); err != nil {
		var idErr *spinner.IdentityError
		if errors.As(err, &idErr) {
			appLog.Error("Spinning disabled", "error", err)
		}
	}

	keys := make(chan byte)
	go readKeys(keys)

	return handleKeys(ctx, appLog, machine, keys)
}

// wheel is the part of the spin machine the key loop drives
type wheel interface {
	Spin(ctx context.Context) (*spinner.Result, error)
	Refresh(ctx context.Context) error
	Wait()
}

// handleKeys runs until quit, end of input or ctx is done. Spins and refreshes
// run in the background so keys stay live; on exit it waits for all of them,
// including a spin that is still animating.
func handleKeys(ctx context.Context, appLog logger.Logger, machine wheel, keys <-chan byte) int {
	var jobs sync.WaitGroup
	defer func() {
		jobs.Wait()
		machine.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return 0
		case key, ok := <-keys:
			if !ok {
				return 0
			}
			switch key {
			case ' ', '\r', '\n':
				// The machine rejects overlapping requests itself
				jobs.Add(1)
				go func() {
					defer jobs.Done()
					if _, err := machine.Spin(ctx); err != nil {
						appLog.Debug("Spin did not complete", "error", err)
					}
				}()
			case 'r', 'R':
				jobs.Add(1)
				go func() {
					defer jobs.Done()
					if err := machine.Refresh(ctx); err != nil {
						appLog.Debug("Refresh did not complete", "error", err)
					}
				}()
			case 'q', 'Q', 0x03:
				return 0
			}
		}
	}
}

func readKeys(keys chan<- byte) {
	defer close(keys)
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		keys <- buf[0]
	}
}
