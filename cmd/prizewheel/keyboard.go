package main

import (
	"fmt"
	"strings"

	"github.com/abrezinsky/prizewheel/internal/browser"
	"github.com/abrezinsky/prizewheel/internal/logger"
)

// handleKey runs the shortcut bound to key and reports whether the server should quit
func handleKey(key byte, adminURL string, appLog *logger.SlogLogger) bool {
	switch strings.ToLower(string(key)) {
	case "a":
		fmt.Printf("%sOpening admin page in browser...%s\n", cyan, reset)
		if err := browser.Open(adminURL); err != nil {
			fmt.Printf("%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if appLog.IsHTTPLoggingEnabled() {
			appLog.DisableHTTPLogging()
			fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			appLog.EnableHTTPLogging()
			fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(appLog)
	case "?":
		printKeyboardHelp()
	case "q", "\x03": // q or Ctrl+C
		return true
	}
	return false
}
