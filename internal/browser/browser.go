package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var defaultCommander Commander = RealCommander{}

// Open opens the admin page (or any URL) in the default browser
func Open(url string) error {
	return OpenWithCommander(url, defaultCommander, runtime.GOOS)
}

// OpenWithCommander opens the URL using the specified commander and OS (for testing)
func OpenWithCommander(url string, commander Commander, goos string) error {
	name, args, err := command(url, goos)
	if err != nil {
		return err
	}
	if err := commander.Start(name, args...); err != nil {
		return fmt.Errorf("open %s with %s: %w", url, name, err)
	}
	return nil
}

// command returns the launcher for goos
func command(url, goos string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
