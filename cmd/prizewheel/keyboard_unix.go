//go:build linux || darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/abrezinsky/prizewheel/internal/logger"
)

// listenForKeyboard reads single keys from a non-canonical terminal until quit
func listenForKeyboard(adminURL string, appLog *logger.SlogLogger, quit func()) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		// Not a terminal
		return
	}

	// Disable canonical mode and echo but keep output processing so \n still works
	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return
	}
	defer unix.IoctlSetTermios(fd, ioctlSetTermios, oldState)

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if handleKey(buf[0], adminURL, appLog) {
			unix.IoctlSetTermios(fd, ioctlSetTermios, oldState)
			quit()
			return
		}
	}
}
