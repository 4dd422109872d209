//go:build !linux && !darwin

package main

import (
	"os"

	"github.com/abrezinsky/prizewheel/internal/logger"
)

// listenForKeyboard reads keys line-buffered; terminal raw mode is not set up here
func listenForKeyboard(adminURL string, appLog *logger.SlogLogger, quit func()) {
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
			quit()
			return
		}
	}
}
