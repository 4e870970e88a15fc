//go:build !windows

package main

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// detectTerminalWidth returns the column count of the attached terminal.
// COLUMNS overrides the ioctl; 0 means unknown, e.g. output is piped.
func detectTerminalWidth() int {
	if n := envColumns(); n > 0 {
		return n
	}
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err == nil && ws != nil && ws.Col > 0 {
			return int(ws.Col)
		}
	}
	return 0
}

func envColumns() int {
	n, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
