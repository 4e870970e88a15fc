//go:build windows

package main

import (
	"os"
	"strconv"
)

// detectTerminalWidth only honours COLUMNS on Windows.
func detectTerminalWidth() int {
	return envColumns()
}

func envColumns() int {
	n, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
