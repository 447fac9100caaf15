//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

var extraSignals = []os.Signal{unix.SIGTERM}
