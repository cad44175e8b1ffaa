//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminationSignals stops the server cleanly on Ctrl+C or a process
// manager's SIGTERM.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
