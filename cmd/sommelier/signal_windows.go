//go:build windows

package main

import (
	"os"
)

// terminationSignals stops the server cleanly; on Windows that means
// Ctrl+C only.
var terminationSignals = []os.Signal{os.Interrupt}
