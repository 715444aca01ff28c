// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/log.go
// Summary: Env-gated debug logging for the terminal core.
// Usage: Set GRIDTERM_DEBUG to append trace lines to the debug log file.

package term

import (
	"fmt"
	"os"
	"path/filepath"
)

// debugf appends a trace line to the debug log when GRIDTERM_DEBUG is set.
// Disabled (the default) it is a cheap early return, so call sites can stay
// on warm paths.
func debugf(format string, args ...interface{}) {
	if os.Getenv("GRIDTERM_DEBUG") == "" {
		return
	}
	logPath := filepath.Join(os.TempDir(), "gridterm-debug.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[TERM] "+format+"\n", args...)
}
