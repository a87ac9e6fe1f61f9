// SPDX-License-Identifier: Apache-2.0

// Package core holds process-wide constants and the application path layout.
package core

import (
	"os"
	"path/filepath"
)

const (
	DefaultDirOrExecPerm = os.FileMode(0o755)
	DefaultFilePerm      = os.FileMode(0o644)
)

// AppPaths is the directory layout used for logs, reports and diagnostics.
type AppPaths struct {
	HomeDir        string
	LogsDir        string
	ReportsDir     string
	DiagnosticsDir string
}

var appPaths *AppPaths

// Paths returns the application path layout, rooted at $AIRLIFT_HOME when
// set, otherwise at ~/.airlift (falling back to a temp dir when the home
// directory cannot be resolved).
func Paths() AppPaths {
	if appPaths == nil {
		root := os.Getenv("AIRLIFT_HOME")
		if root == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				home = os.TempDir()
			}
			root = filepath.Join(home, ".airlift")
		}
		appPaths = &AppPaths{
			HomeDir:        root,
			LogsDir:        filepath.Join(root, "logs"),
			ReportsDir:     filepath.Join(root, "reports"),
			DiagnosticsDir: filepath.Join(root, "diagnostics"),
		}
	}
	return *appPaths
}
