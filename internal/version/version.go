/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package version carries the build identity stamped in through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time, e.g.
// -ldflags "-X .../internal/version.version=v1.2.0".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return version
}

// Info returns the one-line build description printed by the version command.
func Info() string {
	return fmt.Sprintf("groundwork %s (commit %s, built %s, %s, %s/%s)",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
