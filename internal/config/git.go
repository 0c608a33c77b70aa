/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

package config

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/getgroundwork/groundwork/internal/errs"
)

// GitRunner executes a git subcommand and returns its trimmed stdout
type GitRunner func(ctx context.Context, args ...string) (string, error)

// ExecGit runs the git binary on PATH
func ExecGit(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RemoteURL returns the origin remote URL of the current repository
func RemoteURL(ctx context.Context, run GitRunner) (string, error) {
	if run == nil {
		run = ExecGit
	}
	url, err := run(ctx, "config", "--get", "remote.origin.url")
	if err != nil {
		return "", errs.Wrap(errs.CategoryPrecondition, "repository has no origin remote", err)
	}
	if url == "" {
		return "", errs.New(errs.CategoryPrecondition, "repository origin remote URL is empty")
	}
	return url, nil
}
