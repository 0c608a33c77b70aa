/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package preflight validates the prerequisites of a groundwork run before
// anything touches the cloud: a git binary, a clean work tree with an origin
// remote, and working AWS credentials.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/config"
	"github.com/getgroundwork/groundwork/internal/errs"
)

// Checker validates run prerequisites
type Checker struct {
	sts    aws.STSOperations
	runGit config.GitRunner
	lookup func(name string) (string, error)
}

// NewChecker creates a checker using the real git binary and the given STS surface
func NewChecker(sts aws.STSOperations) *Checker {
	return &Checker{sts: sts, runGit: config.ExecGit, lookup: exec.LookPath}
}

// NewCheckerWithGit creates a checker with an injected git runner and lookup,
// for testing
func NewCheckerWithGit(sts aws.STSOperations, runGit config.GitRunner, lookup func(string) (string, error)) *Checker {
	return &Checker{sts: sts, runGit: runGit, lookup: lookup}
}

// Check validates every prerequisite and returns the caller identity on
// success. Failures carry CategoryPrecondition with a reason the user can act
// on directly.
func (c *Checker) Check(ctx context.Context, requireCleanTree bool) (*aws.CallerIdentity, error) {
	if _, err := c.lookup("git"); err != nil {
		return nil, errs.New(errs.CategoryPrecondition, "git is not installed or not on PATH")
	}

	if _, err := c.runGit(ctx, "rev-parse", "--is-inside-work-tree"); err != nil {
		return nil, errs.New(errs.CategoryPrecondition, "current directory is not inside a git repository")
	}

	if requireCleanTree {
		status, err := c.runGit(ctx, "status", "--porcelain")
		if err != nil {
			return nil, errs.Wrap(errs.CategoryPrecondition, "failed to inspect the git work tree", err)
		}
		if strings.TrimSpace(status) != "" {
			return nil, errs.New(errs.CategoryPrecondition,
				"work tree has uncommitted changes, commit or stash them first")
		}
	}

	identity, err := c.sts.CallerIdentity(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.CategoryPrecondition,
			"AWS credentials are missing or invalid", err)
	}
	if identity.AccountID == "" {
		return nil, errs.New(errs.CategoryPrecondition, "caller identity has no account id")
	}

	fmt.Printf("Authenticated as %s in account %s\n", identity.ARN, identity.AccountID)
	return identity, nil
}
