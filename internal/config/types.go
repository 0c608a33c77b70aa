/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package config builds the immutable parameter set for one groundwork run.
// Everything ambient (account identity, region, repository remote, optional
// groundwork.yaml overrides) is captured once at process start and threaded
// explicitly into every component, so validation and execution always see the
// same values.
package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/getgroundwork/groundwork/internal/oidc"
)

// Parameters is the full parameter set for one deployment or destruction run
type Parameters struct {
	AccountID    string
	AccountAlias string
	Region       string

	RepositoryURL string
	Project       string

	Environment string
	Owner       string
	CostCentre  string

	DeploymentRoleName   string
	TargetRoleRepository string

	// Provider is resolved per run from RepositoryURL; nil until the
	// deploy path resolves it.
	Provider *oidc.Config
}

// StackName returns the name of the bootstrap stack: the repository base name
func (p *Parameters) StackName() string {
	return p.Project
}

// Validate checks that the parameter set is complete enough to act on
func (p *Parameters) Validate() error {
	if p.AccountID == "" {
		return fmt.Errorf("account id is not set")
	}
	if p.Region == "" {
		return fmt.Errorf("region is not set")
	}
	if p.Project == "" {
		return fmt.Errorf("project name is not set")
	}
	if p.RepositoryURL == "" {
		return fmt.Errorf("repository URL is not set")
	}
	return nil
}

// ProjectFromRepository derives the project name from a repository remote URL:
// the base name with any .git suffix stripped.
func ProjectFromRepository(repoURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repoURL), "/")
	base := path.Base(strings.ReplaceAll(trimmed, ":", "/"))
	return strings.TrimSuffix(base, ".git")
}

// RepositoryPath derives the owner/repo coordinates from a remote URL, used
// as the default target-role repository condition.
func RepositoryPath(repoURL string) string {
	trimmed := strings.TrimSpace(repoURL)
	trimmed = strings.TrimSuffix(trimmed, ".git")

	if idx := strings.Index(trimmed, "://"); idx >= 0 {
		rest := trimmed[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			return strings.TrimPrefix(rest[slash:], "/")
		}
		return ""
	}
	if at := strings.Index(trimmed, "@"); at >= 0 {
		rest := trimmed[at+1:]
		if colon := strings.Index(rest, ":"); colon >= 0 {
			return strings.TrimPrefix(rest[colon+1:], "/")
		}
	}
	return trimmed
}
