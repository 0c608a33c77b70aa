/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package oidc derives OIDC federation parameters from a repository remote
// URL. The hosting platform determines the issuer URL, the expected audience
// and how trust thumbprints are obtained.
package oidc

import (
	"crypto/sha1"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/getgroundwork/groundwork/internal/errs"
)

// ProviderKind identifies a supported hosting platform
type ProviderKind string

const (
	ProviderGitHub    ProviderKind = "github"
	ProviderGitLab    ProviderKind = "gitlab"
	ProviderBitbucket ProviderKind = "bitbucket"
)

// Config holds the federation parameters for one identity provider. It is a
// deployment input, computed fresh on every run, never persisted.
type Config struct {
	Kind        ProviderKind
	IssuerURL   string
	Audience    string
	Thumbprints []string
}

// GitHub's federation metadata is stable enough to hardcode; the two
// thumbprints cover the current and previous issuer certificates.
var githubThumbprints = []string{
	"6938fd4d98bab03faadb97b34396831e3780aea1",
	"1c58a3a8518e8759bf075b76b750d4f2df264fcd",
}

// ThumbprintFetcher retrieves the SHA-1 fingerprint of a host's TLS leaf
// certificate. Injectable so that resolution is testable without a network.
type ThumbprintFetcher func(host string) (string, error)

// Resolver derives a Config from a repository remote URL
type Resolver struct {
	fetchThumbprint ThumbprintFetcher
}

// NewResolver creates a resolver that fetches thumbprints over TLS
func NewResolver() *Resolver {
	return &Resolver{fetchThumbprint: leafCertThumbprint}
}

// NewResolverWithFetcher creates a resolver with a custom fetcher (for testing)
func NewResolverWithFetcher(fetch ThumbprintFetcher) *Resolver {
	return &Resolver{fetchThumbprint: fetch}
}

// Resolve classifies the repository host and returns the federation
// parameters for it. Unknown hosts are a hard failure; groundwork does not
// guess at an unsupported provider's federation endpoint.
func (r *Resolver) Resolve(repoURL string) (*Config, error) {
	host, path, err := splitRemoteURL(repoURL)
	if err != nil {
		return nil, err
	}

	switch host {
	case "github.com":
		return &Config{
			Kind:        ProviderGitHub,
			IssuerURL:   "https://token.actions.githubusercontent.com",
			Audience:    "sts.amazonaws.com",
			Thumbprints: githubThumbprints,
		}, nil

	case "gitlab.com":
		thumbprint, err := r.computeThumbprint("gitlab.com")
		if err != nil {
			return nil, err
		}
		return &Config{
			Kind:        ProviderGitLab,
			IssuerURL:   "https://gitlab.com",
			Audience:    "https://gitlab.com",
			Thumbprints: []string{thumbprint},
		}, nil

	case "bitbucket.org":
		// Bitbucket's issuer is workspace-scoped; the workspace is the
		// first path segment of the remote URL.
		workspace := firstPathSegment(path)
		if workspace == "" {
			return nil, fmt.Errorf("cannot determine Bitbucket workspace from %q", repoURL)
		}
		thumbprint, err := r.computeThumbprint("api.bitbucket.org")
		if err != nil {
			return nil, err
		}
		return &Config{
			Kind:        ProviderBitbucket,
			IssuerURL:   fmt.Sprintf("https://api.bitbucket.org/2.0/workspaces/%s/pipelines-config/identity/oidc", workspace),
			Audience:    fmt.Sprintf("ari:cloud:bitbucket::workspace/%s", workspace),
			Thumbprints: []string{thumbprint},
		}, nil
	}

	return nil, errs.Newf(errs.CategoryUnsupportedProvider, "repository host %q is not a supported OIDC federation provider", host)
}

// computeThumbprint fetches and validates a thumbprint. A malformed value
// fails the whole resolution; an empty thumbprint would silently break
// federation trust later.
func (r *Resolver) computeThumbprint(host string) (string, error) {
	thumbprint, err := r.fetchThumbprint(host)
	if err != nil {
		return "", fmt.Errorf("failed to compute thumbprint for %s: %w", host, err)
	}
	if !isWellFormedThumbprint(thumbprint) {
		return "", fmt.Errorf("thumbprint for %s is malformed: %q", host, thumbprint)
	}
	return thumbprint, nil
}

// isWellFormedThumbprint checks for 40 lowercase hex characters, no separators
func isWellFormedThumbprint(thumbprint string) bool {
	if len(thumbprint) != 40 {
		return false
	}
	for _, c := range thumbprint {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// leafCertThumbprint connects to host:443 and fingerprints the leaf certificate
func leafCertThumbprint(host string) (string, error) {
	conn, err := tls.Dial("tcp", host+":443", &tls.Config{})
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", host, err)
	}
	defer func() { _ = conn.Close() }()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return "", fmt.Errorf("no certificate presented by %s", host)
	}

	sum := sha1.Sum(certs[0].Raw)
	return hex.EncodeToString(sum[:]), nil
}

// splitRemoteURL extracts host and path from https, ssh and scp-like remotes
func splitRemoteURL(repoURL string) (host, path string, err error) {
	trimmed := strings.TrimSpace(repoURL)
	if trimmed == "" {
		return "", "", fmt.Errorf("repository URL is empty")
	}

	// scp-like syntax: git@host:owner/repo.git
	if !strings.Contains(trimmed, "://") {
		if at := strings.Index(trimmed, "@"); at >= 0 {
			rest := trimmed[at+1:]
			if colon := strings.Index(rest, ":"); colon >= 0 {
				return rest[:colon], strings.TrimPrefix(rest[colon+1:], "/"), nil
			}
		}
		return "", "", fmt.Errorf("unrecognised repository URL %q", repoURL)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse repository URL %q: %w", repoURL, err)
	}
	return parsed.Hostname(), strings.TrimPrefix(parsed.Path, "/"), nil
}

func firstPathSegment(path string) string {
	if idx := strings.Index(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return path
}
