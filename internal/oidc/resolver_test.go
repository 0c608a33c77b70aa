/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package oidc

import (
	"errors"
	"testing"

	"github.com/getgroundwork/groundwork/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedFetcher returns a canned thumbprint and records whether it was called
func fixedFetcher(thumbprint string, called *bool) ThumbprintFetcher {
	return func(host string) (string, error) {
		if called != nil {
			*called = true
		}
		return thumbprint, nil
	}
}

func TestResolve_GitHub_UsesHardcodedThumbprints(t *testing.T) {
	var fetched bool
	r := NewResolverWithFetcher(fixedFetcher("", &fetched))

	cfg, err := r.Resolve("git@github.com:acme/widget.git")

	require.NoError(t, err)
	assert.Equal(t, ProviderGitHub, cfg.Kind)
	assert.Equal(t, "https://token.actions.githubusercontent.com", cfg.IssuerURL)
	assert.Equal(t, "sts.amazonaws.com", cfg.Audience)
	assert.Len(t, cfg.Thumbprints, 2)
	assert.False(t, fetched, "GitHub resolution should not fetch certificates")
}

func TestResolve_GitLab_ComputesThumbprint(t *testing.T) {
	r := NewResolverWithFetcher(fixedFetcher("aabbccddeeff00112233445566778899aabbccdd", nil))

	cfg, err := r.Resolve("https://gitlab.com/acme/widget.git")

	require.NoError(t, err)
	assert.Equal(t, ProviderGitLab, cfg.Kind)
	assert.Equal(t, "https://gitlab.com", cfg.IssuerURL)
	assert.Equal(t, "https://gitlab.com", cfg.Audience)
	assert.Equal(t, []string{"aabbccddeeff00112233445566778899aabbccdd"}, cfg.Thumbprints)
}

func TestResolve_Bitbucket_ExtractsWorkspace(t *testing.T) {
	r := NewResolverWithFetcher(fixedFetcher("aabbccddeeff00112233445566778899aabbccdd", nil))

	cfg, err := r.Resolve("git@bitbucket.org:acmeworkspace/widget.git")

	require.NoError(t, err)
	assert.Equal(t, ProviderBitbucket, cfg.Kind)
	assert.Equal(t, "https://api.bitbucket.org/2.0/workspaces/acmeworkspace/pipelines-config/identity/oidc", cfg.IssuerURL)
	assert.Equal(t, "ari:cloud:bitbucket::workspace/acmeworkspace", cfg.Audience)
}

func TestResolve_UnknownHostIsHardFailureWithoutNetwork(t *testing.T) {
	var fetched bool
	r := NewResolverWithFetcher(fixedFetcher("", &fetched))

	_, err := r.Resolve("git@example.com:acme/widget.git")

	require.Error(t, err)
	assert.Equal(t, errs.CategoryUnsupportedProvider, errs.CategoryOf(err))
	assert.False(t, fetched, "unsupported hosts must not trigger network calls")
}

func TestResolve_MalformedThumbprintFailsResolution(t *testing.T) {
	for _, bad := range []string{"", "short", "AABBCCDDEEFF00112233445566778899AABBCCDD", "zzbbccddeeff00112233445566778899aabbccdd"} {
		r := NewResolverWithFetcher(fixedFetcher(bad, nil))

		_, err := r.Resolve("https://gitlab.com/acme/widget.git")

		assert.Error(t, err, "thumbprint %q should fail resolution", bad)
	}
}

func TestResolve_FetcherErrorFailsResolution(t *testing.T) {
	r := NewResolverWithFetcher(func(host string) (string, error) {
		return "", errors.New("connection refused")
	})

	_, err := r.Resolve("https://gitlab.com/acme/widget.git")

	assert.Error(t, err)
}

func TestSplitRemoteURL_Formats(t *testing.T) {
	tests := []struct {
		url  string
		host string
		path string
	}{
		{"git@github.com:acme/widget.git", "github.com", "acme/widget.git"},
		{"https://github.com/acme/widget.git", "github.com", "acme/widget.git"},
		{"ssh://git@gitlab.com/acme/widget.git", "gitlab.com", "acme/widget.git"},
	}
	for _, tt := range tests {
		host, path, err := splitRemoteURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.host, host)
		assert.Equal(t, tt.path, path)
	}

	_, _, err := splitRemoteURL("")
	assert.Error(t, err)
}
