/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

package preflight

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/errs"
)

func gitStub(responses map[string]string, failures map[string]error) func(ctx context.Context, args ...string) (string, error) {
	return func(ctx context.Context, args ...string) (string, error) {
		key := args[0]
		if err, ok := failures[key]; ok {
			return "", err
		}
		return responses[key], nil
	}
}

func foundLookup(string) (string, error)   { return "/usr/bin/git", nil }
func missingLookup(string) (string, error) { return "", errors.New("not found") }

func TestCheckPasses(t *testing.T) {
	sts := &aws.MockSTSOperations{}
	sts.On("CallerIdentity", mock.Anything).Return(&aws.CallerIdentity{
		AccountID: "123456789012",
		ARN:       "arn:aws:iam::123456789012:user/dev",
	}, nil)

	checker := NewCheckerWithGit(sts, gitStub(map[string]string{
		"rev-parse": "true",
		"status":    "",
	}, nil), foundLookup)

	identity, err := checker.Check(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, "123456789012", identity.AccountID)
	sts.AssertExpectations(t)
}

func TestCheckGitMissing(t *testing.T) {
	checker := NewCheckerWithGit(&aws.MockSTSOperations{}, gitStub(nil, nil), missingLookup)

	_, err := checker.Check(context.Background(), true)

	assert.Equal(t, errs.CategoryPrecondition, errs.CategoryOf(err))
	assert.ErrorContains(t, err, "git is not installed")
}

func TestCheckNotARepository(t *testing.T) {
	checker := NewCheckerWithGit(&aws.MockSTSOperations{}, gitStub(nil, map[string]error{
		"rev-parse": errors.New("fatal: not a git repository"),
	}), foundLookup)

	_, err := checker.Check(context.Background(), true)

	assert.ErrorContains(t, err, "not inside a git repository")
}

func TestCheckDirtyWorkTree(t *testing.T) {
	checker := NewCheckerWithGit(&aws.MockSTSOperations{}, gitStub(map[string]string{
		"rev-parse": "true",
		"status":    " M internal/config/file.go",
	}, nil), foundLookup)

	_, err := checker.Check(context.Background(), true)

	assert.Equal(t, errs.CategoryPrecondition, errs.CategoryOf(err))
	assert.ErrorContains(t, err, "uncommitted changes")
}

func TestCheckDirtyWorkTreeAllowedWhenNotRequired(t *testing.T) {
	sts := &aws.MockSTSOperations{}
	sts.On("CallerIdentity", mock.Anything).Return(&aws.CallerIdentity{
		AccountID: "123456789012",
		ARN:       "arn:aws:iam::123456789012:user/dev",
	}, nil)

	checker := NewCheckerWithGit(sts, gitStub(map[string]string{
		"rev-parse": "true",
		"status":    " M internal/config/file.go",
	}, nil), foundLookup)

	_, err := checker.Check(context.Background(), false)

	assert.NoError(t, err)
}

func TestCheckBadCredentials(t *testing.T) {
	sts := &aws.MockSTSOperations{}
	sts.On("CallerIdentity", mock.Anything).Return(nil, errors.New("ExpiredToken"))

	checker := NewCheckerWithGit(sts, gitStub(map[string]string{
		"rev-parse": "true",
		"status":    "",
	}, nil), foundLookup)

	_, err := checker.Check(context.Background(), true)

	assert.Equal(t, errs.CategoryPrecondition, errs.CategoryOf(err))
	assert.ErrorContains(t, err, "AWS credentials")
}
