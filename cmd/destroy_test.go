/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/config"
	"github.com/getgroundwork/groundwork/internal/errs"
)

// MockDestroyExecutor is a mock implementation of the DestroyExecutor interface
type MockDestroyExecutor struct {
	mock.Mock
}

func (m *MockDestroyExecutor) Execute(ctx context.Context, params *config.Parameters) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func setupDestroyFixture(t *testing.T) *MockDestroyExecutor {
	t.Helper()

	iam := &aws.MockIAMOperations{}
	iam.On("AccountAlias", mock.Anything).Return("acme-prod", nil)

	client := &aws.MockClient{}
	client.On("IAM").Return(iam)
	client.On("Region").Return("eu-west-1")

	mockChecker := &MockChecker{}
	mockChecker.On("Check", mock.Anything, false).Return(&aws.CallerIdentity{
		AccountID: "123456789012",
		ARN:       "arn:aws:iam::123456789012:user/dev",
	}, nil)

	executor := &MockDestroyExecutor{}

	SetAWSClient(client)
	SetChecker(mockChecker)
	SetGitRunner(stubGitRunner("git@github.com:acme/widgets.git"))
	SetDestroyExecutor(executor)
	t.Cleanup(func() {
		SetAWSClient(nil)
		SetChecker(nil)
		SetGitRunner(nil)
		SetDestroyExecutor(nil)
	})

	return executor
}

func TestDestroyCommand_Exists(t *testing.T) {
	destroyCmd := findCommand(rootCmd, "destroy")

	assert.NotNil(t, destroyCmd, "destroy command should be registered")
	assert.Equal(t, "destroy", destroyCmd.Use)
}

func TestDestroyCommand_ExecutesDestruction(t *testing.T) {
	executor := setupDestroyFixture(t)
	executor.On("Execute", mock.Anything, mock.MatchedBy(func(params *config.Parameters) bool {
		return params.Project == "widgets" && params.AccountID == "123456789012"
	})).Return(nil)

	rootCmd.SetArgs([]string{"destroy"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	executor.AssertExpectations(t)
}

func TestDestroyCommand_DirtyWorkTreeIsAllowed(t *testing.T) {
	executor := setupDestroyFixture(t)
	executor.On("Execute", mock.Anything, mock.Anything).Return(nil)

	rootCmd.SetArgs([]string{"destroy"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	// the checker is asked not to require a clean tree
	executor.AssertExpectations(t)
}

func TestDestroyCommand_DeclinedConfirmationIsSuccess(t *testing.T) {
	executor := setupDestroyFixture(t)
	executor.On("Execute", mock.Anything, mock.Anything).
		Return(errs.New(errs.CategoryUserDeclined, "destruction aborted"))

	rootCmd.SetArgs([]string{"destroy"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	// saying no is an answer, not a failure
	require.NoError(t, err)
	executor.AssertExpectations(t)
}

func TestDestroyCommand_HandlesExecutorError(t *testing.T) {
	executor := setupDestroyFixture(t)
	executor.On("Execute", mock.Anything, mock.Anything).
		Return(errors.New("deletion failed"))

	rootCmd.SetArgs([]string{"destroy"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error destroying stack widgets")
	assert.Contains(t, err.Error(), "deletion failed")
}
