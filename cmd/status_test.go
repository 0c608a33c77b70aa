/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/describe"
	"github.com/getgroundwork/groundwork/internal/state"
)

// MockDescriber is a mock implementation of the Describer interface
type MockDescriber struct {
	mock.Mock
}

func (m *MockDescriber) Describe(ctx context.Context, stackName, project, accountID, region, issuerURL string) (*describe.Report, error) {
	args := m.Called(ctx, stackName, project, accountID, region, issuerURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*describe.Report), args.Error(1)
}

func setupStatusFixture(t *testing.T) *MockDescriber {
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

	mockDescriber := &MockDescriber{}

	SetAWSClient(client)
	SetChecker(mockChecker)
	SetGitRunner(stubGitRunner("git@github.com:acme/widgets.git"))
	SetDescriber(mockDescriber)
	t.Cleanup(func() {
		SetAWSClient(nil)
		SetChecker(nil)
		SetGitRunner(nil)
		SetDescriber(nil)
	})

	return mockDescriber
}

func TestStatusCommand_Exists(t *testing.T) {
	statusCmd := findCommand(rootCmd, "status")

	assert.NotNil(t, statusCmd, "status command should be registered")
	assert.Equal(t, "status", statusCmd.Use)
	assert.NotNil(t, statusCmd.Flags().Lookup("no-colour"))
}

func TestStatusCommand_ReportsObservedState(t *testing.T) {
	mockDescriber := setupStatusFixture(t)
	mockDescriber.On("Describe", mock.Anything, "widgets", "widgets", "123456789012", "eu-west-1",
		"https://token.actions.githubusercontent.com").
		Return(&describe.Report{StackName: "widgets", State: state.StateHealthy}, nil)

	rootCmd.SetArgs([]string{"status", "--no-colour"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	mockDescriber.AssertExpectations(t)
}

func TestStatusCommand_UnsupportedPlatformStillReports(t *testing.T) {
	mockDescriber := setupStatusFixture(t)
	SetGitRunner(stubGitRunner("git@sourcehut.org:acme/widgets.git"))

	// unknown platform yields no issuer URL, but the report still renders
	mockDescriber.On("Describe", mock.Anything, "widgets", "widgets", "123456789012", "eu-west-1", "").
		Return(&describe.Report{StackName: "widgets", State: state.StateAbsent}, nil)

	rootCmd.SetArgs([]string{"status", "--no-colour"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	mockDescriber.AssertExpectations(t)
}
