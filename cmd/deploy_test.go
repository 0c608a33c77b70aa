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
	"github.com/getgroundwork/groundwork/internal/oidc"
	"github.com/getgroundwork/groundwork/internal/state"
)

// MockDeployExecutor is a mock implementation of the DeployExecutor interface
type MockDeployExecutor struct {
	mock.Mock
}

func (m *MockDeployExecutor) Execute(ctx context.Context, plan *state.Plan, params *config.Parameters) error {
	args := m.Called(ctx, plan, params)
	return args.Error(0)
}

// MockChecker is a mock implementation of the PrerequisiteChecker interface
type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) Check(ctx context.Context, requireCleanTree bool) (*aws.CallerIdentity, error) {
	args := m.Called(ctx, requireCleanTree)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aws.CallerIdentity), args.Error(1)
}

func stubGitRunner(url string) config.GitRunner {
	return func(ctx context.Context, args ...string) (string, error) {
		return url, nil
	}
}

// setupDeployFixture wires mocks for a deploy run against a healthy stack
func setupDeployFixture(t *testing.T) (*aws.MockClient, *MockDeployExecutor) {
	t.Helper()

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(true, nil)
	cfn.On("GetStack", mock.Anything, "widgets").Return(&aws.Stack{
		Name:   "widgets",
		Status: aws.StackStatusCreateComplete,
	}, nil)

	iam := &aws.MockIAMOperations{}
	iam.On("AccountAlias", mock.Anything).Return("acme-prod", nil)

	client := &aws.MockClient{}
	client.On("CloudFormation").Return(cfn)
	client.On("S3").Return(&aws.MockS3Operations{})
	client.On("DynamoDB").Return(&aws.MockDynamoDBOperations{})
	client.On("IAM").Return(iam)
	client.On("Region").Return("eu-west-1")

	mockChecker := &MockChecker{}
	mockChecker.On("Check", mock.Anything, true).Return(&aws.CallerIdentity{
		AccountID: "123456789012",
		ARN:       "arn:aws:iam::123456789012:user/dev",
	}, nil)

	executor := &MockDeployExecutor{}

	SetAWSClient(client)
	SetChecker(mockChecker)
	SetGitRunner(stubGitRunner("git@github.com:acme/widgets.git"))
	SetDeployExecutor(executor)
	t.Cleanup(func() {
		SetAWSClient(nil)
		SetChecker(nil)
		SetGitRunner(nil)
		SetDeployExecutor(nil)
	})

	return client, executor
}

func TestDeployCommand_Exists(t *testing.T) {
	deployCmd := findCommand(rootCmd, "deploy")

	assert.NotNil(t, deployCmd, "deploy command should be registered")
	assert.Equal(t, "deploy", deployCmd.Use)
}

func TestDeployCommand_ExecutesPlannedTransition(t *testing.T) {
	_, executor := setupDeployFixture(t)
	executor.On("Execute", mock.Anything, mock.MatchedBy(func(plan *state.Plan) bool {
		return plan.Action == state.ActionUpdate
	}), mock.MatchedBy(func(params *config.Parameters) bool {
		return params.Project == "widgets" &&
			params.AccountID == "123456789012" &&
			params.Provider != nil &&
			params.Provider.Kind == oidc.ProviderGitHub
	})).Return(nil)

	rootCmd.SetArgs([]string{"deploy"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	executor.AssertExpectations(t)
}

func TestDeployCommand_HandlesExecutorError(t *testing.T) {
	_, executor := setupDeployFixture(t)
	executor.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("deployment failed"))

	rootCmd.SetArgs([]string{"deploy"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error deploying stack widgets")
	assert.Contains(t, err.Error(), "deployment failed")
}

func TestDeployCommand_DeclinedReconciliationIsSuccess(t *testing.T) {
	_, executor := setupDeployFixture(t)
	executor.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(errs.New(errs.CategoryUserDeclined, "orphaned resources left untouched"))

	rootCmd.SetArgs([]string{"deploy"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	// saying no is an answer, not a failure
	require.NoError(t, err)
	executor.AssertExpectations(t)
}

func TestDeployCommand_FailedPreflightBlocksRun(t *testing.T) {
	mockChecker := &MockChecker{}
	mockChecker.On("Check", mock.Anything, true).
		Return(nil, errors.New("work tree has uncommitted changes"))

	executor := &MockDeployExecutor{}

	SetAWSClient(&aws.MockClient{})
	SetChecker(mockChecker)
	SetDeployExecutor(executor)
	t.Cleanup(func() {
		SetAWSClient(nil)
		SetChecker(nil)
		SetDeployExecutor(nil)
	})

	rootCmd.SetArgs([]string{"deploy"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "uncommitted changes")
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeployCommand_BusyStackFailsFast(t *testing.T) {
	_, executor := setupDeployFixture(t)

	// replace the stack with a busy one
	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(true, nil)
	cfn.On("GetStack", mock.Anything, "widgets").Return(&aws.Stack{
		Name:   "widgets",
		Status: aws.StackStatusUpdateInProgress,
	}, nil)

	iam := &aws.MockIAMOperations{}
	iam.On("AccountAlias", mock.Anything).Return("acme-prod", nil)

	busy := &aws.MockClient{}
	busy.On("CloudFormation").Return(cfn)
	busy.On("S3").Return(&aws.MockS3Operations{})
	busy.On("DynamoDB").Return(&aws.MockDynamoDBOperations{})
	busy.On("IAM").Return(iam)
	busy.On("Region").Return("eu-west-1")
	SetAWSClient(busy)

	rootCmd.SetArgs([]string{"deploy"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}
