/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

package destroy

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
	"github.com/getgroundwork/groundwork/internal/prompt"
	"github.com/getgroundwork/groundwork/internal/reclaim"
)

type mockReclaimer struct {
	mock.Mock
}

func (m *mockReclaimer) Empty(ctx context.Context, bucketName string) (*reclaim.Result, error) {
	args := m.Called(ctx, bucketName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reclaim.Result), args.Error(1)
}

func (m *mockReclaimer) Reclaim(ctx context.Context, bucketName string) (*reclaim.Result, error) {
	args := m.Called(ctx, bucketName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reclaim.Result), args.Error(1)
}

func testParameters() *config.Parameters {
	return &config.Parameters{
		AccountID:     "123456789012",
		Region:        "eu-west-1",
		RepositoryURL: "git@github.com:acme/widgets.git",
		Project:       "widgets",
	}
}

func stubPrompter(t *testing.T, destroyConfirmed, bucketsConfirmed bool) *prompt.MockPrompter {
	t.Helper()
	prompter := &prompt.MockPrompter{}
	prompter.On("ConfirmTyped", mock.Anything, "destroy").Return(destroyConfirmed, nil).Maybe()
	prompter.On("ConfirmTyped", mock.Anything, "delete bucket data").Return(bucketsConfirmed, nil).Maybe()
	prompt.SetPrompter(prompter)
	t.Cleanup(func() { prompt.SetPrompter(prompt.NewStdinPrompter()) })
	return prompter
}

func TestExecuteCleanAccountIsANoOp(t *testing.T) {
	stubPrompter(t, true, true)

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(false, nil)

	s3 := &aws.MockS3Operations{}
	s3.On("BucketExists", mock.Anything, "state-123456789012-eu-west-1").Return(false, nil)
	s3.On("BucketExists", mock.Anything, "logs-123456789012-eu-west-1").Return(false, nil)

	executor := NewExecutorWithOperations(cfn, s3, &aws.MockDynamoDBOperations{}, &mockReclaimer{})
	err := executor.Execute(context.Background(), testParameters())

	require.NoError(t, err)
	cfn.AssertNotCalled(t, "DeleteStack", mock.Anything, mock.Anything)
}

func TestExecuteFullDestruction(t *testing.T) {
	stubPrompter(t, true, true)

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(true, nil)
	cfn.On("GetStack", mock.Anything, "widgets").Return(&aws.Stack{
		Name:                  "widgets",
		Status:                aws.StackStatusCreateComplete,
		TerminationProtection: true,
	}, nil)
	cfn.On("SetTerminationProtection", mock.Anything, "widgets", false).Return(nil)
	cfn.On("DeleteStack", mock.Anything, "widgets").Return(nil)
	cfn.On("WaitForStackDeletion", mock.Anything, "widgets", mock.Anything).Return(nil)

	dynamodb := &aws.MockDynamoDBOperations{}
	dynamodb.On("SetDeletionProtection", mock.Anything, "lock-123456789012-eu-west-1", false).Return(nil)

	reclaimer := &mockReclaimer{}
	reclaimer.On("Empty", mock.Anything, "state-123456789012-eu-west-1").
		Return(&reclaim.Result{Existed: true, ObjectsDeleted: 40}, nil)
	reclaimer.On("Empty", mock.Anything, "logs-123456789012-eu-west-1").
		Return(&reclaim.Result{Existed: true, ObjectsDeleted: 7}, nil)
	reclaimer.On("Reclaim", mock.Anything, "state-123456789012-eu-west-1").
		Return(&reclaim.Result{Existed: true, BucketDeleted: true}, nil)
	reclaimer.On("Reclaim", mock.Anything, "logs-123456789012-eu-west-1").
		Return(&reclaim.Result{Existed: false}, nil)

	executor := NewExecutorWithOperations(cfn, &aws.MockS3Operations{}, dynamodb, reclaimer)
	err := executor.Execute(context.Background(), testParameters())

	require.NoError(t, err)
	cfn.AssertExpectations(t)
	dynamodb.AssertExpectations(t)
	reclaimer.AssertExpectations(t)
}

func TestExecuteDecliningBucketDataKeepsBuckets(t *testing.T) {
	stubPrompter(t, true, false)

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(true, nil)
	cfn.On("GetStack", mock.Anything, "widgets").Return(&aws.Stack{
		Name:   "widgets",
		Status: aws.StackStatusCreateComplete,
	}, nil)
	cfn.On("DeleteStack", mock.Anything, "widgets").Return(nil)
	cfn.On("WaitForStackDeletion", mock.Anything, "widgets", mock.Anything).Return(nil)

	dynamodb := &aws.MockDynamoDBOperations{}
	dynamodb.On("SetDeletionProtection", mock.Anything, "lock-123456789012-eu-west-1", false).Return(nil)

	reclaimer := &mockReclaimer{}

	executor := NewExecutorWithOperations(cfn, &aws.MockS3Operations{}, dynamodb, reclaimer)
	err := executor.Execute(context.Background(), testParameters())

	require.NoError(t, err)
	reclaimer.AssertNotCalled(t, "Empty", mock.Anything, mock.Anything)
	reclaimer.AssertNotCalled(t, "Reclaim", mock.Anything, mock.Anything)
	cfn.AssertNotCalled(t, "SetTerminationProtection", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteDecliningDestructionAborts(t *testing.T) {
	stubPrompter(t, false, false)

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(true, nil)
	cfn.On("GetStack", mock.Anything, "widgets").Return(&aws.Stack{
		Name:   "widgets",
		Status: aws.StackStatusCreateComplete,
	}, nil)

	executor := NewExecutorWithOperations(cfn, &aws.MockS3Operations{}, &aws.MockDynamoDBOperations{}, &mockReclaimer{})
	err := executor.Execute(context.Background(), testParameters())

	assert.Equal(t, errs.CategoryUserDeclined, errs.CategoryOf(err))
	cfn.AssertNotCalled(t, "DeleteStack", mock.Anything, mock.Anything)
}

func TestExecuteBusyStackIsRejected(t *testing.T) {
	stubPrompter(t, true, true)

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(true, nil)
	cfn.On("GetStack", mock.Anything, "widgets").Return(&aws.Stack{
		Name:   "widgets",
		Status: aws.StackStatusUpdateInProgress,
	}, nil)

	executor := NewExecutorWithOperations(cfn, &aws.MockS3Operations{}, &aws.MockDynamoDBOperations{}, &mockReclaimer{})
	err := executor.Execute(context.Background(), testParameters())

	assert.Equal(t, errs.CategoryStateConflict, errs.CategoryOf(err))
}

func TestExecuteDeletionFailureSurfacesStuckResources(t *testing.T) {
	stubPrompter(t, true, false)

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(true, nil)
	cfn.On("GetStack", mock.Anything, "widgets").Return(&aws.Stack{
		Name:   "widgets",
		Status: aws.StackStatusCreateComplete,
	}, nil)
	cfn.On("DeleteStack", mock.Anything, "widgets").Return(nil)
	cfn.On("WaitForStackDeletion", mock.Anything, "widgets", mock.Anything).
		Return(errors.New("stack widgets deletion failed"))
	cfn.On("FailedStackResources", mock.Anything, "widgets").Return([]aws.StackResource{
		{LogicalID: "StateBucket", Type: "AWS::S3::Bucket", Status: "DELETE_FAILED", StatusReason: "bucket is not empty"},
	}, nil)

	dynamodb := &aws.MockDynamoDBOperations{}
	dynamodb.On("SetDeletionProtection", mock.Anything, "lock-123456789012-eu-west-1", false).Return(nil)

	executor := NewExecutorWithOperations(cfn, &aws.MockS3Operations{}, dynamodb, &mockReclaimer{})
	err := executor.Execute(context.Background(), testParameters())

	require.Error(t, err)
	assert.ErrorContains(t, err, "StateBucket")
	assert.ErrorContains(t, err, "bucket is not empty")
}

func TestExecuteOrphanedBucketsWithoutStack(t *testing.T) {
	stubPrompter(t, true, true)

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(false, nil)

	s3 := &aws.MockS3Operations{}
	s3.On("BucketExists", mock.Anything, "state-123456789012-eu-west-1").Return(true, nil)
	s3.On("BucketExists", mock.Anything, "logs-123456789012-eu-west-1").Return(false, nil)

	reclaimer := &mockReclaimer{}
	reclaimer.On("Reclaim", mock.Anything, "state-123456789012-eu-west-1").
		Return(&reclaim.Result{Existed: true, ObjectsDeleted: 3, BucketDeleted: true}, nil)

	executor := NewExecutorWithOperations(cfn, s3, &aws.MockDynamoDBOperations{}, reclaimer)
	err := executor.Execute(context.Background(), testParameters())

	require.NoError(t, err)
	reclaimer.AssertExpectations(t)
}

func TestExecuteOrphanedBucketsDeclined(t *testing.T) {
	stubPrompter(t, true, false)

	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(false, nil)

	s3 := &aws.MockS3Operations{}
	s3.On("BucketExists", mock.Anything, "state-123456789012-eu-west-1").Return(true, nil)
	s3.On("BucketExists", mock.Anything, "logs-123456789012-eu-west-1").Return(false, nil)

	reclaimer := &mockReclaimer{}

	executor := NewExecutorWithOperations(cfn, s3, &aws.MockDynamoDBOperations{}, reclaimer)
	err := executor.Execute(context.Background(), testParameters())

	assert.Equal(t, errs.CategoryUserDeclined, errs.CategoryOf(err))
	reclaimer.AssertNotCalled(t, "Reclaim", mock.Anything, mock.Anything)
}
