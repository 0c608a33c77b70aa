/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

package describe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/state"
)

func TestDescribeHealthyStack(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(true, nil)
	cfn.On("GetStack", mock.Anything, "widgets").Return(&aws.Stack{
		Name:        "widgets",
		Status:      aws.StackStatusCreateComplete,
		CreatedTime: &created,
		Outputs:     map[string]string{"StateBucketName": "state-123456789012-eu-west-1"},
	}, nil)
	cfn.On("DescribeStackResources", mock.Anything, "widgets").Return([]aws.StackResource{
		{LogicalID: "StateBucket", Type: "AWS::S3::Bucket", Status: "CREATE_COMPLETE"},
	}, nil)

	describer := NewDescriber(cfn, &aws.MockS3Operations{}, &aws.MockDynamoDBOperations{}, &aws.MockIAMOperations{})
	report, err := describer.Describe(context.Background(), "widgets", "widgets", "123456789012", "eu-west-1", "")

	require.NoError(t, err)
	assert.Equal(t, state.StateHealthy, report.State)
	require.Len(t, report.Resources, 1)
	assert.Equal(t, "StateBucket", report.Resources[0].LogicalID)
}

func TestDescribeAbsentStackListsOrphans(t *testing.T) {
	cfn := &aws.MockCloudFormationOperations{}
	cfn.On("StackExists", mock.Anything, "widgets").Return(false, nil)

	s3 := &aws.MockS3Operations{}
	s3.On("BucketExists", mock.Anything, "state-123456789012-eu-west-1").Return(true, nil)
	s3.On("BucketExists", mock.Anything, "logs-123456789012-eu-west-1").Return(false, nil)
	s3.On("ListProjectBuckets", mock.Anything, "widgets").Return([]string{}, nil)

	dynamodb := &aws.MockDynamoDBOperations{}
	dynamodb.On("TableExists", mock.Anything, "lock-123456789012-eu-west-1").Return(false, nil)

	describer := NewDescriber(cfn, s3, dynamodb, &aws.MockIAMOperations{})
	report, err := describer.Describe(context.Background(), "widgets", "widgets", "123456789012", "eu-west-1", "")

	require.NoError(t, err)
	assert.Equal(t, state.StateAbsent, report.State)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, "state-123456789012-eu-west-1", report.Orphans[0].PhysicalID)
	cfn.AssertNotCalled(t, "DescribeStackResources", mock.Anything, mock.Anything)
}

func TestFormatHealthyReport(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	report := &Report{
		StackName: "widgets",
		State:     state.StateHealthy,
		Stack: &aws.Stack{
			Name:                  "widgets",
			Status:                aws.StackStatusCreateComplete,
			TerminationProtection: true,
			CreatedTime:           &created,
			Outputs: map[string]string{
				"StateBucketName": "state-123456789012-eu-west-1",
				"LockTableName":   "lock-123456789012-eu-west-1",
			},
		},
		Resources: []aws.StackResource{
			{LogicalID: "StateBucket", Type: "AWS::S3::Bucket", Status: "CREATE_COMPLETE"},
		},
	}

	out := Format(report, NewStyles(false))

	assert.Contains(t, out, "Stack: widgets")
	assert.Contains(t, out, "HEALTHY")
	assert.Contains(t, out, "Termination protection: true")
	assert.Contains(t, out, "StateBucket")
	assert.Contains(t, out, "StateBucketName: state-123456789012-eu-west-1")
}

func TestFormatFailedResourceShowsReason(t *testing.T) {
	report := &Report{
		StackName: "widgets",
		State:     state.StateFailedInitial,
		Stack:     &aws.Stack{Name: "widgets", Status: aws.StackStatusRollbackComplete},
		Resources: []aws.StackResource{
			{LogicalID: "LockTable", Type: "AWS::DynamoDB::Table", Status: "CREATE_FAILED", StatusReason: "limit exceeded"},
		},
	}

	out := Format(report, NewStyles(false))

	assert.Contains(t, out, "FAILED_INITIAL")
	assert.Contains(t, out, "limit exceeded")
}

func TestFormatOrphans(t *testing.T) {
	report := &Report{
		StackName: "widgets",
		State:     state.StateAbsent,
		Orphans: []state.OrphanCandidate{
			{PhysicalID: "state-123456789012-eu-west-1", Kind: state.OrphanStateBucket, Confidence: state.ConfidenceNameMatch},
		},
	}

	out := Format(report, NewStyles(false))

	assert.Contains(t, out, "Orphaned resources (1)")
	assert.Contains(t, out, "state-123456789012-eu-west-1")
	assert.Contains(t, out, "name-match")
}

func TestFormatCleanAccount(t *testing.T) {
	report := &Report{StackName: "widgets", State: state.StateAbsent}

	out := Format(report, NewStyles(false))

	assert.Contains(t, out, "No stack and no orphaned resources.")
}
