/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient implements Client for testing
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CloudFormation() CloudFormationOperations {
	args := m.Called()
	return args.Get(0).(CloudFormationOperations)
}

func (m *MockClient) S3() S3Operations {
	args := m.Called()
	return args.Get(0).(S3Operations)
}

func (m *MockClient) DynamoDB() DynamoDBOperations {
	args := m.Called()
	return args.Get(0).(DynamoDBOperations)
}

func (m *MockClient) IAM() IAMOperations {
	args := m.Called()
	return args.Get(0).(IAMOperations)
}

func (m *MockClient) SSM() SSMOperations {
	args := m.Called()
	return args.Get(0).(SSMOperations)
}

func (m *MockClient) STS() STSOperations {
	args := m.Called()
	return args.Get(0).(STSOperations)
}

func (m *MockClient) Region() string {
	args := m.Called()
	return args.String(0)
}

// MockCloudFormationOperations implements CloudFormationOperations for testing
type MockCloudFormationOperations struct {
	mock.Mock
}

func (m *MockCloudFormationOperations) CreateStack(ctx context.Context, input CreateStackInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockCloudFormationOperations) UpdateStack(ctx context.Context, input UpdateStackInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockCloudFormationOperations) DeleteStack(ctx context.Context, stackName string) error {
	args := m.Called(ctx, stackName)
	return args.Error(0)
}

func (m *MockCloudFormationOperations) GetStack(ctx context.Context, stackName string) (*Stack, error) {
	args := m.Called(ctx, stackName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stack), args.Error(1)
}

func (m *MockCloudFormationOperations) StackExists(ctx context.Context, stackName string) (bool, error) {
	args := m.Called(ctx, stackName)
	return args.Bool(0), args.Error(1)
}

func (m *MockCloudFormationOperations) DescribeStackResources(ctx context.Context, stackName string) ([]StackResource, error) {
	args := m.Called(ctx, stackName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]StackResource), args.Error(1)
}

func (m *MockCloudFormationOperations) FailedStackResources(ctx context.Context, stackName string) ([]StackResource, error) {
	args := m.Called(ctx, stackName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]StackResource), args.Error(1)
}

func (m *MockCloudFormationOperations) SetTerminationProtection(ctx context.Context, stackName string, enabled bool) error {
	args := m.Called(ctx, stackName, enabled)
	return args.Error(0)
}

func (m *MockCloudFormationOperations) ImportResources(ctx context.Context, input ImportResourcesInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockCloudFormationOperations) WaitForStackOperation(ctx context.Context, stackName string, eventCallback func(StackEvent)) (StackStatus, error) {
	args := m.Called(ctx, stackName, eventCallback)
	return args.Get(0).(StackStatus), args.Error(1)
}

func (m *MockCloudFormationOperations) WaitForStackDeletion(ctx context.Context, stackName string, eventCallback func(StackEvent)) error {
	args := m.Called(ctx, stackName, eventCallback)
	return args.Error(0)
}

// MockS3Operations implements S3Operations for testing
type MockS3Operations struct {
	mock.Mock
}

func (m *MockS3Operations) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockS3Operations) ListProjectBuckets(ctx context.Context, projectTag string) ([]string, error) {
	args := m.Called(ctx, projectTag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockS3Operations) ListObjectVersionsPage(ctx context.Context, bucketName, keyMarker, versionMarker string) (*ObjectVersionPage, error) {
	args := m.Called(ctx, bucketName, keyMarker, versionMarker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ObjectVersionPage), args.Error(1)
}

func (m *MockS3Operations) DeleteObjectVersions(ctx context.Context, bucketName string, objects []ObjectVersion) (int, error) {
	args := m.Called(ctx, bucketName, objects)
	return args.Int(0), args.Error(1)
}

func (m *MockS3Operations) DeleteBucket(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

// MockDynamoDBOperations implements DynamoDBOperations for testing
type MockDynamoDBOperations struct {
	mock.Mock
}

func (m *MockDynamoDBOperations) TableExists(ctx context.Context, tableName string) (bool, error) {
	args := m.Called(ctx, tableName)
	return args.Bool(0), args.Error(1)
}

func (m *MockDynamoDBOperations) SetDeletionProtection(ctx context.Context, tableName string, enabled bool) error {
	args := m.Called(ctx, tableName, enabled)
	return args.Error(0)
}

func (m *MockDynamoDBOperations) DeleteTable(ctx context.Context, tableName string) error {
	args := m.Called(ctx, tableName)
	return args.Error(0)
}

// MockIAMOperations implements IAMOperations for testing
type MockIAMOperations struct {
	mock.Mock
}

func (m *MockIAMOperations) FindOpenIDConnectProvider(ctx context.Context, issuerURL string) (string, error) {
	args := m.Called(ctx, issuerURL)
	return args.String(0), args.Error(1)
}

func (m *MockIAMOperations) DeleteOpenIDConnectProvider(ctx context.Context, arn string) error {
	args := m.Called(ctx, arn)
	return args.Error(0)
}

func (m *MockIAMOperations) AccountAlias(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockSSMOperations implements SSMOperations for testing
type MockSSMOperations struct {
	mock.Mock
}

func (m *MockSSMOperations) PutParameter(ctx context.Context, name, value string) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

// MockSTSOperations implements STSOperations for testing
type MockSTSOperations struct {
	mock.Mock
}

func (m *MockSTSOperations) CallerIdentity(ctx context.Context) (*CallerIdentity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CallerIdentity), args.Error(1)
}
