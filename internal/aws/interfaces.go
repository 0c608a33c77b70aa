/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CloudFormationClient defines the interface for CloudFormation client operations
// This allows for easier testing with mock implementations
type CloudFormationClient interface {
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	DescribeStackResources(ctx context.Context, params *cloudformation.DescribeStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackResourcesOutput, error)
	DescribeStackEvents(ctx context.Context, params *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error)
	CreateChangeSet(ctx context.Context, params *cloudformation.CreateChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateChangeSetOutput, error)
	ExecuteChangeSet(ctx context.Context, params *cloudformation.ExecuteChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ExecuteChangeSetOutput, error)
	DescribeChangeSet(ctx context.Context, params *cloudformation.DescribeChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeChangeSetOutput, error)
	UpdateTerminationProtection(ctx context.Context, params *cloudformation.UpdateTerminationProtectionInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateTerminationProtectionOutput, error)
}

// S3Client defines the subset of the S3 API used by groundwork
type S3Client interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	ListObjectVersions(ctx context.Context, params *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
}

// DynamoDBClient defines the subset of the DynamoDB API used by groundwork
type DynamoDBClient interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	UpdateTable(ctx context.Context, params *dynamodb.UpdateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTableOutput, error)
	DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
}

// IAMClient defines the subset of the IAM API used by groundwork
type IAMClient interface {
	ListOpenIDConnectProviders(ctx context.Context, params *iam.ListOpenIDConnectProvidersInput, optFns ...func(*iam.Options)) (*iam.ListOpenIDConnectProvidersOutput, error)
	GetOpenIDConnectProvider(ctx context.Context, params *iam.GetOpenIDConnectProviderInput, optFns ...func(*iam.Options)) (*iam.GetOpenIDConnectProviderOutput, error)
	DeleteOpenIDConnectProvider(ctx context.Context, params *iam.DeleteOpenIDConnectProviderInput, optFns ...func(*iam.Options)) (*iam.DeleteOpenIDConnectProviderOutput, error)
	ListAccountAliases(ctx context.Context, params *iam.ListAccountAliasesInput, optFns ...func(*iam.Options)) (*iam.ListAccountAliasesOutput, error)
}

// SSMClient defines the subset of the SSM API used by groundwork
type SSMClient interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// STSClient defines the subset of the STS API used by groundwork
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Ensure that the actual AWS service clients implement our interfaces
var (
	_ CloudFormationClient = (*cloudformation.Client)(nil)
	_ S3Client             = (*s3.Client)(nil)
	_ DynamoDBClient       = (*dynamodb.Client)(nil)
	_ IAMClient            = (*iam.Client)(nil)
	_ SSMClient            = (*ssm.Client)(nil)
	_ STSClient            = (*sts.Client)(nil)
)

// Ensure the default operations types implement their interfaces
var (
	_ CloudFormationOperations = (*DefaultCloudFormationOperations)(nil)
	_ S3Operations             = (*DefaultS3Operations)(nil)
	_ DynamoDBOperations       = (*DefaultDynamoDBOperations)(nil)
	_ IAMOperations            = (*DefaultIAMOperations)(nil)
	_ SSMOperations            = (*DefaultSSMOperations)(nil)
	_ STSOperations            = (*DefaultSTSOperations)(nil)
)

// CloudFormationOperations defines the interface for CloudFormation operations
type CloudFormationOperations interface {
	CreateStack(ctx context.Context, input CreateStackInput) error
	UpdateStack(ctx context.Context, input UpdateStackInput) error
	DeleteStack(ctx context.Context, stackName string) error
	GetStack(ctx context.Context, stackName string) (*Stack, error)
	StackExists(ctx context.Context, stackName string) (bool, error)
	DescribeStackResources(ctx context.Context, stackName string) ([]StackResource, error)
	FailedStackResources(ctx context.Context, stackName string) ([]StackResource, error)
	SetTerminationProtection(ctx context.Context, stackName string, enabled bool) error
	ImportResources(ctx context.Context, input ImportResourcesInput) error
	WaitForStackOperation(ctx context.Context, stackName string, eventCallback func(StackEvent)) (StackStatus, error)
	WaitForStackDeletion(ctx context.Context, stackName string, eventCallback func(StackEvent)) error
}

// S3Operations defines the interface for S3 operations
type S3Operations interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	ListProjectBuckets(ctx context.Context, projectTag string) ([]string, error)
	ListObjectVersionsPage(ctx context.Context, bucketName, keyMarker, versionMarker string) (*ObjectVersionPage, error)
	DeleteObjectVersions(ctx context.Context, bucketName string, objects []ObjectVersion) (int, error)
	DeleteBucket(ctx context.Context, bucketName string) error
}

// DynamoDBOperations defines the interface for DynamoDB operations
type DynamoDBOperations interface {
	TableExists(ctx context.Context, tableName string) (bool, error)
	SetDeletionProtection(ctx context.Context, tableName string, enabled bool) error
	DeleteTable(ctx context.Context, tableName string) error
}

// IAMOperations defines the interface for IAM operations
type IAMOperations interface {
	FindOpenIDConnectProvider(ctx context.Context, issuerURL string) (string, error)
	DeleteOpenIDConnectProvider(ctx context.Context, arn string) error
	AccountAlias(ctx context.Context) (string, error)
}

// SSMOperations defines the interface for SSM operations
type SSMOperations interface {
	PutParameter(ctx context.Context, name, value string) error
}

// STSOperations defines the interface for STS operations
type STSOperations interface {
	CallerIdentity(ctx context.Context) (*CallerIdentity, error)
}
