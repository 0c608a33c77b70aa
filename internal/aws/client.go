/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Client provides access to the per-service operations wrappers
type Client interface {
	CloudFormation() CloudFormationOperations
	S3() S3Operations
	DynamoDB() DynamoDBOperations
	IAM() IAMOperations
	SSM() SSMOperations
	STS() STSOperations
	Region() string
}

// Config holds configuration for creating an AWS client
type Config struct {
	Region  string
	Profile string
}

// DefaultClient provides a high-level interface for AWS operations
type DefaultClient struct {
	config aws.Config
	cfn    *cloudformation.Client
	s3     *s3.Client
	ddb    *dynamodb.Client
	iam    *iam.Client
	ssm    *ssm.Client
	sts    *sts.Client
}

// NewDefaultClient creates a new AWS client with the specified configuration
func NewDefaultClient(ctx context.Context, cfg Config) (*DefaultClient, error) {
	var opts []func(*config.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &DefaultClient{
		config: awsCfg,
		cfn:    cloudformation.NewFromConfig(awsCfg),
		s3:     s3.NewFromConfig(awsCfg),
		ddb:    dynamodb.NewFromConfig(awsCfg),
		iam:    iam.NewFromConfig(awsCfg),
		ssm:    ssm.NewFromConfig(awsCfg),
		sts:    sts.NewFromConfig(awsCfg),
	}, nil
}

// CloudFormation returns the CloudFormation operations wrapper
func (c *DefaultClient) CloudFormation() CloudFormationOperations {
	return NewCloudFormationOperationsWithClient(c.cfn)
}

// S3 returns the S3 operations wrapper
func (c *DefaultClient) S3() S3Operations {
	return NewS3OperationsWithClient(c.s3)
}

// DynamoDB returns the DynamoDB operations wrapper
func (c *DefaultClient) DynamoDB() DynamoDBOperations {
	return NewDynamoDBOperationsWithClient(c.ddb)
}

// IAM returns the IAM operations wrapper
func (c *DefaultClient) IAM() IAMOperations {
	return NewIAMOperationsWithClient(c.iam)
}

// SSM returns the SSM operations wrapper
func (c *DefaultClient) SSM() SSMOperations {
	return NewSSMOperationsWithClient(c.ssm)
}

// STS returns the STS operations wrapper
func (c *DefaultClient) STS() STSOperations {
	return NewSTSOperationsWithClient(c.sts)
}

// Region returns the configured AWS region
func (c *DefaultClient) Region() string {
	return c.config.Region
}

var _ Client = (*DefaultClient)(nil)
