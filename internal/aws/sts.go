/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CallerIdentity describes the current AWS credentials
type CallerIdentity struct {
	AccountID string
	ARN       string
	UserID    string
}

// DefaultSTSOperations provides STS operations
type DefaultSTSOperations struct {
	client STSClient
}

// NewSTSOperationsWithClient creates operations with a custom client (for testing)
func NewSTSOperationsWithClient(client STSClient) *DefaultSTSOperations {
	return &DefaultSTSOperations{client: client}
}

// CallerIdentity returns the identity behind the current credentials
func (so *DefaultSTSOperations) CallerIdentity(ctx context.Context) (*CallerIdentity, error) {
	out, err := so.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}
	return &CallerIdentity{
		AccountID: aws.ToString(out.Account),
		ARN:       aws.ToString(out.Arn),
		UserID:    aws.ToString(out.UserId),
	}, nil
}
