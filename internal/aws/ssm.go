/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// DefaultSSMOperations provides SSM Parameter Store operations
type DefaultSSMOperations struct {
	client SSMClient
}

// NewSSMOperationsWithClient creates operations with a custom client (for testing)
func NewSSMOperationsWithClient(client SSMClient) *DefaultSSMOperations {
	return &DefaultSSMOperations{client: client}
}

// PutParameter writes a String parameter, overwriting any existing value
func (po *DefaultSSMOperations) PutParameter(ctx context.Context, name, value string) error {
	_, err := po.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(name),
		Value:     aws.String(value),
		Type:      types.ParameterTypeString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to put parameter %s: %w", name, err)
	}
	return nil
}
