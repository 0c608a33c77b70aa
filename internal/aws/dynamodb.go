/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DefaultDynamoDBOperations provides DynamoDB-specific operations
type DefaultDynamoDBOperations struct {
	client DynamoDBClient
}

// NewDynamoDBOperationsWithClient creates operations with a custom client (for testing)
func NewDynamoDBOperationsWithClient(client DynamoDBClient) *DefaultDynamoDBOperations {
	return &DefaultDynamoDBOperations{client: client}
}

// TableExists checks raw table existence
func (do *DefaultDynamoDBOperations) TableExists(ctx context.Context, tableName string) (bool, error) {
	err := withReadRetry(ctx, "describe table", func() error {
		_, err := do.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		return err
	})
	if err != nil {
		if isAPIErrorCode(err, "ResourceNotFoundException") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check table %s: %w", tableName, err)
	}
	return true, nil
}

// SetDeletionProtection toggles the table deletion-protection flag. A missing
// table is not an error; there is nothing left to unprotect.
func (do *DefaultDynamoDBOperations) SetDeletionProtection(ctx context.Context, tableName string, enabled bool) error {
	_, err := do.client.UpdateTable(ctx, &dynamodb.UpdateTableInput{
		TableName:                 aws.String(tableName),
		DeletionProtectionEnabled: aws.Bool(enabled),
	})
	if err != nil {
		if isAPIErrorCode(err, "ResourceNotFoundException") {
			return nil
		}
		return fmt.Errorf("failed to set deletion protection on table %s: %w", tableName, err)
	}
	return nil
}

// DeleteTable removes a table. A missing table is a successful no-op.
func (do *DefaultDynamoDBOperations) DeleteTable(ctx context.Context, tableName string) error {
	_, err := do.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		if isAPIErrorCode(err, "ResourceNotFoundException") {
			return nil
		}
		return fmt.Errorf("failed to delete table %s: %w", tableName, err)
	}
	return nil
}
