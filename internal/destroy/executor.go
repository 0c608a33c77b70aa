/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package destroy tears the bootstrap stack down: protective settings are
// disabled, versioned buckets optionally reclaimed, the stack deleted, and
// any retained leftovers reconciled afterwards. Destruction is idempotent:
// on a clean account it is a successful no-op that mutates nothing.
package destroy

import (
	"context"
	"fmt"
	"strings"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/config"
	"github.com/getgroundwork/groundwork/internal/errs"
	"github.com/getgroundwork/groundwork/internal/prompt"
	"github.com/getgroundwork/groundwork/internal/reclaim"
	"github.com/getgroundwork/groundwork/internal/state"
	"github.com/getgroundwork/groundwork/internal/template"
)

// Confirmation phrases. The first authorises destruction at all, the second
// separately authorises irreversible deletion of versioned bucket data.
const (
	phraseDestroy    = "destroy"
	phraseBucketData = "delete bucket data"
)

// Reclaimer is the subset of the bucket reclaimer the executor relies on.
// Empty is used before stack deletion, when the stack itself should remove
// the emptied bucket; Reclaim is used afterwards for retained shells.
type Reclaimer interface {
	Empty(ctx context.Context, bucketName string) (*reclaim.Result, error)
	Reclaim(ctx context.Context, bucketName string) (*reclaim.Result, error)
}

// Executor tears down the bootstrap stack and its retained resources
type Executor struct {
	cfn       aws.CloudFormationOperations
	s3        aws.S3Operations
	dynamodb  aws.DynamoDBOperations
	reclaimer Reclaimer
}

// NewExecutor creates an executor over a full client
func NewExecutor(client aws.Client) *Executor {
	return &Executor{
		cfn:       client.CloudFormation(),
		s3:        client.S3(),
		dynamodb:  client.DynamoDB(),
		reclaimer: reclaim.NewReclaimer(client.S3()),
	}
}

// NewExecutorWithOperations creates an executor with explicit operation
// surfaces (for testing)
func NewExecutorWithOperations(cfn aws.CloudFormationOperations, s3 aws.S3Operations, dynamodb aws.DynamoDBOperations, reclaimer Reclaimer) *Executor {
	return &Executor{cfn: cfn, s3: s3, dynamodb: dynamodb, reclaimer: reclaimer}
}

// Execute destroys the stack after a two-stage confirmation. Declining the
// first phrase aborts; declining the second retains the buckets and their
// data after the stack is gone.
func (e *Executor) Execute(ctx context.Context, params *config.Parameters) error {
	stackName := params.StackName()

	exists, err := e.cfn.StackExists(ctx, stackName)
	if err != nil {
		return err
	}

	expectedBuckets := []string{
		template.StateBucketName(params.AccountID, params.Region),
		template.LogBucketName(params.AccountID, params.Region),
	}

	if !exists {
		orphaned, err := e.existingBuckets(ctx, expectedBuckets)
		if err != nil {
			return err
		}
		if len(orphaned) == 0 {
			fmt.Printf("Nothing to destroy\n")
			return nil
		}
		return e.destroyOrphanedBuckets(ctx, orphaned)
	}

	stack, err := e.cfn.GetStack(ctx, stackName)
	if err != nil {
		return err
	}
	if state.Classify(stack.Status) == state.StateBusy {
		return errs.Newf(errs.CategoryStateConflict,
			"stack operation already in progress (%s), wait for it to finish", stack.Status)
	}

	confirmed, err := prompt.ConfirmTyped(
		fmt.Sprintf("This will destroy stack %s and its resources.", stackName), phraseDestroy)
	if err != nil {
		return err
	}
	if !confirmed {
		return errs.New(errs.CategoryUserDeclined, "destruction aborted")
	}

	deleteBucketData, err := prompt.ConfirmTyped(
		"Also PERMANENTLY DELETE all versioned bucket data? Declining keeps the buckets.", phraseBucketData)
	if err != nil {
		return err
	}

	if stack.TerminationProtection {
		fmt.Printf("Disabling termination protection...\n")
		if err := e.cfn.SetTerminationProtection(ctx, stackName, false); err != nil {
			return err
		}
	}

	tableName := template.LockTableName(params.AccountID, params.Region)
	if err := e.dynamodb.SetDeletionProtection(ctx, tableName, false); err != nil {
		return err
	}

	// reclaiming before deletion lets the stack remove the then-empty
	// buckets itself where the retain policy would otherwise keep shells
	if deleteBucketData {
		for _, bucket := range expectedBuckets {
			if err := e.reclaimBucket(ctx, bucket, false); err != nil {
				return err
			}
		}
	}

	fmt.Printf("Deleting stack %s...\n", stackName)
	if err := e.cfn.DeleteStack(ctx, stackName); err != nil {
		return err
	}
	if err := e.cfn.WaitForStackDeletion(ctx, stackName, printEvent); err != nil {
		return e.deletionFailure(ctx, stackName, err)
	}

	if deleteBucketData {
		// the retain policy keeps the emptied buckets around as
		// independent objects; sweep them now
		for _, bucket := range expectedBuckets {
			if err := e.reclaimBucket(ctx, bucket, true); err != nil {
				return err
			}
		}
	}

	fmt.Printf("Stack %s destroyed\n", stackName)
	return nil
}

// destroyOrphanedBuckets handles the stack-already-gone case where retained
// buckets still exist.
func (e *Executor) destroyOrphanedBuckets(ctx context.Context, buckets []string) error {
	fmt.Printf("No stack exists, but %d retained bucket(s) remain:\n", len(buckets))
	for _, b := range buckets {
		fmt.Printf("  %s\n", b)
	}

	confirmed, err := prompt.ConfirmTyped(
		"PERMANENTLY DELETE these buckets and all data they hold?", phraseBucketData)
	if err != nil {
		return err
	}
	if !confirmed {
		return errs.New(errs.CategoryUserDeclined, "buckets left untouched")
	}

	for _, bucket := range buckets {
		if err := e.reclaimBucket(ctx, bucket, true); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) existingBuckets(ctx context.Context, names []string) ([]string, error) {
	var existing []string
	for _, name := range names {
		exists, err := e.s3.BucketExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket %s: %w", name, err)
		}
		if exists {
			existing = append(existing, name)
		}
	}
	return existing, nil
}

func (e *Executor) reclaimBucket(ctx context.Context, bucket string, deleteBucket bool) error {
	var result *reclaim.Result
	var err error
	if deleteBucket {
		result, err = e.reclaimer.Reclaim(ctx, bucket)
	} else {
		result, err = e.reclaimer.Empty(ctx, bucket)
	}
	if err != nil {
		return errs.Wrap(errs.CategoryPartialFailure,
			fmt.Sprintf("failed to reclaim bucket %s", bucket), err)
	}
	if !result.Existed {
		return nil
	}
	if result.ObjectsDeleted > 0 {
		fmt.Printf("Removed %d object version(s) from %s\n", result.ObjectsDeleted, bucket)
	}
	if result.BucketDeleted {
		fmt.Printf("Deleted bucket %s\n", bucket)
	}
	return nil
}

// deletionFailure augments a failed deletion with the sub-resources that
// refused to go; the aggregate status alone is not actionable.
func (e *Executor) deletionFailure(ctx context.Context, stackName string, cause error) error {
	failed, detailErr := e.cfn.FailedStackResources(ctx, stackName)
	if detailErr != nil || len(failed) == 0 {
		return cause
	}
	var lines []string
	for _, r := range failed {
		lines = append(lines, fmt.Sprintf("%s (%s): %s %s", r.LogicalID, r.Type, r.Status, r.StatusReason))
	}
	return errs.Wrap(errs.CategoryPartialFailure,
		fmt.Sprintf("stack %s deletion failed: %s", stackName, strings.Join(lines, "; ")), cause)
}

func printEvent(e aws.StackEvent) {
	fmt.Printf("  %s  %-24s %s\n", e.Timestamp.Format("15:04:05"), e.ResourceStatus, e.LogicalResourceID)
}
