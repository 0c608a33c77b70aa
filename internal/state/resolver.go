/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package state classifies the observed condition of the bootstrap stack and
// its resources, detects orphaned resources left behind by earlier failed
// runs, and plans the transition from the observed state to a healthy one.
package state

import (
	"context"
	"fmt"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/template"
)

// StackState is the coarse classification of the bootstrap stack
type StackState string

const (
	// StateAbsent means no stack exists
	StateAbsent StackState = "ABSENT"
	// StateHealthy means the stack completed its last operation successfully
	StateHealthy StackState = "HEALTHY"
	// StateFailedInitial means the first creation failed and nothing usable exists
	StateFailedInitial StackState = "FAILED_INITIAL"
	// StateFailedUpdate means an update failed but the previous deployment still stands
	StateFailedUpdate StackState = "FAILED_UPDATE"
	// StateBusy means an operation is currently in progress
	StateBusy StackState = "BUSY"
	// StateStuck means a deletion failed and the stack needs manual attention
	StateStuck StackState = "STUCK"
	// StateDegraded means the stack is in an unrecognised or partially rolled back condition
	StateDegraded StackState = "DEGRADED"
)

// Classify maps a CloudFormation stack status onto a StackState
func Classify(status aws.StackStatus) StackState {
	switch status {
	case aws.StackStatusCreateComplete,
		aws.StackStatusUpdateComplete,
		aws.StackStatusImportComplete:
		return StateHealthy
	case aws.StackStatusCreateFailed,
		aws.StackStatusRollbackComplete,
		aws.StackStatusRollbackFailed:
		return StateFailedInitial
	case aws.StackStatusUpdateRollbackComplete:
		return StateFailedUpdate
	case aws.StackStatusDeleteFailed:
		return StateStuck
	case aws.StackStatusDeleteComplete:
		return StateAbsent
	}
	if status.InProgress() {
		return StateBusy
	}
	return StateDegraded
}

// OrphanConfidence indicates how an orphan candidate was attributed to the project
type OrphanConfidence string

const (
	// ConfidenceNameMatch means the resource carries the exact name this
	// project would have given it
	ConfidenceNameMatch OrphanConfidence = "name-match"
	// ConfidenceTagMatch means the resource carries this project's tag but
	// not its conventional name
	ConfidenceTagMatch OrphanConfidence = "tag-match"
)

// OrphanKind identifies the resource type of an orphan candidate
type OrphanKind string

const (
	OrphanStateBucket OrphanKind = "state-bucket"
	OrphanLogBucket   OrphanKind = "log-bucket"
	OrphanLockTable   OrphanKind = "lock-table"
	OrphanProvider    OrphanKind = "identity-provider"
	OrphanBucket      OrphanKind = "bucket"
)

// OrphanCandidate is a resource that belongs to this project by name or tag
// but is not owned by any stack
type OrphanCandidate struct {
	PhysicalID string
	Kind       OrphanKind
	Confidence OrphanConfidence
}

// Observation is the full observed condition of the deployment
type Observation struct {
	State   StackState
	Stack   *aws.Stack
	Orphans []OrphanCandidate
}

// Resolver observes the deployment's current condition
type Resolver struct {
	cfn      aws.CloudFormationOperations
	s3       aws.S3Operations
	dynamodb aws.DynamoDBOperations
	iam      aws.IAMOperations
}

// NewResolver creates a resolver over the given operation surfaces
func NewResolver(cfn aws.CloudFormationOperations, s3 aws.S3Operations, dynamodb aws.DynamoDBOperations, iam aws.IAMOperations) *Resolver {
	return &Resolver{cfn: cfn, s3: s3, dynamodb: dynamodb, iam: iam}
}

// Observe classifies the stack and, when no stack is present, probes for
// orphaned resources left behind by earlier runs.
func (r *Resolver) Observe(ctx context.Context, stackName, project, accountID, region, issuerURL string) (*Observation, error) {
	stack, err := r.describeStack(ctx, stackName)
	if err != nil {
		return nil, err
	}
	if stack != nil {
		if state := Classify(stack.Status); state != StateAbsent {
			return &Observation{State: state, Stack: stack}, nil
		}
		// a DELETE_COMPLETE record is as good as no stack, and resources
		// it retained may still be around
	}

	orphans, err := r.findOrphans(ctx, project, accountID, region, issuerURL)
	if err != nil {
		return nil, err
	}
	return &Observation{State: StateAbsent, Orphans: orphans}, nil
}

func (r *Resolver) describeStack(ctx context.Context, stackName string) (*aws.Stack, error) {
	exists, err := r.cfn.StackExists(ctx, stackName)
	if err != nil {
		return nil, fmt.Errorf("failed to check stack %s: %w", stackName, err)
	}
	if !exists {
		return nil, nil
	}
	stack, err := r.cfn.GetStack(ctx, stackName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe stack %s: %w", stackName, err)
	}
	return stack, nil
}

// findOrphans probes the conventional resource names and then sweeps for
// tagged buckets under other names. An inconclusive existence probe (for
// example a permission error) is treated as not-found rather than failing
// the whole observation.
func (r *Resolver) findOrphans(ctx context.Context, project, accountID, region, issuerURL string) ([]OrphanCandidate, error) {
	var orphans []OrphanCandidate
	seen := make(map[string]bool)

	namedBuckets := []struct {
		name string
		kind OrphanKind
	}{
		{template.StateBucketName(accountID, region), OrphanStateBucket},
		{template.LogBucketName(accountID, region), OrphanLogBucket},
	}
	for _, b := range namedBuckets {
		exists, err := r.s3.BucketExists(ctx, b.name)
		if err != nil {
			continue
		}
		if exists {
			orphans = append(orphans, OrphanCandidate{PhysicalID: b.name, Kind: b.kind, Confidence: ConfidenceNameMatch})
			seen[b.name] = true
		}
	}

	tableName := template.LockTableName(accountID, region)
	if exists, err := r.dynamodb.TableExists(ctx, tableName); err == nil && exists {
		orphans = append(orphans, OrphanCandidate{PhysicalID: tableName, Kind: OrphanLockTable, Confidence: ConfidenceNameMatch})
	}

	if issuerURL != "" {
		arn, err := r.iam.FindOpenIDConnectProvider(ctx, issuerURL)
		if err == nil && arn != "" {
			orphans = append(orphans, OrphanCandidate{PhysicalID: arn, Kind: OrphanProvider, Confidence: ConfidenceNameMatch})
		}
	}

	tagged, err := r.s3.ListProjectBuckets(ctx, project)
	if err == nil {
		for _, bucket := range tagged {
			if seen[bucket] {
				continue
			}
			orphans = append(orphans, OrphanCandidate{PhysicalID: bucket, Kind: OrphanBucket, Confidence: ConfidenceTagMatch})
		}
	}

	return orphans, nil
}
