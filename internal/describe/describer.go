/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package describe produces the read-only status report: stack condition,
// per-resource status, outputs, and any orphaned resources.
package describe

import (
	"context"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/state"
)

// Report is the full observed status of the deployment
type Report struct {
	StackName string
	State     state.StackState
	Stack     *aws.Stack
	Resources []aws.StackResource
	Orphans   []state.OrphanCandidate
}

// Describer assembles status reports
type Describer struct {
	cfn      aws.CloudFormationOperations
	resolver *state.Resolver
}

// NewDescriber creates a describer over the given operation surfaces
func NewDescriber(cfn aws.CloudFormationOperations, s3 aws.S3Operations, dynamodb aws.DynamoDBOperations, iam aws.IAMOperations) *Describer {
	return &Describer{
		cfn:      cfn,
		resolver: state.NewResolver(cfn, s3, dynamodb, iam),
	}
}

// Describe observes the deployment and assembles a report. Nothing here
// mutates; the report reflects a single point-in-time observation.
func (d *Describer) Describe(ctx context.Context, stackName, project, accountID, region, issuerURL string) (*Report, error) {
	obs, err := d.resolver.Observe(ctx, stackName, project, accountID, region, issuerURL)
	if err != nil {
		return nil, err
	}

	report := &Report{
		StackName: stackName,
		State:     obs.State,
		Stack:     obs.Stack,
		Orphans:   obs.Orphans,
	}

	if obs.Stack != nil {
		resources, err := d.cfn.DescribeStackResources(ctx, stackName)
		if err == nil {
			report.Resources = resources
		}
	}
	return report, nil
}
