/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/getgroundwork/groundwork/internal/errs"
)

// StackStatus represents the status of a CloudFormation stack
type StackStatus string

const (
	StackStatusCreateInProgress         StackStatus = "CREATE_IN_PROGRESS"
	StackStatusCreateComplete           StackStatus = "CREATE_COMPLETE"
	StackStatusCreateFailed             StackStatus = "CREATE_FAILED"
	StackStatusDeleteInProgress         StackStatus = "DELETE_IN_PROGRESS"
	StackStatusDeleteComplete           StackStatus = "DELETE_COMPLETE"
	StackStatusDeleteFailed             StackStatus = "DELETE_FAILED"
	StackStatusUpdateInProgress         StackStatus = "UPDATE_IN_PROGRESS"
	StackStatusUpdateComplete           StackStatus = "UPDATE_COMPLETE"
	StackStatusUpdateFailed             StackStatus = "UPDATE_FAILED"
	StackStatusUpdateRollbackInProgress StackStatus = "UPDATE_ROLLBACK_IN_PROGRESS"
	StackStatusUpdateRollbackComplete   StackStatus = "UPDATE_ROLLBACK_COMPLETE"
	StackStatusUpdateRollbackFailed     StackStatus = "UPDATE_ROLLBACK_FAILED"
	StackStatusRollbackInProgress       StackStatus = "ROLLBACK_IN_PROGRESS"
	StackStatusRollbackComplete         StackStatus = "ROLLBACK_COMPLETE"
	StackStatusRollbackFailed           StackStatus = "ROLLBACK_FAILED"
	StackStatusReviewInProgress         StackStatus = "REVIEW_IN_PROGRESS"
	StackStatusImportInProgress         StackStatus = "IMPORT_IN_PROGRESS"
	StackStatusImportComplete           StackStatus = "IMPORT_COMPLETE"
	StackStatusImportRollbackInProgress StackStatus = "IMPORT_ROLLBACK_IN_PROGRESS"
	StackStatusImportRollbackComplete   StackStatus = "IMPORT_ROLLBACK_COMPLETE"
	StackStatusImportRollbackFailed     StackStatus = "IMPORT_ROLLBACK_FAILED"
)

// InProgress reports whether the status is transitional.
func (s StackStatus) InProgress() bool {
	return strings.HasSuffix(string(s), "_IN_PROGRESS")
}

// Failed reports whether the status is a resource-level failure status.
func (s StackStatus) Failed() bool {
	return strings.HasSuffix(string(s), "_FAILED")
}

// Stack represents a CloudFormation stack with essential information
type Stack struct {
	Name                  string
	Status                StackStatus
	StatusReason          string
	TerminationProtection bool
	CreatedTime           *time.Time
	UpdatedTime           *time.Time
	Parameters            map[string]string
	Outputs               map[string]string
	Tags                  map[string]string
}

// StackResource represents a single resource tracked by a stack
type StackResource struct {
	LogicalID    string
	PhysicalID   string
	Type         string
	Status       string
	StatusReason string
}

// StackEvent represents a CloudFormation stack event
type StackEvent struct {
	EventID              string
	StackName            string
	LogicalResourceID    string
	PhysicalResourceID   string
	ResourceType         string
	Timestamp            time.Time
	ResourceStatus       string
	ResourceStatusReason string
}

// Parameter represents a CloudFormation stack parameter
type Parameter struct {
	Key   string
	Value string
}

// CreateStackInput contains parameters for creating a stack
type CreateStackInput struct {
	StackName                   string
	TemplateBody                string
	Parameters                  []Parameter
	Tags                        map[string]string
	Capabilities                []string
	EnableTerminationProtection bool
}

// UpdateStackInput contains parameters for updating a stack
type UpdateStackInput struct {
	StackName    string
	TemplateBody string
	Parameters   []Parameter
	Tags         map[string]string
	Capabilities []string
}

// ResourceImport maps an existing physical resource to the logical id the
// template expects for it
type ResourceImport struct {
	LogicalID          string
	ResourceType       string
	ResourceIdentifier map[string]string
}

// ImportResourcesInput contains parameters for an atomic resource import
type ImportResourcesInput struct {
	StackName    string
	TemplateBody string
	Parameters   []Parameter
	Tags         map[string]string
	Capabilities []string
	Resources    []ResourceImport
}

// ErrNoChanges is returned by UpdateStack when the computed diff is empty.
// This is a legitimate outcome, not a failure.
var ErrNoChanges = fmt.Errorf("no changes to apply")

const (
	waitPollInterval      = 5 * time.Second
	waitTimeout           = 30 * time.Minute
	changeSetPollInterval = 3 * time.Second
	changeSetTimeout      = 5 * time.Minute
)

// DefaultCloudFormationOperations provides CloudFormation-specific operations
type DefaultCloudFormationOperations struct {
	client CloudFormationClient
}

// NewCloudFormationOperationsWithClient creates operations with a custom client (for testing)
func NewCloudFormationOperationsWithClient(client CloudFormationClient) *DefaultCloudFormationOperations {
	return &DefaultCloudFormationOperations{client: client}
}

// CreateStack creates a new CloudFormation stack. Termination protection is
// applied in the same call so no window exists where the stack is unprotected.
func (cf *DefaultCloudFormationOperations) CreateStack(ctx context.Context, input CreateStackInput) error {
	_, err := cf.client.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:                   aws.String(input.StackName),
		TemplateBody:                aws.String(input.TemplateBody),
		Parameters:                  toSDKParameters(input.Parameters),
		Tags:                        toSDKTags(input.Tags),
		Capabilities:                toSDKCapabilities(input.Capabilities),
		EnableTerminationProtection: aws.Bool(input.EnableTerminationProtection),
	})
	if err != nil {
		return fmt.Errorf("failed to create stack %s: %w", input.StackName, err)
	}
	return nil
}

// UpdateStack updates an existing CloudFormation stack. Returns ErrNoChanges
// when CloudFormation reports an empty diff.
func (cf *DefaultCloudFormationOperations) UpdateStack(ctx context.Context, input UpdateStackInput) error {
	_, err := cf.client.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    aws.String(input.StackName),
		TemplateBody: aws.String(input.TemplateBody),
		Parameters:   toSDKParameters(input.Parameters),
		Tags:         toSDKTags(input.Tags),
		Capabilities: toSDKCapabilities(input.Capabilities),
	})
	if err != nil {
		if isNoUpdatesError(err) {
			return ErrNoChanges
		}
		return fmt.Errorf("failed to update stack %s: %w", input.StackName, err)
	}
	return nil
}

// DeleteStack deletes a CloudFormation stack
func (cf *DefaultCloudFormationOperations) DeleteStack(ctx context.Context, stackName string) error {
	_, err := cf.client.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete stack %s: %w", stackName, err)
	}
	return nil
}

// GetStack retrieves information about a specific stack
func (cf *DefaultCloudFormationOperations) GetStack(ctx context.Context, stackName string) (*Stack, error) {
	var result *cloudformation.DescribeStacksOutput
	err := withReadRetry(ctx, "describe stacks", func() error {
		var err error
		result, err = cf.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
			StackName: aws.String(stackName),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe stack %s: %w", stackName, err)
	}

	if len(result.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", stackName)
	}

	cfnStack := result.Stacks[0]
	stack := &Stack{
		Name:                  aws.ToString(cfnStack.StackName),
		Status:                StackStatus(cfnStack.StackStatus),
		StatusReason:          aws.ToString(cfnStack.StackStatusReason),
		TerminationProtection: aws.ToBool(cfnStack.EnableTerminationProtection),
		CreatedTime:           cfnStack.CreationTime,
		UpdatedTime:           cfnStack.LastUpdatedTime,
		Parameters:            make(map[string]string),
		Outputs:               make(map[string]string),
		Tags:                  make(map[string]string),
	}

	for _, param := range cfnStack.Parameters {
		stack.Parameters[aws.ToString(param.ParameterKey)] = aws.ToString(param.ParameterValue)
	}
	for _, output := range cfnStack.Outputs {
		stack.Outputs[aws.ToString(output.OutputKey)] = aws.ToString(output.OutputValue)
	}
	for _, tag := range cfnStack.Tags {
		stack.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}

	return stack, nil
}

// StackExists checks if a stack exists
func (cf *DefaultCloudFormationOperations) StackExists(ctx context.Context, stackName string) (bool, error) {
	_, err := cf.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		if isStackNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if stack exists: %w", err)
	}
	return true, nil
}

// DescribeStackResources lists the resources tracked by a stack
func (cf *DefaultCloudFormationOperations) DescribeStackResources(ctx context.Context, stackName string) ([]StackResource, error) {
	var result *cloudformation.DescribeStackResourcesOutput
	err := withReadRetry(ctx, "describe stack resources", func() error {
		var err error
		result, err = cf.client.DescribeStackResources(ctx, &cloudformation.DescribeStackResourcesInput{
			StackName: aws.String(stackName),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe resources of stack %s: %w", stackName, err)
	}

	resources := make([]StackResource, 0, len(result.StackResources))
	for _, r := range result.StackResources {
		resources = append(resources, StackResource{
			LogicalID:    aws.ToString(r.LogicalResourceId),
			PhysicalID:   aws.ToString(r.PhysicalResourceId),
			Type:         aws.ToString(r.ResourceType),
			Status:       string(r.ResourceStatus),
			StatusReason: aws.ToString(r.ResourceStatusReason),
		})
	}
	return resources, nil
}

// FailedStackResources returns the resources whose last status is a failure,
// with their failure reasons. This is the most actionable diagnostic after a
// failed operation and is fetched before giving up. Falls back to the event
// history when the resource listing is no longer available.
func (cf *DefaultCloudFormationOperations) FailedStackResources(ctx context.Context, stackName string) ([]StackResource, error) {
	resources, err := cf.DescribeStackResources(ctx, stackName)
	if err == nil {
		var failed []StackResource
		for _, r := range resources {
			if StackStatus(r.Status).Failed() {
				failed = append(failed, r)
			}
		}
		if len(failed) > 0 {
			return failed, nil
		}
	}

	events, eventsErr := cf.recentEvents(ctx, stackName)
	if eventsErr != nil {
		if err != nil {
			return nil, fmt.Errorf("failed to fetch per-resource failure detail: %w", err)
		}
		return nil, nil
	}

	seen := make(map[string]bool)
	var failed []StackResource
	for _, e := range events {
		if !StackStatus(e.ResourceStatus).Failed() || e.LogicalResourceID == stackName || seen[e.LogicalResourceID] {
			continue
		}
		seen[e.LogicalResourceID] = true
		failed = append(failed, StackResource{
			LogicalID:    e.LogicalResourceID,
			PhysicalID:   e.PhysicalResourceID,
			Type:         e.ResourceType,
			Status:       e.ResourceStatus,
			StatusReason: e.ResourceStatusReason,
		})
	}
	return failed, nil
}

// SetTerminationProtection toggles stack termination protection
func (cf *DefaultCloudFormationOperations) SetTerminationProtection(ctx context.Context, stackName string, enabled bool) error {
	_, err := cf.client.UpdateTerminationProtection(ctx, &cloudformation.UpdateTerminationProtectionInput{
		StackName:                   aws.String(stackName),
		EnableTerminationProtection: aws.Bool(enabled),
	})
	if err != nil {
		return fmt.Errorf("failed to set termination protection on stack %s: %w", stackName, err)
	}
	return nil
}

// ImportResources adopts pre-existing resources into a stack via a changeset
// of type IMPORT. The import is atomic: all listed resources or none.
func (cf *DefaultCloudFormationOperations) ImportResources(ctx context.Context, input ImportResourcesInput) error {
	toImport := make([]types.ResourceToImport, 0, len(input.Resources))
	for _, r := range input.Resources {
		toImport = append(toImport, types.ResourceToImport{
			LogicalResourceId:  aws.String(r.LogicalID),
			ResourceType:       aws.String(r.ResourceType),
			ResourceIdentifier: r.ResourceIdentifier,
		})
	}

	changeSetName := fmt.Sprintf("groundwork-import-%d", time.Now().Unix())
	created, err := cf.client.CreateChangeSet(ctx, &cloudformation.CreateChangeSetInput{
		StackName:         aws.String(input.StackName),
		ChangeSetName:     aws.String(changeSetName),
		ChangeSetType:     types.ChangeSetTypeImport,
		TemplateBody:      aws.String(input.TemplateBody),
		Parameters:        toSDKParameters(input.Parameters),
		Tags:              toSDKTags(input.Tags),
		Capabilities:      toSDKCapabilities(input.Capabilities),
		ResourcesToImport: toImport,
	})
	if err != nil {
		return fmt.Errorf("failed to create import changeset for stack %s: %w", input.StackName, err)
	}

	if err := cf.waitForChangeSet(ctx, aws.ToString(created.Id)); err != nil {
		return err
	}

	_, err = cf.client.ExecuteChangeSet(ctx, &cloudformation.ExecuteChangeSetInput{
		ChangeSetName: created.Id,
	})
	if err != nil {
		return fmt.Errorf("failed to execute import changeset for stack %s: %w", input.StackName, err)
	}
	return nil
}

// waitForChangeSet polls until the changeset is ready to execute
func (cf *DefaultCloudFormationOperations) waitForChangeSet(ctx context.Context, changeSetID string) error {
	deadline := time.Now().Add(changeSetTimeout)
	for {
		out, err := cf.client.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
			ChangeSetName: aws.String(changeSetID),
		})
		if err != nil {
			return fmt.Errorf("failed to describe changeset: %w", err)
		}

		switch out.Status {
		case types.ChangeSetStatusCreateComplete:
			return nil
		case types.ChangeSetStatusFailed:
			return fmt.Errorf("changeset failed: %s", aws.ToString(out.StatusReason))
		}

		if time.Now().After(deadline) {
			return errs.Newf(errs.CategoryTimeout, "changeset %s not ready after %s", changeSetID, changeSetTimeout)
		}

		select {
		case <-time.After(changeSetPollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WaitForStackOperation polls until the stack reaches a terminal status and
// returns that status. Each poll only reads; no mutation happens here. New
// stack events are streamed to eventCallback as they appear. Exceeding the
// ceiling is a timeout, distinct from a failure status, and is not retried.
func (cf *DefaultCloudFormationOperations) WaitForStackOperation(ctx context.Context, stackName string, eventCallback func(StackEvent)) (StackStatus, error) {
	deadline := time.Now().Add(waitTimeout)
	startTime := time.Now()
	seen := make(map[string]bool)
	var lastStatus StackStatus

	for {
		stack, err := cf.GetStack(ctx, stackName)
		if err != nil {
			return lastStatus, err
		}
		lastStatus = stack.Status

		cf.streamNewEvents(ctx, stackName, startTime, seen, eventCallback)

		if !stack.Status.InProgress() {
			return stack.Status, nil
		}

		if time.Now().After(deadline) {
			return lastStatus, errs.Newf(errs.CategoryTimeout, "stack %s still %s after %s", stackName, lastStatus, waitTimeout)
		}

		select {
		case <-time.After(waitPollInterval):
		case <-ctx.Done():
			// Interrupted mid-wait: report the last observed status and
			// issue no further calls.
			return lastStatus, fmt.Errorf("interrupted while waiting for stack %s (last status %s): %w", stackName, lastStatus, ctx.Err())
		}
	}
}

// WaitForStackDeletion polls until the stack record is gone. A DELETE_FAILED
// terminal status is an error; the caller fetches the stuck resources.
func (cf *DefaultCloudFormationOperations) WaitForStackDeletion(ctx context.Context, stackName string, eventCallback func(StackEvent)) error {
	deadline := time.Now().Add(waitTimeout)
	startTime := time.Now()
	seen := make(map[string]bool)

	for {
		exists, err := cf.StackExists(ctx, stackName)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		stack, err := cf.GetStack(ctx, stackName)
		if err != nil {
			if isStackNotFoundError(err) {
				return nil
			}
			return err
		}
		if stack.Status == StackStatusDeleteComplete {
			return nil
		}
		if stack.Status == StackStatusDeleteFailed {
			return errs.Newf(errs.CategoryIrrecoverable, "stack %s deletion failed", stackName)
		}

		cf.streamNewEvents(ctx, stackName, startTime, seen, eventCallback)

		if time.Now().After(deadline) {
			return errs.Newf(errs.CategoryTimeout, "stack %s not deleted after %s", stackName, waitTimeout)
		}

		select {
		case <-time.After(waitPollInterval):
		case <-ctx.Done():
			return fmt.Errorf("interrupted while waiting for deletion of stack %s: %w", stackName, ctx.Err())
		}
	}
}

// streamNewEvents fetches recent events and emits the unseen ones. Event
// fetch failures never fail the wait; the next poll tries again.
func (cf *DefaultCloudFormationOperations) streamNewEvents(ctx context.Context, stackName string, since time.Time, seen map[string]bool, eventCallback func(StackEvent)) {
	if eventCallback == nil {
		return
	}
	events, err := cf.recentEvents(ctx, stackName)
	if err != nil {
		return
	}
	// Events arrive newest first; emit oldest first.
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.Timestamp.Before(since) || seen[e.EventID] {
			continue
		}
		seen[e.EventID] = true
		eventCallback(e)
	}
}

func (cf *DefaultCloudFormationOperations) recentEvents(ctx context.Context, stackName string) ([]StackEvent, error) {
	out, err := cf.client.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe events of stack %s: %w", stackName, err)
	}

	events := make([]StackEvent, 0, len(out.StackEvents))
	for _, e := range out.StackEvents {
		events = append(events, StackEvent{
			EventID:              aws.ToString(e.EventId),
			StackName:            aws.ToString(e.StackName),
			LogicalResourceID:    aws.ToString(e.LogicalResourceId),
			PhysicalResourceID:   aws.ToString(e.PhysicalResourceId),
			ResourceType:         aws.ToString(e.ResourceType),
			Timestamp:            aws.ToTime(e.Timestamp),
			ResourceStatus:       string(e.ResourceStatus),
			ResourceStatusReason: aws.ToString(e.ResourceStatusReason),
		})
	}
	return events, nil
}

func toSDKParameters(params []Parameter) []types.Parameter {
	out := make([]types.Parameter, len(params))
	for i, p := range params {
		out[i] = types.Parameter{
			ParameterKey:   aws.String(p.Key),
			ParameterValue: aws.String(p.Value),
		}
	}
	return out
}

func toSDKTags(tags map[string]string) []types.Tag {
	out := make([]types.Tag, 0, len(tags))
	for k, v := range tags {
		out = append(out, types.Tag{
			Key:   aws.String(k),
			Value: aws.String(v),
		})
	}
	return out
}

func toSDKCapabilities(capabilities []string) []types.Capability {
	out := make([]types.Capability, len(capabilities))
	for i, c := range capabilities {
		out[i] = types.Capability(c)
	}
	return out
}
