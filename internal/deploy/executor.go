/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package deploy carries a planned transition through to a healthy stack:
// create, update, orphan reconciliation by import or discard, and the
// teardown-then-create recovery path for stacks whose first creation failed.
package deploy

import (
	"context"
	"errors"
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

// Published configuration entries live under a per-project path prefix.
// Downstream systems read these paths, never the stack outputs directly.
const (
	parameterPathFormat = "/groundwork/%s/%s"
	pathStateBucket     = "state-bucket"
	pathLockTable       = "lock-table"
	pathProviderArn     = "identity-provider-arn"
)

// Reclaimer is the subset of the bucket reclaimer the executor relies on
type Reclaimer interface {
	Reclaim(ctx context.Context, bucketName string) (*reclaim.Result, error)
}

// Executor carries out planned deployment transitions
type Executor struct {
	cfn       aws.CloudFormationOperations
	dynamodb  aws.DynamoDBOperations
	iam       aws.IAMOperations
	ssm       aws.SSMOperations
	reclaimer Reclaimer
}

// NewExecutor creates an executor over a full client
func NewExecutor(client aws.Client) *Executor {
	return &Executor{
		cfn:       client.CloudFormation(),
		dynamodb:  client.DynamoDB(),
		iam:       client.IAM(),
		ssm:       client.SSM(),
		reclaimer: reclaim.NewReclaimer(client.S3()),
	}
}

// NewExecutorWithOperations creates an executor with explicit operation
// surfaces (for testing)
func NewExecutorWithOperations(cfn aws.CloudFormationOperations, dynamodb aws.DynamoDBOperations, iam aws.IAMOperations, ssm aws.SSMOperations, reclaimer Reclaimer) *Executor {
	return &Executor{cfn: cfn, dynamodb: dynamodb, iam: iam, ssm: ssm, reclaimer: reclaimer}
}

// Execute carries out the planned transition and blocks until the stack is
// healthy, its outputs verified and published.
func (e *Executor) Execute(ctx context.Context, plan *state.Plan, params *config.Parameters) error {
	if params.Provider == nil {
		return errs.New(errs.CategoryPrecondition, "identity provider configuration was not resolved")
	}

	switch plan.Action {
	case state.ActionCreate:
		return e.create(ctx, params)
	case state.ActionUpdate:
		return e.update(ctx, params)
	case state.ActionReconcileThenCreate:
		return e.reconcile(ctx, plan.Orphans, params)
	case state.ActionTeardownThenCreate:
		return e.teardownThenCreate(ctx, params)
	}
	return errs.Newf(errs.CategoryIrrecoverable, "unrecognised transition %s", plan.Action)
}

func (e *Executor) create(ctx context.Context, params *config.Parameters) error {
	stackName := params.StackName()
	fmt.Printf("Creating stack %s...\n", stackName)

	err := e.cfn.CreateStack(ctx, aws.CreateStackInput{
		StackName:                   stackName,
		TemplateBody:                template.Body(),
		Parameters:                  stackParameters(params),
		Tags:                        stackTags(params),
		Capabilities:                template.Capabilities,
		EnableTerminationProtection: true,
	})
	if err != nil {
		return err
	}

	if err := e.waitForSuccess(ctx, stackName, aws.StackStatusCreateComplete); err != nil {
		return err
	}
	return e.finalise(ctx, params)
}

func (e *Executor) update(ctx context.Context, params *config.Parameters) error {
	stackName := params.StackName()
	fmt.Printf("Updating stack %s...\n", stackName)

	err := e.cfn.UpdateStack(ctx, aws.UpdateStackInput{
		StackName:    stackName,
		TemplateBody: template.Body(),
		Parameters:   stackParameters(params),
		Tags:         stackTags(params),
		Capabilities: template.Capabilities,
	})
	if errors.Is(err, aws.ErrNoChanges) {
		// legitimate outcome; outputs still get verified and published
		fmt.Printf("No changes to apply\n")
		return e.finalise(ctx, params)
	}
	if err != nil {
		return err
	}

	if err := e.waitForSuccess(ctx, stackName, aws.StackStatusUpdateComplete); err != nil {
		return err
	}
	return e.finalise(ctx, params)
}

// reconcile handles the one interactive branch: orphaned resources exist but
// no stack owns them. The user chooses between importing them into a fresh
// stack and discarding them before a clean create.
func (e *Executor) reconcile(ctx context.Context, orphans []state.OrphanCandidate, params *config.Parameters) error {
	fmt.Printf("Found %d resource(s) not owned by any stack:\n", len(orphans))
	for _, o := range orphans {
		fmt.Printf("  %-20s %s (%s)\n", o.Kind, o.PhysicalID, o.Confidence)
	}

	importThem, err := prompt.Confirm("Import these resources into a new stack? (answering no offers deletion)")
	if err != nil {
		return err
	}
	if importThem {
		return e.importOrphans(ctx, orphans, params)
	}

	confirmed, err := prompt.Confirm("Discard will PERMANENTLY DELETE these resources and any data they hold. Continue?")
	if err != nil {
		return err
	}
	if !confirmed {
		return errs.New(errs.CategoryUserDeclined, "orphaned resources left untouched")
	}

	if err := e.discardOrphans(ctx, orphans); err != nil {
		return err
	}
	return e.create(ctx, params)
}

// importOrphans adopts the orphans whose logical position in the stack is
// known, then converges the stack to the full resource set with an update.
func (e *Executor) importOrphans(ctx context.Context, orphans []state.OrphanCandidate, params *config.Parameters) error {
	stackName := params.StackName()

	var imports []aws.ResourceImport
	var logicalIDs []string
	for _, o := range orphans {
		imp, ok := resourceImportFor(o)
		if !ok {
			fmt.Printf("Cannot import %s %s, leaving it in place\n", o.Kind, o.PhysicalID)
			continue
		}
		imports = append(imports, imp)
		logicalIDs = append(logicalIDs, imp.LogicalID)
	}
	if len(imports) == 0 {
		return e.create(ctx, params)
	}

	importBody, err := template.ImportBody(logicalIDs...)
	if err != nil {
		return err
	}

	fmt.Printf("Importing %d resource(s) into stack %s...\n", len(imports), stackName)
	err = e.cfn.ImportResources(ctx, aws.ImportResourcesInput{
		StackName:    stackName,
		TemplateBody: importBody,
		Parameters:   stackParameters(params),
		Tags:         stackTags(params),
		Capabilities: template.Capabilities,
		Resources:    imports,
	})
	if err != nil {
		return err
	}
	if err := e.waitForSuccess(ctx, stackName, aws.StackStatusImportComplete); err != nil {
		return err
	}

	// imports do not carry termination protection; restore it before the
	// converging update
	if err := e.cfn.SetTerminationProtection(ctx, stackName, true); err != nil {
		return err
	}
	return e.update(ctx, params)
}

func (e *Executor) discardOrphans(ctx context.Context, orphans []state.OrphanCandidate) error {
	for _, o := range orphans {
		switch o.Kind {
		case state.OrphanStateBucket, state.OrphanLogBucket, state.OrphanBucket:
			fmt.Printf("Deleting bucket %s...\n", o.PhysicalID)
			result, err := e.reclaimer.Reclaim(ctx, o.PhysicalID)
			if err != nil {
				return errs.Wrap(errs.CategoryPartialFailure,
					fmt.Sprintf("failed to reclaim bucket %s", o.PhysicalID), err)
			}
			if result.ObjectsDeleted > 0 {
				fmt.Printf("  removed %d object version(s)\n", result.ObjectsDeleted)
			}
		case state.OrphanLockTable:
			fmt.Printf("Deleting table %s...\n", o.PhysicalID)
			if err := e.dynamodb.SetDeletionProtection(ctx, o.PhysicalID, false); err != nil {
				return err
			}
			if err := e.dynamodb.DeleteTable(ctx, o.PhysicalID); err != nil {
				return err
			}
		case state.OrphanProvider:
			fmt.Printf("Deleting identity provider %s...\n", o.PhysicalID)
			if err := e.iam.DeleteOpenIDConnectProvider(ctx, o.PhysicalID); err != nil {
				return err
			}
		}
	}
	return nil
}

// teardownThenCreate recovers from a failed first creation. Resources created
// before the failure point block a clean retry under the same names, so they
// are removed along with the dead stack record before creating again.
func (e *Executor) teardownThenCreate(ctx context.Context, params *config.Parameters) error {
	stackName := params.StackName()
	fmt.Printf("Removing failed stack %s before recreating...\n", stackName)

	stack, err := e.cfn.GetStack(ctx, stackName)
	if err != nil {
		return err
	}
	if stack.TerminationProtection {
		if err := e.cfn.SetTerminationProtection(ctx, stackName, false); err != nil {
			return err
		}
	}

	for _, bucket := range []string{
		template.StateBucketName(params.AccountID, params.Region),
		template.LogBucketName(params.AccountID, params.Region),
	} {
		if _, err := e.reclaimer.Reclaim(ctx, bucket); err != nil {
			return errs.Wrap(errs.CategoryPartialFailure,
				fmt.Sprintf("failed to reclaim bucket %s", bucket), err)
		}
	}

	// a provider created before the failure point is not always stack-owned
	arn, err := e.iam.FindOpenIDConnectProvider(ctx, params.Provider.IssuerURL)
	if err != nil {
		return err
	}
	if arn != "" {
		if err := e.iam.DeleteOpenIDConnectProvider(ctx, arn); err != nil {
			return err
		}
	}

	if err := e.cfn.DeleteStack(ctx, stackName); err != nil {
		return err
	}
	if err := e.cfn.WaitForStackDeletion(ctx, stackName, printEvent); err != nil {
		return err
	}

	return e.create(ctx, params)
}

// waitForSuccess blocks until the stack reaches a terminal status and fails
// with per-resource detail when that status is not the expected one.
func (e *Executor) waitForSuccess(ctx context.Context, stackName string, want aws.StackStatus) error {
	status, err := e.cfn.WaitForStackOperation(ctx, stackName, printEvent)
	if err != nil {
		return err
	}
	if status == want {
		return nil
	}

	detail := "detail unavailable"
	failed, detailErr := e.cfn.FailedStackResources(ctx, stackName)
	if detailErr == nil && len(failed) > 0 {
		var lines []string
		for _, r := range failed {
			lines = append(lines, fmt.Sprintf("%s (%s): %s %s", r.LogicalID, r.Type, r.Status, r.StatusReason))
		}
		detail = strings.Join(lines, "; ")
	}
	return errs.Newf(errs.CategoryPartialFailure,
		"stack %s ended in %s, expected %s: %s", stackName, status, want, detail)
}

// finalise verifies the stack outputs and publishes the ones downstream
// systems consume.
func (e *Executor) finalise(ctx context.Context, params *config.Parameters) error {
	stack, err := e.cfn.GetStack(ctx, params.StackName())
	if err != nil {
		return err
	}

	required := []string{
		template.OutputStateBucketName,
		template.OutputLogBucketName,
		template.OutputLockTableName,
		template.OutputIdentityProviderArn,
		template.OutputDeploymentRoleArn,
	}
	for _, key := range required {
		if stack.Outputs[key] == "" {
			return errs.Newf(errs.CategoryPartialFailure, "stack %s has no %s output", stack.Name, key)
		}
	}

	published := map[string]string{
		pathStateBucket: stack.Outputs[template.OutputStateBucketName],
		pathLockTable:   stack.Outputs[template.OutputLockTableName],
		pathProviderArn: stack.Outputs[template.OutputIdentityProviderArn],
	}
	for suffix, value := range published {
		name := fmt.Sprintf(parameterPathFormat, params.Project, suffix)
		if err := e.ssm.PutParameter(ctx, name, value); err != nil {
			return fmt.Errorf("failed to publish %s: %w", name, err)
		}
	}

	fmt.Printf("Stack %s is healthy\n", stack.Name)
	fmt.Printf("  state bucket:      %s\n", stack.Outputs[template.OutputStateBucketName])
	fmt.Printf("  lock table:        %s\n", stack.Outputs[template.OutputLockTableName])
	fmt.Printf("  deployment role:   %s\n", stack.Outputs[template.OutputDeploymentRoleArn])
	return nil
}

// resourceImportFor maps an orphan onto the import request the control plane
// expects. Tag-matched buckets have no logical position in the stack and are
// not importable.
func resourceImportFor(o state.OrphanCandidate) (aws.ResourceImport, bool) {
	switch o.Kind {
	case state.OrphanStateBucket:
		return aws.ResourceImport{
			LogicalID:          template.LogicalStateBucket,
			ResourceType:       "AWS::S3::Bucket",
			ResourceIdentifier: map[string]string{"BucketName": o.PhysicalID},
		}, true
	case state.OrphanLogBucket:
		return aws.ResourceImport{
			LogicalID:          template.LogicalLogBucket,
			ResourceType:       "AWS::S3::Bucket",
			ResourceIdentifier: map[string]string{"BucketName": o.PhysicalID},
		}, true
	case state.OrphanLockTable:
		return aws.ResourceImport{
			LogicalID:          template.LogicalLockTable,
			ResourceType:       "AWS::DynamoDB::Table",
			ResourceIdentifier: map[string]string{"TableName": o.PhysicalID},
		}, true
	case state.OrphanProvider:
		return aws.ResourceImport{
			LogicalID:          template.LogicalIdentityProvider,
			ResourceType:       "AWS::IAM::OIDCProvider",
			ResourceIdentifier: map[string]string{"Arn": o.PhysicalID},
		}, true
	}
	return aws.ResourceImport{}, false
}

func stackParameters(p *config.Parameters) []aws.Parameter {
	return []aws.Parameter{
		{Key: template.ParamAccountAlias, Value: p.AccountAlias},
		{Key: template.ParamCostCentre, Value: p.CostCentre},
		{Key: template.ParamDeploymentRole, Value: p.DeploymentRoleName},
		{Key: template.ParamEnvironment, Value: p.Environment},
		{Key: template.ParamManagedBy, Value: "groundwork"},
		{Key: template.ParamOwner, Value: p.Owner},
		{Key: template.ParamProject, Value: p.Project},
		{Key: template.ParamRegion, Value: p.Region},
		{Key: template.ParamRepository, Value: p.RepositoryURL},
		{Key: template.ParamTargetRoleRepository, Value: p.TargetRoleRepository},
		{Key: template.ParamProviderKind, Value: string(p.Provider.Kind)},
		{Key: template.ParamProviderUrl, Value: p.Provider.IssuerURL},
		{Key: template.ParamProviderAudience, Value: p.Provider.Audience},
		{Key: template.ParamProviderThumbprints, Value: strings.Join(p.Provider.Thumbprints, ",")},
	}
}

func stackTags(p *config.Parameters) map[string]string {
	return template.Tags(p.AccountID, p.AccountAlias, p.CostCentre, p.DeploymentRoleName,
		p.Environment, p.Owner, p.Project, p.Region, p.RepositoryURL)
}

func printEvent(e aws.StackEvent) {
	fmt.Printf("  %s  %-24s %s\n", e.Timestamp.Format("15:04:05"), e.ResourceStatus, e.LogicalResourceID)
}
