/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package template holds the bootstrap stack definition and the naming
// conventions shared by deployment, destruction and orphan detection. Both
// sides rely on these names being bit-exact.
package template

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bootstrap.yaml
var body string

// Body returns the CloudFormation template body for the bootstrap stack.
func Body() string {
	return body
}

// Template parameter keys. The template and the deployment executor agree on
// these by exact name.
const (
	ParamAccountAlias         = "AccountAlias"
	ParamCostCentre           = "CostCentre"
	ParamDeploymentRole       = "DeploymentRole"
	ParamEnvironment          = "Environment"
	ParamManagedBy            = "ManagedBy"
	ParamOwner                = "Owner"
	ParamProject              = "Project"
	ParamRegion               = "Region"
	ParamRepository           = "Repository"
	ParamTargetRoleRepository = "TargetRoleRepository"
	ParamProviderKind         = "ProviderKind"
	ParamProviderUrl          = "ProviderUrl"
	ParamProviderAudience     = "ProviderAudience"
	ParamProviderThumbprints  = "ProviderThumbprints"
)

// Stack output keys. Downstream consumers read these by exact name.
const (
	OutputStateBucketName     = "StateBucketName"
	OutputLogBucketName       = "LogBucketName"
	OutputLockTableName       = "LockTableName"
	OutputIdentityProviderArn = "IdentityProviderArn"
	OutputDeploymentRoleArn   = "DeploymentRoleArn"
)

// Logical resource ids, used when importing orphaned resources back into the
// stack.
const (
	LogicalStateBucket      = "StateBucket"
	LogicalLogBucket        = "LogBucket"
	LogicalLockTable        = "LockTable"
	LogicalIdentityProvider = "IdentityProvider"
	LogicalDeployRole       = "DeployRole"
)

// Capabilities required to create or update the bootstrap stack.
var Capabilities = []string{"CAPABILITY_NAMED_IAM"}

// StateBucketName returns the conventional name of the Terraform state bucket.
func StateBucketName(accountID, region string) string {
	return fmt.Sprintf("state-%s-%s", accountID, region)
}

// LogBucketName returns the conventional name of the access-log bucket.
func LogBucketName(accountID, region string) string {
	return fmt.Sprintf("logs-%s-%s", accountID, region)
}

// LockTableName returns the conventional name of the Terraform lock table.
func LockTableName(accountID, region string) string {
	return fmt.Sprintf("lock-%s-%s", accountID, region)
}

// BucketLogicalID maps a conventional bucket name back to the logical id the
// template declares for it. Returns false for names outside the convention.
func BucketLogicalID(bucketName, accountID, region string) (string, bool) {
	switch bucketName {
	case StateBucketName(accountID, region):
		return LogicalStateBucket, true
	case LogBucketName(accountID, region):
		return LogicalLogBucket, true
	}
	return "", false
}

// ImportBody returns a reduced template containing only the named resources.
// Import changesets reject templates that declare anything beyond the
// resources being imported, so the full template cannot be submitted during
// an import; a follow-up update converges the stack afterwards. Every kept
// resource is given an explicit deletion policy, which imports require.
func ImportBody(logicalIDs ...string) (string, error) {
	keep := make(map[string]bool, len(logicalIDs))
	for _, id := range logicalIDs {
		keep[id] = true
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	root := doc.Content[0]

	var pruned []*yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "Outputs":
			// outputs reference pruned resources; the follow-up update
			// restores them
			continue
		case "Resources":
			value.Content = filterResources(value.Content, keep)
		}
		pruned = append(pruned, key, value)
	}
	root.Content = pruned

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("failed to serialise import template: %w", err)
	}
	return string(out), nil
}

func filterResources(pairs []*yaml.Node, keep map[string]bool) []*yaml.Node {
	pruned := make(map[string]bool)
	for i := 0; i+1 < len(pairs); i += 2 {
		if !keep[pairs[i].Value] {
			pruned[pairs[i].Value] = true
		}
	}

	var kept []*yaml.Node
	for i := 0; i+1 < len(pairs); i += 2 {
		key, value := pairs[i], pairs[i+1]
		if !keep[key.Value] {
			continue
		}
		stripDanglingProperties(value, pruned)
		ensureDeletionPolicy(value)
		kept = append(kept, key, value)
	}
	return kept
}

// stripDanglingProperties drops any property whose value refers to a resource
// that the import template no longer declares. CloudFormation rejects
// templates with unresolved logical ids; the follow-up update restores the
// dropped properties. The state bucket's logging configuration referencing a
// pruned log bucket is the concrete case.
func stripDanglingProperties(resource *yaml.Node, pruned map[string]bool) {
	for i := 0; i+1 < len(resource.Content); i += 2 {
		if resource.Content[i].Value != "Properties" {
			continue
		}
		props := resource.Content[i+1]
		var kept []*yaml.Node
		for j := 0; j+1 < len(props.Content); j += 2 {
			if refersToAny(props.Content[j+1], pruned) {
				continue
			}
			kept = append(kept, props.Content[j], props.Content[j+1])
		}
		props.Content = kept
	}
}

// refersToAny reports whether the node or any descendant references one of
// the given logical ids through !Ref or !GetAtt.
func refersToAny(node *yaml.Node, ids map[string]bool) bool {
	switch node.Tag {
	case "!Ref":
		if ids[node.Value] {
			return true
		}
	case "!GetAtt":
		if dot := strings.Index(node.Value, "."); dot > 0 && ids[node.Value[:dot]] {
			return true
		}
	}
	for _, child := range node.Content {
		if refersToAny(child, ids) {
			return true
		}
	}
	return false
}

func ensureDeletionPolicy(resource *yaml.Node) {
	for i := 0; i+1 < len(resource.Content); i += 2 {
		if resource.Content[i].Value == "DeletionPolicy" {
			return
		}
	}
	resource.Content = append(resource.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "DeletionPolicy"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: "Retain"},
	)
}

// Tags returns the uniform tag set applied to the stack and, through
// CloudFormation tag propagation, to every managed resource.
func Tags(accountID, accountAlias, costCentre, deploymentRole, environment, owner, project, region, repository string) map[string]string {
	return map[string]string{
		"AccountId":      accountID,
		"AccountAlias":   accountAlias,
		"CostCentre":     costCentre,
		"DeploymentRole": deploymentRole,
		"Environment":    environment,
		"ManagedBy":      "groundwork",
		"Owner":          owner,
		"Project":        project,
		"Region":         region,
		"Repository":     repository,
	}
}
