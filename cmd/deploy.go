/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/config"
	"github.com/getgroundwork/groundwork/internal/deploy"
	"github.com/getgroundwork/groundwork/internal/oidc"
	"github.com/getgroundwork/groundwork/internal/state"
)

var (
	// deployExecutor can be injected for testing
	deployExecutor DeployExecutor
)

// DeployExecutor carries out a planned deployment transition
type DeployExecutor interface {
	Execute(ctx context.Context, plan *state.Plan, params *config.Parameters) error
}

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Provision or update the bootstrap stack",
	Long: `Provision the bootstrap stack for this repository, or bring an existing
stack up to date.

The command observes the actual state of the stack and picks the right
transition automatically:

• No stack — create it from scratch
• Healthy stack — apply any template or parameter updates ("no changes" is a
  successful outcome)
• Resources left behind by an earlier run — ask whether to import them into a
  new stack or discard them first
• A stack whose first creation failed — remove it and its leftovers, then
  create cleanly

The repository's origin remote determines the stack name, the identity
provider configuration, and the deployment role's trust condition. On
success the state bucket name, lock table name, and identity provider ARN
are published to SSM for downstream tooling.

Examples:
  groundwork deploy              # bootstrap or update this repository's stack
  groundwork deploy -r eu-west-2 # target a specific region`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := getAWSClient(ctx, cmd)
		if err != nil {
			return err
		}

		identity, err := getChecker(client).Check(ctx, true)
		if err != nil {
			return err
		}

		params, err := buildParameters(ctx, cmd, client, identity)
		if err != nil {
			return err
		}

		provider, err := oidc.NewResolver().Resolve(params.RepositoryURL)
		if err != nil {
			return err
		}
		params.Provider = provider

		resolver := state.NewResolver(client.CloudFormation(), client.S3(), client.DynamoDB(), client.IAM())
		obs, err := resolver.Observe(ctx, params.StackName(), params.Project, params.AccountID, params.Region, provider.IssuerURL)
		if err != nil {
			return err
		}

		plan, err := state.PlanTransition(obs)
		if err != nil {
			return err
		}

		if err := getDeployExecutor(client).Execute(ctx, plan, params); err != nil {
			if reportDeclined(err) {
				return nil
			}
			return fmt.Errorf("error deploying stack %s: %w", params.StackName(), err)
		}
		return nil
	},
}

// getDeployExecutor returns the executor instance, creating a default one if none is set
func getDeployExecutor(client aws.Client) DeployExecutor {
	if deployExecutor != nil {
		return deployExecutor
	}
	return deploy.NewExecutor(client)
}

// SetDeployExecutor allows injection of an executor (for testing)
func SetDeployExecutor(e DeployExecutor) {
	deployExecutor = e
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
