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
	"github.com/getgroundwork/groundwork/internal/destroy"
)

var (
	// destroyExecutor can be injected for testing
	destroyExecutor DestroyExecutor
)

// DestroyExecutor tears down the bootstrap stack
type DestroyExecutor interface {
	Execute(ctx context.Context, params *config.Parameters) error
}

// destroyCmd represents the destroy command
var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Tear down the bootstrap stack",
	Long: `Tear down this repository's bootstrap stack and its resources.

Destruction is gated behind two separate typed confirmations: one to destroy
the stack at all, and a second specifically authorising irreversible
deletion of the versioned bucket data. Declining the second keeps the
buckets (the stack's retain policy preserves them) while still removing the
stack, the lock table, the identity provider, and the deployment role.

The operation is idempotent: on an account with no stack and no retained
buckets it is a successful no-op, and a destruction interrupted partway can
be re-run to finish the job.

Examples:
  groundwork destroy             # tear down after typed confirmation`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := getAWSClient(ctx, cmd)
		if err != nil {
			return err
		}

		identity, err := getChecker(client).Check(ctx, false)
		if err != nil {
			return err
		}

		params, err := buildParameters(ctx, cmd, client, identity)
		if err != nil {
			return err
		}

		if err := getDestroyExecutor(client).Execute(ctx, params); err != nil {
			if reportDeclined(err) {
				return nil
			}
			return fmt.Errorf("error destroying stack %s: %w", params.StackName(), err)
		}
		return nil
	},
}

// getDestroyExecutor returns the executor instance, creating a default one if none is set
func getDestroyExecutor(client aws.Client) DestroyExecutor {
	if destroyExecutor != nil {
		return destroyExecutor
	}
	return destroy.NewExecutor(client)
}

// SetDestroyExecutor allows injection of an executor (for testing)
func SetDestroyExecutor(e DestroyExecutor) {
	destroyExecutor = e
}

func init() {
	rootCmd.AddCommand(destroyCmd)
}
