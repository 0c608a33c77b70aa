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
	"github.com/getgroundwork/groundwork/internal/describe"
	"github.com/getgroundwork/groundwork/internal/errs"
	"github.com/getgroundwork/groundwork/internal/oidc"
)

var (
	// describer can be injected for testing
	describer Describer
)

// Describer assembles read-only status reports
type Describer interface {
	Describe(ctx context.Context, stackName, project, accountID, region, issuerURL string) (*describe.Report, error)
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the bootstrap stack",
	Long: `Show the observed state of this repository's bootstrap stack: the
classified condition, per-resource status, stack outputs, and any orphaned
resources that no stack owns.

The command is read-only and never mutates anything.

Examples:
  groundwork status              # report on this repository's stack
  groundwork status --no-colour  # plain output for logs and CI`,
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

		// an unsupported hosting platform still has a describable stack
		issuerURL := ""
		if provider, err := oidc.NewResolver().Resolve(params.RepositoryURL); err == nil {
			issuerURL = provider.IssuerURL
		} else if errs.CategoryOf(err) != errs.CategoryUnsupportedProvider {
			return err
		}

		report, err := getDescriber(client).Describe(ctx, params.StackName(), params.Project, params.AccountID, params.Region, issuerURL)
		if err != nil {
			return err
		}

		noColour, _ := cmd.Flags().GetBool("no-colour")
		fmt.Print(describe.Format(report, describe.NewStyles(!noColour)))
		return nil
	},
}

// getDescriber returns the describer instance, creating a default one if none is set
func getDescriber(client aws.Client) Describer {
	if describer != nil {
		return describer
	}
	return describe.NewDescriber(client.CloudFormation(), client.S3(), client.DynamoDB(), client.IAM())
}

// SetDescriber allows injection of a describer (for testing)
func SetDescriber(d Describer) {
	describer = d
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("no-colour", false, "disable coloured output")
}
