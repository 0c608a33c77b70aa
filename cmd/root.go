/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "groundwork",
	Short: "Bootstrap the Terraform backend and deployment role for a repository",
	Long: `Groundwork provisions the cloud foundation a repository needs before any
infrastructure-as-code can run:

• A versioned, encrypted state bucket with access logging
• A DynamoDB lock table with deletion protection
• An OIDC identity provider federated with the repository's hosting platform
• A deployment role assumable only by this repository's pipelines
• Published SSM parameters for downstream tooling

Everything lives in a single CloudFormation stack named after the repository.
Running deploy repeatedly is safe: groundwork observes the actual state of
the stack and its resources and picks the right corrective action, including
adopting or discarding resources left behind by earlier failed runs.`,
}

// Root returns the fully assembled root command. main hands it to fang,
// which provides styled help and error output.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "groundwork.yaml", "config file (default is groundwork.yaml)")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "AWS profile (overrides environment)")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region (overrides environment)")
}
