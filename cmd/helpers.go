/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getgroundwork/groundwork/internal/aws"
	"github.com/getgroundwork/groundwork/internal/config"
	"github.com/getgroundwork/groundwork/internal/errs"
	"github.com/getgroundwork/groundwork/internal/preflight"
)

var (
	// awsClient can be injected for testing
	awsClient aws.Client
	// checker can be injected for testing
	checker PrerequisiteChecker
	// gitRunner can be injected for testing
	gitRunner config.GitRunner
)

// PrerequisiteChecker validates run prerequisites before any mutation
type PrerequisiteChecker interface {
	Check(ctx context.Context, requireCleanTree bool) (*aws.CallerIdentity, error)
}

// SetAWSClient allows injection of an AWS client (for testing)
func SetAWSClient(c aws.Client) {
	awsClient = c
}

// SetChecker allows injection of a prerequisite checker (for testing)
func SetChecker(c PrerequisiteChecker) {
	checker = c
}

// SetGitRunner allows injection of a git runner (for testing)
func SetGitRunner(run config.GitRunner) {
	gitRunner = run
}

// getAWSClient returns the client instance, creating a default one if none is set
func getAWSClient(ctx context.Context, cmd *cobra.Command) (aws.Client, error) {
	if awsClient != nil {
		return awsClient, nil
	}

	region, _ := cmd.Flags().GetString("region")
	profile, _ := cmd.Flags().GetString("profile")
	client, err := aws.NewDefaultClient(ctx, aws.Config{Region: region, Profile: profile})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS client: %w", err)
	}
	return client, nil
}

// getChecker returns the checker instance, creating a default one if none is set
func getChecker(client aws.Client) PrerequisiteChecker {
	if checker != nil {
		return checker
	}
	return preflight.NewChecker(client.STS())
}

// reportDeclined prints a declined confirmation as an ordinary outcome and
// reports whether err was one. Saying no at a prompt is an answer, not a
// failure, so the command returns nil and the process exits zero.
func reportDeclined(err error) bool {
	var ce *errs.Error
	if !errors.As(err, &ce) || ce.Category != errs.CategoryUserDeclined {
		return false
	}
	fmt.Printf("%s. No changes made.\n", ce.Message)
	return true
}

// buildParameters assembles the immutable parameter set for this run
func buildParameters(ctx context.Context, cmd *cobra.Command, client aws.Client, identity *aws.CallerIdentity) (*config.Parameters, error) {
	repoURL, err := config.RemoteURL(ctx, gitRunner)
	if err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	file, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	// an account without an alias is fine; the tag is just empty
	alias, err := client.IAM().AccountAlias(ctx)
	if err != nil {
		alias = ""
	}

	params := config.Build(file, repoURL, identity.AccountID, alias, client.Region())
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}
