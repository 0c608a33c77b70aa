/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
)

// DefaultIAMOperations provides IAM-specific operations
type DefaultIAMOperations struct {
	client IAMClient
}

// NewIAMOperationsWithClient creates operations with a custom client (for testing)
func NewIAMOperationsWithClient(client IAMClient) *DefaultIAMOperations {
	return &DefaultIAMOperations{client: client}
}

// FindOpenIDConnectProvider returns the ARN of the OIDC provider whose issuer
// URL matches, or empty string when none exists. Matches even providers not
// owned by any stack.
func (io *DefaultIAMOperations) FindOpenIDConnectProvider(ctx context.Context, issuerURL string) (string, error) {
	list, err := io.client.ListOpenIDConnectProviders(ctx, &iam.ListOpenIDConnectProvidersInput{})
	if err != nil {
		return "", fmt.Errorf("failed to list OIDC providers: %w", err)
	}

	want := strings.TrimPrefix(issuerURL, "https://")
	for _, p := range list.OpenIDConnectProviderList {
		arn := aws.ToString(p.Arn)
		got, err := io.client.GetOpenIDConnectProvider(ctx, &iam.GetOpenIDConnectProviderInput{
			OpenIDConnectProviderArn: aws.String(arn),
		})
		if err != nil {
			if isAPIErrorCode(err, "NoSuchEntity") {
				continue
			}
			return "", fmt.Errorf("failed to get OIDC provider %s: %w", arn, err)
		}
		if strings.TrimPrefix(aws.ToString(got.Url), "https://") == want {
			return arn, nil
		}
	}
	return "", nil
}

// DeleteOpenIDConnectProvider removes an OIDC provider, tolerating nonexistence
func (io *DefaultIAMOperations) DeleteOpenIDConnectProvider(ctx context.Context, arn string) error {
	_, err := io.client.DeleteOpenIDConnectProvider(ctx, &iam.DeleteOpenIDConnectProviderInput{
		OpenIDConnectProviderArn: aws.String(arn),
	})
	if err != nil {
		if isAPIErrorCode(err, "NoSuchEntity") {
			return nil
		}
		return fmt.Errorf("failed to delete OIDC provider %s: %w", arn, err)
	}
	return nil
}

// AccountAlias returns the first account alias, or empty string if none is set
func (io *DefaultIAMOperations) AccountAlias(ctx context.Context) (string, error) {
	out, err := io.client.ListAccountAliases(ctx, &iam.ListAccountAliasesInput{})
	if err != nil {
		return "", fmt.Errorf("failed to list account aliases: %w", err)
	}
	if len(out.AccountAliases) == 0 {
		return "", nil
	}
	return out.AccountAliases[0], nil
}
