/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package aws

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/smithy-go"

	"github.com/getgroundwork/groundwork/internal/errs"
)

// isThrottleError reports whether err is a rate-limit signal from the API.
func isThrottleError(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.ErrorCode() {
	case "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException":
		return true
	}
	return false
}

// isAPIErrorCode reports whether err is an API error with one of the given codes.
func isAPIErrorCode(err error, codes ...string) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	for _, code := range codes {
		if ae.ErrorCode() == code {
			return true
		}
	}
	return false
}

// isStackNotFoundError checks if the error indicates the stack doesn't exist.
// CloudFormation reports a missing stack as a ValidationError whose message
// ends in "does not exist".
func isStackNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var ae smithy.APIError
	if errors.As(err, &ae) && ae.ErrorCode() == "ValidationError" && strings.Contains(ae.ErrorMessage(), "does not exist") {
		return true
	}
	return strings.Contains(err.Error(), "does not exist")
}

// isNoUpdatesError checks for CloudFormation's empty-diff signal on UpdateStack.
func isNoUpdatesError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "No updates are to be performed")
}

const (
	readRetryAttempts = 3
	readRetryBaseWait = time.Second
)

// withReadRetry runs fn, retrying throttled reads a bounded number of times
// with doubling backoff. Anything other than throttling propagates unchanged.
func withReadRetry(ctx context.Context, operation string, fn func() error) error {
	wait := readRetryBaseWait
	var err error
	for attempt := 0; attempt < readRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !isThrottleError(err) {
			return err
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
	}
	return errs.Wrap(errs.CategoryTransientAPI, operation+" kept being throttled", err)
}
