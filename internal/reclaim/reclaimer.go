/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package reclaim empties and removes versioned S3 buckets. It is shared by
// the teardown-then-create path and the destroy path.
package reclaim

import (
	"context"
	"fmt"
	"sync"

	"github.com/getgroundwork/groundwork/internal/aws"
)

// defaultWorkers bounds concurrent DeleteObjects calls; higher values risk
// rate-limit errors on large buckets.
const defaultWorkers = 4

// Result summarises a reclaim run
type Result struct {
	// Existed is false when the bucket was not there to begin with; that is
	// a successful no-op.
	Existed bool
	// ObjectsDeleted counts removed object versions and delete markers.
	ObjectsDeleted int
	// BucketDeleted reports whether the bucket itself was removed.
	BucketDeleted bool
}

// Reclaimer empties versioned buckets
type Reclaimer struct {
	s3      aws.S3Operations
	workers int
}

// NewReclaimer creates a Reclaimer with the default worker pool size
func NewReclaimer(s3 aws.S3Operations) *Reclaimer {
	return &Reclaimer{s3: s3, workers: defaultWorkers}
}

// Empty removes every object version and delete marker from the bucket. A
// nonexistent bucket is a successful no-op. Individual object failures do not
// abort the sweep of the remaining objects.
func (r *Reclaimer) Empty(ctx context.Context, bucketName string) (*Result, error) {
	exists, err := r.s3.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s before reclaim: %w", bucketName, err)
	}
	if !exists {
		return &Result{Existed: false}, nil
	}

	result := &Result{Existed: true}

	batches := make(chan []aws.ObjectVersion)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				deleted, err := r.s3.DeleteObjectVersions(ctx, bucketName, batch)
				mu.Lock()
				result.ObjectsDeleted += deleted
				mu.Unlock()
				if err != nil {
					// The next batch may still succeed; keep sweeping.
					continue
				}
			}
		}()
	}

	var enumerateErr error
	keyMarker, versionMarker := "", ""
	for {
		page, err := r.s3.ListObjectVersionsPage(ctx, bucketName, keyMarker, versionMarker)
		if err != nil {
			enumerateErr = err
			break
		}
		if len(page.Objects) > 0 {
			select {
			case batches <- page.Objects:
			case <-ctx.Done():
				enumerateErr = ctx.Err()
			}
		}
		if enumerateErr != nil || !page.Truncated {
			break
		}
		keyMarker, versionMarker = page.NextKeyMarker, page.NextVersionMarker
	}
	close(batches)
	wg.Wait()

	if enumerateErr != nil {
		return result, fmt.Errorf("failed to enumerate bucket %s: %w", bucketName, enumerateErr)
	}
	return result, nil
}

// Reclaim empties the bucket and then deletes it. Tolerates nonexistence at
// every step.
func (r *Reclaimer) Reclaim(ctx context.Context, bucketName string) (*Result, error) {
	result, err := r.Empty(ctx, bucketName)
	if err != nil {
		return result, err
	}
	if !result.Existed {
		return result, nil
	}

	if err := r.s3.DeleteBucket(ctx, bucketName); err != nil {
		return result, err
	}
	result.BucketDeleted = true
	return result, nil
}
