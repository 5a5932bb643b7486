// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs tasks on a bounded number of goroutines.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a pool of workerCount goroutines. Counts below one
// are raised to one.
func NewWorkerPool(workerCount int) *WorkerPool {
	return &WorkerPool{workerCount: max(workerCount, 1)}
}

// Run executes every task and returns the first error. Once a task fails or
// ctx is done, tasks that have not started yet are skipped.
func (wp *WorkerPool) Run(ctx context.Context, tasks ...func() error) error {
	if len(tasks) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, task := range tasks {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return task()
		})
	}

	return g.Wait()
}
