package concurrent

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task is a long-running unit of work that returns once ctx is done.
type Task func(ctx context.Context) error

// Named labels a task so its failure can be attributed.
func Named(name string, task Task) Task {
	return func(ctx context.Context) error {
		if err := task(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}

// Recover turns a panic inside task into an error.
func Recover(task Task) Task {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return task(ctx)
	}
}

// Supervise runs every task in its own goroutine. The first task to fail
// cancels the others. It returns once all tasks have returned, with the
// first failure. A task ending with context.Canceled is a clean stop.
func Supervise(ctx context.Context, tasks ...Task) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		group.Go(func() error {
			err := task(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return group.Wait()
}
