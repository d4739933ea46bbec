// Package batch runs independent per-record writes concurrently and collects
// every outcome before reporting.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/songcontest/songcontest-api/internal/domain"
)

const DefaultConcurrency = 8

// Outcome is the result of one item of a batch.
type Outcome struct {
	ID  uint
	Err error
}

// Run calls fn for every item with at most limit calls in flight. A failing
// item never cancels its siblings. The returned error is nil when every
// item succeeded, a *domain.PartialBatchError when some failed, and a plain
// wrapped error when all of them failed.
func Run[T any](ctx context.Context, op string, items []T, limit int, id func(T) uint, fn func(context.Context, T) error) ([]Outcome, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	outcomes := make([]Outcome, len(items))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			outcomes[i] = Outcome{ID: id(item)}
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Err = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes, Summarize(op, outcomes)
}

// Summarize classifies a set of outcomes.
func Summarize(op string, outcomes []Outcome) error {
	failed := make(map[uint]error)
	for _, o := range outcomes {
		if o.Err != nil {
			failed[o.ID] = o.Err
		}
	}

	switch {
	case len(failed) == 0:
		return nil
	case len(failed) == len(outcomes):
		pbe := domain.NewPartialBatchError(op, len(outcomes), failed)
		return fmt.Errorf("%s: all %d writes failed -> %w", op, len(outcomes), pbe.Err)
	default:
		return domain.NewPartialBatchError(op, len(outcomes), failed)
	}
}
