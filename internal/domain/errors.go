package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// Error kinds. Concrete errors wrap one of these so callers can classify
// them with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrIntegrity    = errors.New("integrity violation")
	ErrInvalidInput = errors.New("invalid input")

	ErrUnauthenticated = fmt.Errorf("%w: no authenticated caller", ErrUnauthorized)
)

// PartialBatchError reports a fan-out write batch where some, but not all,
// items failed.
type PartialBatchError struct {
	Op        string
	Total     int
	FailedIDs []uint
	Err       error
}

func NewPartialBatchError(op string, total int, failed map[uint]error) *PartialBatchError {
	ids := make([]uint, 0, len(failed))
	for id := range failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var combined error
	for _, id := range ids {
		combined = multierr.Append(combined, fmt.Errorf("id %d: %w", id, failed[id]))
	}

	return &PartialBatchError{
		Op:        op,
		Total:     total,
		FailedIDs: ids,
		Err:       combined,
	}
}

func (e *PartialBatchError) Error() string {
	causes := multierr.Errors(e.Err)
	msgs := make([]string, 0, len(causes))
	for _, c := range causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("%s: %d of %d writes failed (%s)", e.Op, len(e.FailedIDs), e.Total, strings.Join(msgs, "; "))
}

func (e *PartialBatchError) Unwrap() []error {
	return multierr.Errors(e.Err)
}
