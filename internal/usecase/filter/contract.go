package filter

import (
	"context"

	"github.com/ccollie/bullmq/internal/domain/job"
	"github.com/ccollie/bullmq/internal/domain/state"
)

// Repository opens job iterators over queue partitions, starting at the
// given offset into the partition's natural order.
type Repository interface {
	Open(ctx context.Context, queue string, st state.State, offset int) (job.Iterator, error)
}
