package job

import "context"

// Iterator is a lazy stream of raw job records for one queue partition,
// emitted in the partition's natural order. Close releases any paging
// resources and is safe to call more than once.
type Iterator interface {
	Next(ctx context.Context) (Record, bool, error)
	Close()
}
