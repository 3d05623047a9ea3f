package redis

import (
	"context"
	"strconv"

	"github.com/ccollie/bullmq/internal/db"
)

// ZRange returns sorted-set members between rank start and stop inclusive,
// in ascending score order.
func (s *Store) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Zrange().Key(key).
		Min(strconv.FormatInt(start, 10)).
		Max(strconv.FormatInt(stop, 10)).
		Build()
	items, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	return items, nil
}
