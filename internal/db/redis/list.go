package redis

import (
	"context"

	"github.com/ccollie/bullmq/internal/db"
)

// LRange returns list elements between start and stop inclusive, with
// Redis index semantics (negative indexes count from the tail).
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	items, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return items, nil
}
