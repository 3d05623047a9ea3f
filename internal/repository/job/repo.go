package job

import (
	"context"
	"fmt"

	domjob "github.com/ccollie/bullmq/internal/domain/job"
	"github.com/ccollie/bullmq/internal/domain/state"
)

// defaultPageSize is how many job ids each paging round-trip pulls.
const defaultPageSize = 100

// store is the consumer interface for queue reads (ISP).
type store interface {
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo implements usecase/filter.Repository over the BullMQ key layout:
// `<prefix><queue>:wait` and friends hold job ids, `<prefix><queue>:<id>`
// holds the job hash.
type Repo struct {
	store    store
	prefix   string
	pageSize int64
}

// New creates a job repository. prefix is the queue key prefix, e.g. "bull:".
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix, pageSize: defaultPageSize}
}

// WithPageSize overrides the paging chunk (test hook and tuning knob).
func (r *Repo) WithPageSize(n int64) *Repo {
	if n > 0 {
		r.pageSize = n
	}
	return r
}

// Open starts streaming a partition's jobs from the given offset. List
// partitions emit in list order, sorted-set partitions in score order.
func (r *Repo) Open(ctx context.Context, queue string, st state.State, offset int) (domjob.Iterator, error) {
	if queue == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	return &iterator{
		repo:   r,
		idsKey: r.stateKey(queue, st),
		base:   r.queueKey(queue),
		sorted: st.Sorted(),
		pos:    int64(offset),
	}, nil
}

func (r *Repo) queueKey(queue string) string {
	return r.prefix + queue + ":"
}

func (r *Repo) stateKey(queue string, st state.State) string {
	return r.queueKey(queue) + st.KeySuffix()
}

// iterator pages ids out of the state structure and hydrates hashes in
// bulk. Jobs whose hash has expired between the id read and hydration are
// skipped silently.
type iterator struct {
	repo   *Repo
	idsKey string
	base   string
	sorted bool
	pos    int64
	page   []domjob.Record
	idx    int
	done   bool
}

func (it *iterator) Next(ctx context.Context) (domjob.Record, bool, error) {
	for {
		if it.idx < len(it.page) {
			rec := it.page[it.idx]
			it.idx++
			return rec, true, nil
		}
		if it.done {
			return domjob.Record{}, false, nil
		}
		if err := ctx.Err(); err != nil {
			return domjob.Record{}, false, fmt.Errorf("iterate %s: %w", it.idsKey, err)
		}
		if err := it.fetchPage(ctx); err != nil {
			return domjob.Record{}, false, err
		}
	}
}

func (it *iterator) fetchPage(ctx context.Context) error {
	start, stop := it.pos, it.pos+it.repo.pageSize-1

	var (
		ids []string
		err error
	)
	if it.sorted {
		ids, err = it.repo.store.ZRange(ctx, it.idsKey, start, stop)
	} else {
		ids, err = it.repo.store.LRange(ctx, it.idsKey, start, stop)
	}
	if err != nil {
		return fmt.Errorf("page ids %s: %w", it.idsKey, err)
	}

	it.pos += int64(len(ids))
	if int64(len(ids)) < it.repo.pageSize {
		it.done = true
	}
	if len(ids) == 0 {
		it.page, it.idx = nil, 0
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = it.base + id
	}
	hashes, err := it.repo.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return fmt.Errorf("hydrate jobs %s: %w", it.idsKey, err)
	}

	page := make([]domjob.Record, 0, len(ids))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue // job hash expired after the id read
		}
		page = append(page, recordFromHash(ids[i], fields))
	}
	it.page, it.idx = page, 0
	return nil
}

// Close releases paging state. The store needs no per-iterator cleanup.
func (it *iterator) Close() {
	it.page = nil
	it.done = true
}
