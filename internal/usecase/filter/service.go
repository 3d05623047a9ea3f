package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/ccollie/bullmq/internal/domain"
	"github.com/ccollie/bullmq/internal/domain/job"
	"github.com/ccollie/bullmq/internal/domain/query"
	"github.com/ccollie/bullmq/internal/domain/state"
	"github.com/ccollie/bullmq/internal/domain/value"
	"github.com/ccollie/bullmq/internal/metrics"
)

// ExhaustedCursor is returned when the candidate stream ran dry; a caller
// loops until it sees this value again, mirroring Redis SCAN.
const ExhaustedCursor = 0

// Result is one page of a filter run.
type Result struct {
	Jobs   []job.Record
	Cursor int
	Total  int
	Count  int
	Errors []string
}

// Service is the filter driver: it compiles a query once, streams
// candidates from the queue, projects and evaluates each, and windows the
// matches.
type Service struct {
	repo     Repository
	maxCount int
}

// New creates a filter service.
func New(repo Repository) *Service {
	return &Service{repo: repo, maxCount: 100}
}

// WithMaxCount caps the page size a single call may return; 0 removes
// the cap.
func (s *Service) WithMaxCount(n int) *Service {
	s.maxCount = n
	return s
}

// Filter runs a compiled query over one queue partition.
//
// cursor is the offset into the candidate stream where scanning resumes;
// the returned Cursor is cursor plus the candidates scanned this call, or
// ExhaustedCursor once the stream ran dry. count caps the matches
// returned; zero means unbounded up to the service cap. Per-document
// evaluation failures land in Result.Errors and the document does not
// match; iterator failures abort the call.
func (s *Service) Filter(
	ctx context.Context, queue string, st state.State, q value.Value, cursor, count int,
) (Result, error) {
	start := time.Now()

	if cursor < 0 {
		return Result{}, fmt.Errorf("%w: %d", domain.ErrBadCursor, cursor)
	}
	if count <= 0 || (s.maxCount > 0 && count > s.maxCount) {
		count = s.maxCount
	}

	compiled, err := query.Compile(q)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrBadQuery, err)
	}

	it, err := s.repo.Open(ctx, queue, st, cursor)
	if err != nil {
		return Result{}, fmt.Errorf("open %s/%s: %w", queue, st, err)
	}
	defer it.Close()

	res := Result{Jobs: []job.Record{}, Errors: []string{}}
	scanned, exhausted := 0, false

	for {
		rec, ok, err := it.Next(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("scan %s/%s: %w", queue, st, err)
		}
		if !ok {
			exhausted = true
			break
		}
		scanned++

		matched, err := compiled.Match(job.Project(rec))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("job %s: %v", rec.ID, err))
			metrics.FilterEvalErrors.Inc()
			continue
		}
		if !matched {
			continue
		}

		res.Jobs = append(res.Jobs, rec)
		if count > 0 && len(res.Jobs) >= count {
			break
		}
	}

	res.Total = scanned
	res.Count = len(res.Jobs)
	res.Cursor = cursor + scanned
	if exhausted {
		res.Cursor = ExhaustedCursor
	}

	metrics.FilterJobsScanned.Add(float64(scanned))
	metrics.FilterJobsMatched.Add(float64(res.Count))
	metrics.FilterDuration.Observe(time.Since(start).Seconds())

	return res, nil
}
