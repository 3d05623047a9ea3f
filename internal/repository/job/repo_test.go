package job

import (
	"context"
	"strconv"
	"testing"

	"github.com/ccollie/bullmq/internal/domain/state"
)

func drain(t *testing.T, repo *Repo, st state.State, offset int) []string {
	t.Helper()
	it, err := repo.Open(context.Background(), "video", st, offset)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer it.Close()

	var ids []string
	for {
		rec, ok, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			return ids
		}
		ids = append(ids, rec.ID)
	}
}

func TestIterator_PreservesListOrder(t *testing.T) {
	ms := seedQueue(t, 5)
	repo := New(ms, "bull:")

	ids := drain(t, repo, state.Waiting, 0)
	if len(ids) != 5 {
		t.Fatalf("got %d jobs", len(ids))
	}
	for i, id := range ids {
		if id != strconv.Itoa(i+1) {
			t.Fatalf("ids out of order: %v", ids)
		}
	}
}

func TestIterator_Paging(t *testing.T) {
	ms := seedQueue(t, 7)
	repo := New(ms, "bull:").WithPageSize(3)

	ids := drain(t, repo, state.Waiting, 0)
	if len(ids) != 7 {
		t.Fatalf("got %d jobs", len(ids))
	}
	// 3 + 3 + 1: the short page terminates paging without an extra call.
	if ms.lrangeCalls != 3 {
		t.Errorf("lrange calls = %d, want 3", ms.lrangeCalls)
	}
}

func TestIterator_Offset(t *testing.T) {
	ms := seedQueue(t, 5)
	repo := New(ms, "bull:")

	ids := drain(t, repo, state.Waiting, 3)
	if len(ids) != 2 || ids[0] != "4" || ids[1] != "5" {
		t.Errorf("ids = %v, want [4 5]", ids)
	}
}

func TestIterator_SkipsExpiredHashes(t *testing.T) {
	ms := seedQueue(t, 3)
	delete(ms.hashes, "bull:video:2")
	repo := New(ms, "bull:")

	ids := drain(t, repo, state.Waiting, 0)
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "3" {
		t.Errorf("ids = %v, want [1 3]", ids)
	}
}

func TestIterator_SortedStateUsesZRange(t *testing.T) {
	ms := seedQueue(t, 0)
	ms.zsets["bull:video:failed"] = []string{"9", "8"}
	ms.hashes["bull:video:9"] = map[string]string{"name": "a"}
	ms.hashes["bull:video:8"] = map[string]string{"name": "b"}
	repo := New(ms, "bull:")

	ids := drain(t, repo, state.Failed, 0)
	if len(ids) != 2 || ids[0] != "9" || ids[1] != "8" {
		t.Errorf("ids = %v, want score order [9 8]", ids)
	}
	if ms.zrangeCalls == 0 || ms.lrangeCalls != 0 {
		t.Errorf("expected zrange paging, got lrange=%d zrange=%d", ms.lrangeCalls, ms.zrangeCalls)
	}
}

func TestIterator_CancelledContext(t *testing.T) {
	ms := seedQueue(t, 5)
	repo := New(ms, "bull:").WithPageSize(1)

	it, err := repo.Open(context.Background(), "video", state.Waiting, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	ctx, cancel := context.WithCancel(context.Background())
	if _, ok, err := it.Next(ctx); err != nil || !ok {
		t.Fatalf("first next: ok=%v err=%v", ok, err)
	}
	cancel()
	if _, _, err := it.Next(ctx); err == nil {
		t.Error("expected context error after cancel")
	}
}

func TestOpen_RequiresQueueName(t *testing.T) {
	repo := New(seedQueue(t, 0), "bull:")
	if _, err := repo.Open(context.Background(), "", state.Waiting, 0); err == nil {
		t.Error("expected error for empty queue")
	}
}

func TestRecordFromHash(t *testing.T) {
	rec := recordFromHash("42", map[string]string{
		"name":         "resize",
		"data":         `{"w": 100}`,
		"opts":         `{"attempts": 3}`,
		"timestamp":    "1700000000000",
		"processedOn":  "1700000001000",
		"finishedOn":   "1700000003500",
		"attemptsMade": "2",
		"priority":     "5",
		"failedReason": "oom",
	})
	if rec.ID != "42" || rec.Name != "resize" {
		t.Errorf("identity fields: %+v", rec)
	}
	if rec.Timestamp == nil || *rec.Timestamp != 1700000000000 {
		t.Errorf("timestamp = %v", rec.Timestamp)
	}
	if rec.FinishedOn == nil || *rec.FinishedOn != 1700000003500 {
		t.Errorf("finishedOn = %v", rec.FinishedOn)
	}
	if rec.AttemptsMade != 2 || rec.Priority != 5 {
		t.Errorf("counters: %+v", rec)
	}
	if rec.Delay != 0 {
		t.Errorf("absent delay should be zero, got %d", rec.Delay)
	}
}

func TestRecordFromHash_AbsentTimestampsStayNil(t *testing.T) {
	rec := recordFromHash("7", map[string]string{"name": "n", "timestamp": "123"})
	if rec.ProcessedOn != nil || rec.FinishedOn != nil {
		t.Errorf("optional timestamps should be nil: %+v", rec)
	}
	if rec.Timestamp == nil {
		t.Error("present timestamp should parse")
	}
}
