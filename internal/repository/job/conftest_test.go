package job

import (
	"context"
	"strconv"
	"testing"
)

// mockStore implements the consumer interface for tests. Lists and sorted
// sets share one id slice per key; hashes are keyed by full job key.
type mockStore struct {
	lists  map[string][]string
	zsets  map[string][]string
	hashes map[string]map[string]string

	lrangeCalls int
	zrangeCalls int
	hydrateErr  error
	rangeErr    error
}

func (m *mockStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.lrangeCalls++
	if m.rangeErr != nil {
		return nil, m.rangeErr
	}
	return sliceRange(m.lists[key], start, stop), nil
}

func (m *mockStore) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.zrangeCalls++
	if m.rangeErr != nil {
		return nil, m.rangeErr
	}
	return sliceRange(m.zsets[key], start, stop), nil
}

func (m *mockStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if m.hydrateErr != nil {
		return nil, m.hydrateErr
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		if h, ok := m.hashes[k]; ok {
			out[i] = h
		} else {
			out[i] = map[string]string{}
		}
	}
	return out, nil
}

func sliceRange(items []string, start, stop int64) []string {
	if start >= int64(len(items)) {
		return nil
	}
	if stop >= int64(len(items)) {
		stop = int64(len(items)) - 1
	}
	return items[start : stop+1]
}

// seedQueue populates n jobs in the wait list of queue "video".
func seedQueue(t *testing.T, n int) *mockStore {
	t.Helper()
	ms := &mockStore{
		lists:  map[string][]string{},
		zsets:  map[string][]string{},
		hashes: map[string]map[string]string{},
	}
	for i := 0; i < n; i++ {
		id := strconv.Itoa(i + 1)
		ms.lists["bull:video:wait"] = append(ms.lists["bull:video:wait"], id)
		ms.hashes["bull:video:"+id] = map[string]string{
			"name":      "transcode",
			"data":      `{"index": ` + id + `}`,
			"timestamp": "170000000" + id,
		}
	}
	return ms
}
