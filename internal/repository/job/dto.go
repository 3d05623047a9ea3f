package job

import (
	"strconv"

	domjob "github.com/ccollie/bullmq/internal/domain/job"
)

// recordFromHash hydrates a domain Record from an HGETALL result map.
// Numeric fields that are absent or malformed stay at their zero value;
// optional timestamps stay nil so projection can tell absent from zero.
func recordFromHash(id string, m map[string]string) domjob.Record {
	return domjob.Record{
		ID:           id,
		Name:         m["name"],
		Data:         m["data"],
		Opts:         m["opts"],
		Timestamp:    optInt(m, "timestamp"),
		ProcessedOn:  optInt(m, "processedOn"),
		FinishedOn:   optInt(m, "finishedOn"),
		AttemptsMade: intField(m, "attemptsMade"),
		Delay:        intField(m, "delay"),
		Priority:     intField(m, "priority"),
		Progress:     m["progress"],
		ReturnValue:  m["returnvalue"],
		FailedReason: m["failedReason"],
		Stacktrace:   m["stacktrace"],
	}
}

func optInt(m map[string]string, key string) *int64 {
	raw, ok := m[key]
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func intField(m map[string]string, key string) int64 {
	v, err := strconv.ParseInt(m[key], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
