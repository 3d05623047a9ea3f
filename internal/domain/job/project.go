package job

import (
	"github.com/ccollie/bullmq/internal/domain/value"
)

// Project materializes the queryable view of a record: the stored fields
// plus the computed virtuals runtime, waitTime, and responseTime. A
// virtual is omitted (resolves to missing) when any of its inputs is
// absent. Malformed data and opts payloads resolve to null rather than
// aborting the query; progress, returnvalue and stacktrace that are not
// valid JSON are kept as bare strings.
func Project(r Record) value.Value {
	obj := value.NewObject()

	obj.Set("id", value.Str(r.ID))
	obj.Set("name", value.Str(r.Name))
	setJSON(obj, "data", r.Data)
	setJSON(obj, "opts", r.Opts)

	setOptInt(obj, "timestamp", r.Timestamp)
	setOptInt(obj, "processedOn", r.ProcessedOn)
	setOptInt(obj, "finishedOn", r.FinishedOn)
	obj.Set("attemptsMade", value.Integer(r.AttemptsMade))
	obj.Set("delay", value.Integer(r.Delay))
	obj.Set("priority", value.Integer(r.Priority))

	if r.Progress != "" {
		obj.Set("progress", parseLenient(r.Progress))
	}
	if r.ReturnValue != "" {
		obj.Set("returnvalue", parseLenient(r.ReturnValue))
	}
	if r.FailedReason != "" {
		obj.Set("failedReason", value.Str(r.FailedReason))
	}
	if r.Stacktrace != "" {
		obj.Set("stacktrace", parseLenient(r.Stacktrace))
	}

	setVirtual(obj, "runtime", r.FinishedOn, r.ProcessedOn)
	setVirtual(obj, "waitTime", r.ProcessedOn, r.Timestamp)
	setVirtual(obj, "responseTime", r.FinishedOn, r.Timestamp)

	return value.Obj(obj)
}

// setJSON parses a serialized payload field. Absent stays missing,
// malformed resolves to null.
func setJSON(obj *value.Object, key, raw string) {
	if raw == "" {
		return
	}
	v, err := value.FromJSON([]byte(raw))
	if err != nil {
		obj.Set(key, value.Null())
		return
	}
	obj.Set(key, v)
}

// parseLenient parses fields that may hold either JSON or a bare string
// (progress written as a number, legacy return values).
func parseLenient(raw string) value.Value {
	if v, err := value.FromJSON([]byte(raw)); err == nil {
		return v
	}
	return value.Str(raw)
}

func setOptInt(obj *value.Object, key string, p *int64) {
	if p != nil {
		obj.Set(key, value.Integer(*p))
	}
}

func setVirtual(obj *value.Object, key string, end, start *int64) {
	if end != nil && start != nil {
		obj.Set(key, value.Integer(*end-*start))
	}
}
