// Package job defines the raw job record as persisted by the queue and
// its projection into the queryable document the filter engine evaluates.
package job

// Record is a job as stored in the queue backend: a flat field set with
// JSON-serialized payloads. Optional timestamps are pointers so an absent
// field stays distinguishable from zero.
type Record struct {
	ID           string
	Name         string
	Data         string // raw JSON payload
	Opts         string // raw JSON job options
	Timestamp    *int64
	ProcessedOn  *int64
	FinishedOn   *int64
	AttemptsMade int64
	Delay        int64
	Priority     int64
	Progress     string // raw JSON: number or object
	ReturnValue  string // raw JSON
	FailedReason string
	Stacktrace   string // raw JSON array of strings
}
