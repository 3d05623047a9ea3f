// Package state enumerates the queue partitions a filter can target.
package state

import (
	"fmt"

	"github.com/ccollie/bullmq/internal/domain"
)

// State identifies a queue partition.
type State string

const (
	Waiting     State = "waiting"
	Paused      State = "paused"
	Active      State = "active"
	Delayed     State = "delayed"
	Completed   State = "completed"
	Failed      State = "failed"
	Prioritized State = "prioritized"
)

// Parse validates a caller-supplied state string. "wait" is accepted as an
// alias for "waiting".
func Parse(s string) (State, error) {
	switch s {
	case "wait", "waiting":
		return Waiting, nil
	case "paused", "active", "delayed", "completed", "failed", "prioritized":
		return State(s), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownState, s)
	}
}

// KeySuffix returns the Redis key suffix holding this partition's job ids.
func (s State) KeySuffix() string {
	if s == Waiting {
		return "wait"
	}
	return string(s)
}

// Sorted reports whether the partition is a sorted set (score order)
// rather than a list.
func (s State) Sorted() bool {
	switch s {
	case Delayed, Completed, Failed, Prioritized:
		return true
	default:
		return false
	}
}
