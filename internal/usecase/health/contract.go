package health

import "context"

// DBPinger checks queue-backend availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}
