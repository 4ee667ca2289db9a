package health

import "context"

// HealthPinger is implemented by dependencies that expose a cheap
// connectivity probe.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
