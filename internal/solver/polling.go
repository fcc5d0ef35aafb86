package solver

import (
	"context"
	"time"
)

const (
	// DefaultPollInterval is how often a submitted remote problem is polled.
	DefaultPollInterval = 5 * time.Second
	// DefaultCeiling is the absolute bound on waiting for a remote solve,
	// after which the attempt is abandoned and the fallback takes over.
	DefaultCeiling = time.Hour
)

// RemoteSolver is an asynchronous solver API: a problem is submitted, then
// its ticket is polled until the backend reports completion.
type RemoteSolver interface {
	Ping(ctx context.Context) bool
	Submit(ctx context.Context, cg *CostGraph) (ticket string, err error)
	Poll(ctx context.Context, ticket string) (order []string, done bool, err error)
}

// PollingBackend adapts a RemoteSolver to the Backend interface. It polls
// at a fixed interval, bounded by an absolute ceiling; exhausting the
// ceiling or the caller's budget yields a timeout result, never an
// indefinite wait.
type PollingBackend struct {
	remote   RemoteSolver
	interval time.Duration
	ceiling  time.Duration
}

// NewPollingBackend creates a PollingBackend. Non-positive interval or
// ceiling fall back to the defaults.
func NewPollingBackend(remote RemoteSolver, interval, ceiling time.Duration) *PollingBackend {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &PollingBackend{remote: remote, interval: interval, ceiling: ceiling}
}

// Available runs the pre-flight capability check.
func (b *PollingBackend) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.remote.Ping(ctx)
}

// Solve submits the problem and polls until completion, context expiry, or
// the ceiling, whichever comes first.
func (b *PollingBackend) Solve(ctx context.Context, cg *CostGraph) Result {
	ticket, err := b.remote.Submit(ctx, cg)
	if err != nil {
		return Failure(err.Error())
	}

	deadline := time.Now().Add(b.ceiling)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Timeout()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return Timeout()
			}
			order, done, err := b.remote.Poll(ctx, ticket)
			if err != nil {
				return Failure(err.Error())
			}
			if done {
				return OK(order)
			}
		}
	}
}
