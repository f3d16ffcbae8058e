package sweeper

import (
	"context"
)

// Sweeper defines the interface for sweeper implementations
// Sweepers are long-running background tasks that perform periodic settlement
type Sweeper interface {
	// Start schedules the sweeper and blocks until the context is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the sweeper
	// This waits for any in-progress cycle to complete
	Stop(ctx context.Context) error

	// Name returns the sweeper's name for logging and identification
	Name() string
}
