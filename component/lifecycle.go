package component

import (
	"context"
	"time"
)

// LifecycleComponent defines components that support full lifecycle management:
//   - Initialize() error                 // Setup only, no I/O
//   - Start(ctx context.Context) error   // Subscribe and begin work
//   - Stop(timeout time.Duration) error  // Drain within timeout
type LifecycleComponent interface {
	Discoverable
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// AsLifecycleComponent safely casts a component to LifecycleComponent
func AsLifecycleComponent(comp Discoverable) (LifecycleComponent, bool) {
	lc, ok := comp.(LifecycleComponent)
	return lc, ok
}
