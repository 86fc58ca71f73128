package health

import (
	"github.com/c360/binfile/component"
)

// Connection is the part of the NATS client the health check needs.
type Connection interface {
	IsHealthy() bool
}

// Check builds the process status from the NATS connection and every component
// instance in registry. conn may be nil when no connection is used.
func Check(system string, registry *component.Registry, conn Connection) Status {
	var subs []Status

	if conn != nil {
		if conn.IsHealthy() {
			subs = append(subs, NewHealthy("nats", "Connected"))
		} else {
			subs = append(subs, NewUnhealthy("nats", "Not connected"))
		}
	}

	if registry != nil {
		for _, name := range registry.InstanceNames() {
			if c := registry.Component(name); c != nil {
				subs = append(subs, FromComponentHealth(name, c.Health()))
			}
		}
	}

	return Aggregate(system, subs)
}
