// Package phases defines the per-phase modules driven by the CLI. Each
// module prepares a project entering its phase, completes it on the way
// out, and reports its own health. The heavy lifting lives in the
// sedimentation manager; modules decide what entering and leaving mean for
// their phase.
package phases

import (
	"context"

	"plume/internal/project"
	"plume/internal/sediment"
	"plume/internal/workflow"
)

// Module is the contract the workflow needs from each phase.
type Module interface {
	// Phase names the workflow phase the module owns.
	Phase() workflow.Phase
	// Prepare runs when a project enters the phase.
	Prepare(context.Context, *project.Project) error
	// Complete runs the transfer that moves the project out of the phase.
	Complete(context.Context, *project.Project) (*sediment.Payload, error)
	// HealthCheck reports whether the module's collaborators are usable.
	HealthCheck(context.Context) Health
}

// Health summarizes the readiness of a phase module.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
