package orchestrator

import (
	"context"
	"fmt"

	"github.com/glide-cli/grove/internal/compose"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
)

// HealthReport summarizes a compose stack's service health without
// requiring the caller to own that stack, for trees that share a grove.
type HealthReport struct {
	Grove    string
	Services []compose.ServiceStatus
	Healthy  bool
}

// Health polls the compose stack backing task's grove (its own, if task is
// a grove; the grove it shares, if task is a tree) and reports per-service
// status without taking any lock or mutating state.
func (o *Orchestrator) Health(ctx context.Context, task string) (HealthReport, error) {
	record, err := o.store.Load(task)
	if err != nil {
		return HealthReport{}, err
	}

	grove := record
	groveName := task
	if !record.IsGrove() {
		groveName = record.SharedGrove
		grove, err = o.store.Load(groveName)
		if err != nil {
			return HealthReport{}, err
		}
	}
	if !grove.IsGrove() {
		return HealthReport{}, groveerrors.New(groveerrors.TypeInvalidState, fmt.Sprintf("%q has no compose stack to check", task))
	}

	statuses, err := o.compose.PS(ctx, grove.ComposeFile, o.composeProject(groveName))
	if err != nil {
		return HealthReport{}, err
	}

	healthy := true
	for _, s := range statuses {
		crashed := s.State == "exited" || s.State == "dead"
		ready := s.State == "running" && (s.Health == "" || s.Health == "healthy")
		if crashed || !ready {
			healthy = false
			break
		}
	}

	return HealthReport{Grove: groveName, Services: statuses, Healthy: healthy}, nil
}
