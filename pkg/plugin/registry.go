package plugin

import (
	"context"
	"fmt"

	"github.com/glide-cli/grove/pkg/registry"
)

// Registry resolves a Subject to the Collaborator that should handle it.
// It falls back to the in-process stub for any subject with no externally
// registered plugin.
type Registry struct {
	external *registry.Registry[Collaborator]
}

// NewRegistry creates a registry with no external collaborators; Resolve
// returns the default in-process stub for any subject until one is
// registered.
func NewRegistry() *Registry {
	r := &Registry{external: registry.New[Collaborator]()}
	return r
}

// RegisterExternal wires an externally-hosted collaborator (typically a
// hashicorp/go-plugin client stub) for subject, overriding the default.
func (r *Registry) RegisterExternal(subject Subject, c Collaborator) error {
	return r.external.Register(string(subject), c)
}

// Resolve returns the collaborator for subject: the externally-registered
// one if present, otherwise the built-in stub.
func (r *Registry) Resolve(subject Subject) Collaborator {
	if c, ok := r.external.Get(string(subject)); ok {
		return c
	}
	return defaultStub{subject: subject}
}

// Perform resolves subject and invokes it.
func (r *Registry) Perform(ctx context.Context, subject Subject, input map[string]string) (string, error) {
	return r.Resolve(subject).Perform(ctx, input)
}

// defaultStub is the in-process fallback used when no external collaborator
// process has been launched for a subject. It performs no real heuristic;
// it reports that the subject is unhandled so callers can degrade gracefully.
type defaultStub struct {
	subject Subject
}

func (d defaultStub) Perform(_ context.Context, _ map[string]string) (string, error) {
	return "", fmt.Errorf("no collaborator registered for %q; pass --plugin to launch one", d.subject)
}
