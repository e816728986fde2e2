// Package ports manages the project-wide, lock-guarded registry mapping
// task names to (app, db, cache) port triples, with gap-filling allocation
// and a best-effort TCP bindability check.
package ports

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/internal/lockmgr"
	"github.com/glide-cli/grove/internal/statestore"
)

const (
	AppBase   = 3001
	DBBase    = 5433
	CacheBase = 6380
)

// Registry persists allocations at <state_root>/ports.json under the
// registry lock.
type Registry struct {
	stateRoot string
	locks     *lockmgr.Manager
}

// New creates a Registry rooted at stateRoot.
func New(stateRoot string, locks *lockmgr.Manager) *Registry {
	return &Registry{stateRoot: stateRoot, locks: locks}
}

func (r *Registry) path() string { return filepath.Join(r.stateRoot, "ports.json") }

type onDisk struct {
	Allocations map[string]statestore.PortTriple `json:"allocations"`
}

func (r *Registry) read() (onDisk, error) {
	data, err := os.ReadFile(r.path())
	if err != nil {
		if os.IsNotExist(err) {
			return onDisk{Allocations: map[string]statestore.PortTriple{}}, nil
		}
		return onDisk{}, groveerrors.New(groveerrors.TypeIO, "failed to read port registry", groveerrors.WithCause(err))
	}
	var d onDisk
	if err := json.Unmarshal(data, &d); err != nil {
		return onDisk{}, groveerrors.New(groveerrors.TypeJSON, "failed to parse port registry", groveerrors.WithCause(err))
	}
	if d.Allocations == nil {
		d.Allocations = map[string]statestore.PortTriple{}
	}
	return d, nil
}

func (r *Registry) write(d onDisk) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return groveerrors.New(groveerrors.TypeJSON, "failed to encode port registry", groveerrors.WithCause(err))
	}
	tmp := r.path() + ".tmp"
	if err := os.MkdirAll(r.stateRoot, 0o755); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to create state root", groveerrors.WithCause(err))
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to write port registry", groveerrors.WithCause(err))
	}
	if err := os.Rename(tmp, r.path()); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to finalize port registry", groveerrors.WithCause(err))
	}
	return nil
}

// Allocate returns task's existing triple if present, or the lowest
// unused index's triple otherwise. The whole read-check-write happens
// under the registry lock.
func (r *Registry) Allocate(task string) (statestore.PortTriple, error) {
	lock, err := r.locks.AcquireRegistry()
	if err != nil {
		return statestore.PortTriple{}, err
	}
	defer lock.Unlock()

	d, err := r.read()
	if err != nil {
		return statestore.PortTriple{}, err
	}

	if existing, ok := d.Allocations[task]; ok {
		return existing, nil
	}

	used := make(map[int]bool, len(d.Allocations))
	for _, t := range d.Allocations {
		used[int(t.App)-AppBase] = true
	}
	index := 0
	for used[index] {
		index++
	}

	triple := statestore.PortTriple{
		App:   uint16(AppBase + index),
		DB:    uint16(DBBase + index),
		Cache: uint16(CacheBase + index),
	}
	d.Allocations[task] = triple

	if err := r.write(d); err != nil {
		return statestore.PortTriple{}, err
	}
	return triple, nil
}

// Release removes task's allocation, if any.
func (r *Registry) Release(task string) error {
	lock, err := r.locks.AcquireRegistry()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	d, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := d.Allocations[task]; !ok {
		return nil
	}
	delete(d.Allocations, task)
	return r.write(d)
}

// List returns all current allocations keyed by task name. Map order is
// unspecified; SortedTaskNames gives the names in sorted order.
func (r *Registry) List() (map[string]statestore.PortTriple, error) {
	lock, err := r.locks.AcquireRegistry()
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	d, err := r.read()
	if err != nil {
		return nil, err
	}
	return d.Allocations, nil
}

// CheckAvailable verifies each port in triple can be bound on 0.0.0.0 right
// now, closing the listener immediately. It is a best-effort race guard,
// not a reservation.
func CheckAvailable(triple statestore.PortTriple) error {
	checks := []struct {
		port    uint16
		service string
	}{
		{triple.App, "app"},
		{triple.DB, "db"},
		{triple.Cache, "redis"},
	}
	for _, c := range checks {
		ln, err := net.Listen("tcp", net.JoinHostPort("0.0.0.0", strconv.Itoa(int(c.port))))
		if err != nil {
			return groveerrors.NewPortInUse(c.port, c.service)
		}
		ln.Close()
	}
	return nil
}

// SortedTaskNames returns the task names of allocations in sorted order.
func SortedTaskNames(allocations map[string]statestore.PortTriple) []string {
	names := make([]string, 0, len(allocations))
	for name := range allocations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
