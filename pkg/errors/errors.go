package errors

import "fmt"

// New creates a GroveError of the given type with the default exit code 1.
func New(errType ErrorType, message string, opts ...ErrorOption) *GroveError {
	e := &GroveError{Type: errType, Message: message, Code: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewAlreadyRunning reports that the per-task lock is already held.
func NewAlreadyRunning(task string) *GroveError {
	return New(TypeLockFailed, fmt.Sprintf("task %q is already running another grove operation", task),
		WithExitCode(75),
		WithContext("task", task),
		WithSuggestions("Wait for the other operation to finish, or remove the stale lock file if you're sure nothing holds it."))
}

// NewAlreadyExists reports that a record, branch, or worktree already exists.
func NewAlreadyExists(kind, name string) *GroveError {
	return New(TypeAlreadyExists, fmt.Sprintf("%s %q already exists", kind, name),
		WithExitCode(1),
		WithContext(kind, name))
}

// NewNotFound reports a missing task/environment/container/template.
func NewNotFound(kind, name string) *GroveError {
	return New(TypeNotFound, fmt.Sprintf("%s %q not found", kind, name),
		WithExitCode(1),
		WithContext(kind, name))
}

// NewInsufficientDiskSpace reports that free disk space is below the required minimum.
func NewInsufficientDiskSpace(availableMB, requiredMB int64) *GroveError {
	return New(TypeInsufficientFS,
		fmt.Sprintf("insufficient disk space: %d MB available, %d MB required", availableMB, requiredMB),
		WithExitCode(1),
		WithContext("available_mb", fmt.Sprintf("%d", availableMB)),
		WithContext("required_mb", fmt.Sprintf("%d", requiredMB)))
}

// NewLockFailed reports that an exclusive lock could not be acquired.
func NewLockFailed(path string) *GroveError {
	return New(TypeLockFailed, fmt.Sprintf("could not acquire lock %s", path),
		WithExitCode(75),
		WithContext("lock_path", path))
}

// NewPortInUse names the offending port and logical service.
func NewPortInUse(port uint16, service string) *GroveError {
	return New(TypePortInUse, fmt.Sprintf("port %d (%s) is already in use", port, service),
		WithExitCode(1),
		WithContext("port", fmt.Sprintf("%d", port)),
		WithContext("service", service),
		WithSuggestions(fmt.Sprintf("Run: lsof -i :%d", port)))
}

// NewComposeOperationFailed carries the compose subprocess's stderr.
func NewComposeOperationFailed(op, stderr string) *GroveError {
	return New(TypeComposeOpFailed, fmt.Sprintf("docker compose %s failed", op),
		WithExitCode(125),
		WithCause(fmt.Errorf("%s", stderr)))
}

// NewInvalidTaskState reports an illegal state-machine transition.
func NewInvalidTaskState(task, current, target string) *GroveError {
	return New(TypeInvalidState, fmt.Sprintf("task %q cannot transition from %s to %s", task, current, target),
		WithExitCode(1),
		WithContext("current", current),
		WithContext("target", target))
}

// NewDirtyWorktree lists the reasons uproot was refused.
func NewDirtyWorktree(task string, reasons []string) *GroveError {
	e := New(TypeInvalidState, fmt.Sprintf("refusing to uproot %q: uncommitted changes or unmerged commits", task),
		WithExitCode(1))
	e.Suggestions = append(e.Suggestions,
		"Run: grove stop "+task+" to keep the worktree and branch",
		"Run: grove uproot "+task+" --force to discard and remove anyway")
	if len(reasons) > 0 {
		e.Context = map[string]string{}
		for i, r := range reasons {
			e.Context[fmt.Sprintf("reason_%d", i+1)] = r
		}
	}
	return e
}

// NewBranchAlreadyExists reports a local branch name collision.
func NewBranchAlreadyExists(branch string) *GroveError {
	return New(TypeAlreadyExists, fmt.Sprintf("branch %q already exists", branch),
		WithExitCode(1),
		WithContext("branch", branch))
}
