package statestore

import "time"

// PortTriple is the (app, db, cache) port set allocated to one environment.
type PortTriple struct {
	App   uint16 `json:"app"`
	DB    uint16 `json:"db"`
	Cache uint16 `json:"redis"`
}

// Record is the persisted description of one planted environment.
type Record struct {
	TaskName            string      `json:"task_name"`
	Branch              string      `json:"branch"`
	WorktreePath        string      `json:"worktree_path"`
	CreatedAt           time.Time   `json:"created_at"`
	ComposeFile         string      `json:"compose_file,omitempty"`
	ComposePorts        *PortTriple `json:"compose_ports,omitempty"`
	TmuxSession         string      `json:"tmux_session,omitempty"`
	SharedGrove         string      `json:"shared_grove,omitempty"`
	SharedComposePorts  *PortTriple `json:"shared_compose_ports,omitempty"`
}

// IsGrove reports whether this record owns its own compose stack.
func (r *Record) IsGrove() bool { return r.ComposeFile != "" }

// IsTree reports whether this record shares another environment's stack.
func (r *Record) IsTree() bool { return r.SharedGrove != "" }

// legacyRecord mirrors older on-disk shapes so Load never fails parsing on
// unknown or renamed fields.
type legacyRecord struct {
	Record
	TmuxWindow string `json:"tmux_window,omitempty"`
}

func (l *legacyRecord) normalize() Record {
	r := l.Record
	if r.TmuxSession == "" && l.TmuxWindow != "" {
		r.TmuxSession = l.TmuxWindow
	}
	return r
}
