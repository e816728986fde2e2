package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const templateFileName = "tmux-layout.json"

// Layout is one of tmux's built-in layout presets.
type Layout string

const (
	LayoutTiled          Layout = "tiled"
	LayoutEvenHorizontal Layout = "even-horizontal"
	LayoutEvenVertical   Layout = "even-vertical"
	LayoutMainHorizontal Layout = "main-horizontal"
	LayoutMainVertical   Layout = "main-vertical"
)

// Pane is one declarative pane within a window.
type Pane struct {
	Command string `json:"command,omitempty"`
	Dir     string `json:"dir,omitempty"`
	Focus   bool   `json:"focus,omitempty"`
	Host    bool   `json:"host,omitempty"`
}

// Window is one declarative window within a session template.
type Window struct {
	Name   string `json:"name"`
	Layout Layout `json:"layout"`
	Panes  []Pane `json:"panes"`
}

// Template is the ordered sequence of windows that make up a session.
type Template struct {
	Windows []Window `json:"windows"`
}

// LoadTemplate returns the project-level window layout override at
// <stateRoot>/tmux-layout.json if present, else DefaultTemplate.
func LoadTemplate(stateRoot string) (Template, error) {
	path := filepath.Join(stateRoot, templateFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultTemplate(), nil
	}
	if err != nil {
		return Template{}, err
	}
	var tmpl Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return Template{}, err
	}
	return tmpl, nil
}

// WriteDefaultTemplate materializes DefaultTemplate as
// <stateRoot>/tmux-layout.json, for `grove init-template`.
func WriteDefaultTemplate(stateRoot string) error {
	data, err := json.MarshalIndent(DefaultTemplate(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(stateRoot, templateFileName), data, 0o644)
}

// DefaultTemplate is used when no tmux-layout.json exists at the state root.
func DefaultTemplate() Template {
	return Template{
		Windows: []Window{
			{
				Name:   "editor",
				Layout: LayoutEvenHorizontal,
				Panes:  []Pane{{Host: true, Focus: true}},
			},
			{
				Name:   "server",
				Layout: LayoutEvenHorizontal,
				Panes:  []Pane{{Command: "grove tree health"}},
			},
			{
				Name:   "shell",
				Layout: LayoutTiled,
				Panes:  []Pane{{}},
			},
		},
	}
}
