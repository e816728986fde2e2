// Package plugin hosts the collaborator contract consumed by grove's
// detect, commit, and template-rendering subjects; see collaborator.go.
package plugin
