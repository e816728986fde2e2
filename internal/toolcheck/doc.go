// Package toolcheck gates grove on minimum docker/compose/tmux versions.
package toolcheck
