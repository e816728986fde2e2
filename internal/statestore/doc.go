// Package statestore persists per-environment records as one JSON file per
// task under <state_root>/groves/.
package statestore
