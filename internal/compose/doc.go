// Package compose's template, dockerfile, and envfile files are pure
// functions, round-trip tested independently of any running daemon;
// controller.go and source.go require `docker`/`pg_dump`/`psql` on PATH
// and are covered by unit tests against fake stub binaries.
package compose
