// Package errors provides the structured error type used across grove.
//
// GroveError carries a type tag, an exit code, optional suggestions, and
// optional key/value context, so the CLI can print "Error: <message>"
// plus actionable hints without every caller re-deriving exit codes.
//
//	err := errors.NewPortInUse(3001, "app")
//	os.Exit(errors.Print(err))
package errors
