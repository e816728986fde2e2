// Package output renders `grove list`/`grove status` results in whichever
// format the caller's --format flag asked for, through a single Manager.
//
// # Output Manager
//
//	out := output.NewManager(output.FormatTable, quiet, noColor, os.Stdout)
//
//	out.Success("planted tree %q in grove %q", task, grove)
//	out.Warning("tree %q has no recorded tmux session", task)
//	out.Error("grove %q is not running", grove)
//
// # Displaying records
//
// Display renders whatever the formatter knows how to render — a
// []*statestore.Record from `grove list`, or a single record from `grove
// status` — dispatching to the formatter matching the current format:
//
//	out.Display(records)
//
// # Formats
//
//	output.FormatTable // human-readable columns (default)
//	output.FormatJSON  // one JSON array, for scripting
//	output.FormatYAML  // YAML, for scripting
//	output.FormatPlain // unformatted lines, for piping
//
//	out.SetFormat(output.FormatJSON)
//
// # Color and quiet mode
//
// Colors follow the teacher's convention: disabled when --no-color or
// NO_COLOR is set, TERM is dumb or empty, or stdout isn't a terminal.
// GROVE_ASCII_ICONS (or TERM=dumb) switches the icons to ASCII. Quiet
// mode (--quiet) suppresses Success/Warning/Info but still prints Error.
package output
