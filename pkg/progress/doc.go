// Package progress renders a single determinate progress bar for
// grove's longest-running operation: waiting for a compose stack's
// containers to report healthy after "grove plant" or "grove start".
//
// # Waiting on a compose stack
//
//	bar := progress.NewBar(0, "acme/feature-x: waiting for containers")
//	if err := controller.WaitHealthy(ctx, file, project, timeout, bar); err != nil {
//	    return err
//	}
//
// WaitHealthy owns the Start/SetTotal/Update/Stop sequencing: it starts the
// bar before the first poll, calls SetTotal once it knows how many services
// the stack declares, calls Update with the ready count each poll, and stops
// the bar whether the wait succeeds, fails, or times out. Passing a nil *Bar
// is valid wherever a bar is optional — callers guard with "if bar != nil".
//
// # Non-TTY handling
//
// Rendering is a no-op when stderr isn't a terminal, or when GROVE_QUIET or
// CI is set to 1 or true, so piped and CI invocations stay quiet.
package progress
