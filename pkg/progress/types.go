package progress

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Options configures a Bar's rendering behavior.
type Options struct {
	// Writer is the output stream (default: os.Stderr).
	Writer io.Writer
	// ShowElapsedTime adds an elapsed-time suffix to the rendered line.
	ShowElapsedTime bool
	// ShowETA adds an estimated-time-remaining suffix.
	ShowETA bool
	// RefreshRate throttles how often Update actually repaints.
	RefreshRate time.Duration
	// IsTTY disables rendering entirely when false (e.g. piped output, CI).
	IsTTY bool
	// Quiet suppresses rendering regardless of IsTTY.
	Quiet bool
}

// DefaultOptions returns the options grove uses for container health waits:
// render to stderr, only when attached to a real terminal and not silenced
// by GROVE_QUIET or CI.
func DefaultOptions() *Options {
	return &Options{
		Writer:          os.Stderr,
		ShowElapsedTime: true,
		ShowETA:         true,
		RefreshRate:     100 * time.Millisecond,
		IsTTY:           checkTTY(),
		Quiet:           isQuietMode(),
	}
}

func checkTTY() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode()&os.ModeCharDevice != 0
}

func isQuietMode() bool {
	if v := os.Getenv("GROVE_QUIET"); v == "1" || v == "true" {
		return true
	}
	if v := os.Getenv("CI"); v == "1" || v == "true" {
		return true
	}
	return false
}

// formatDuration renders d the way a container-wait bar reports elapsed/ETA
// time: seconds below a minute, "Xm Ys" below an hour, "Xh Ym" above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return ""
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		if seconds > 0 {
			return fmt.Sprintf("%dm %ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if minutes > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}
