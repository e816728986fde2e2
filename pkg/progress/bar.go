package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Bar is a determinate progress bar used to report compose-stack readiness
// while WaitHealthy polls container status.
type Bar struct {
	total   int
	current int
	message string
	width   int
	options *Options

	mu         sync.Mutex
	active     bool
	startTime  time.Time
	lastUpdate time.Time
	lastLine   string

	startValue int
	samples    []throughputSample
}

type throughputSample struct {
	time  time.Time
	value int
}

// NewBar creates a progress bar with the default, TTY-aware options.
func NewBar(total int, message string) *Bar {
	return NewBarWithOptions(total, message, nil)
}

// NewBarWithOptions creates a progress bar with explicit options, useful in
// tests that want to force IsTTY/Quiet regardless of the real terminal.
func NewBarWithOptions(total int, message string, opts *Options) *Bar {
	if opts == nil {
		opts = DefaultOptions()
	}

	width := 40
	if opts.IsTTY {
		width = 30
	}

	return &Bar{
		total:   total,
		message: message,
		width:   width,
		options: opts,
		samples: make([]throughputSample, 0, 10),
	}
}

// Start marks the bar active and draws the first frame. A nil *Bar is not
// valid to call Start on; callers guard with "if bar != nil" first, matching
// WaitHealthy's use where a progress bar is optional.
func (b *Bar) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active || b.options.Quiet || !b.options.IsTTY {
		return
	}

	b.active = true
	b.startTime = time.Now()
	b.lastUpdate = b.startTime
	b.startValue = b.current
	b.samples = append(b.samples, throughputSample{time: b.startTime, value: b.current})

	b.render()
}

// Update reports current progress out of total, clamped to [0, total], and
// repaints if RefreshRate has elapsed since the last frame.
func (b *Bar) Update(current int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if current > b.total {
		current = b.total
	}
	if current < 0 {
		current = 0
	}
	b.current = current

	now := time.Now()
	b.samples = append(b.samples, throughputSample{time: now, value: current})
	if len(b.samples) > 10 {
		b.samples = b.samples[1:]
	}

	if b.active && now.Sub(b.lastUpdate) >= b.options.RefreshRate {
		b.render()
		b.lastUpdate = now
	}
}

// SetTotal updates the denominator, used by WaitHealthy once it learns how
// many services a compose stack declares.
func (b *Bar) SetTotal(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = total
	if b.active {
		b.render()
	}
}

// Stop deactivates the bar and clears its line, whether the wait it was
// tracking succeeded, failed, or timed out.
func (b *Bar) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return
	}

	b.active = false
	if b.options.IsTTY && !b.options.Quiet {
		b.clearLine()
		_, _ = fmt.Fprintln(b.options.Writer)
	}
}

func (b *Bar) render() {
	if b.options.Quiet || !b.options.IsTTY {
		return
	}

	b.clearLine()

	percentage := 0.0
	if b.total > 0 {
		percentage = float64(b.current) / float64(b.total)
	}

	filled := int(percentage * float64(b.width))
	if filled > b.width {
		filled = b.width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", b.width-filled)

	components := []string{
		b.message,
		fmt.Sprintf("[%s]", color.CyanString(bar)),
		fmt.Sprintf("%d/%d", b.current, b.total),
		fmt.Sprintf("(%.0f%%)", percentage*100),
	}
	if throughput := b.getThroughput(); throughput != "" {
		components = append(components, throughput)
	}
	if b.options.ShowETA {
		if eta := b.getETA(); eta != "" {
			components = append(components, eta)
		}
	}
	if b.options.ShowElapsedTime {
		if elapsed := b.getElapsedTimeFormatted(); elapsed != "" {
			components = append(components, elapsed)
		}
	}

	line := "\r" + strings.Join(components, " ")
	b.lastLine = line
	_, _ = fmt.Fprint(b.options.Writer, line)
}

func (b *Bar) clearLine() {
	if b.lastLine != "" {
		_, _ = fmt.Fprintf(b.options.Writer, "\r%s\r", strings.Repeat(" ", len(b.lastLine)))
	}
}

// getThroughput reports services-ready-per-second, smoothed over the last
// 10 Update samples.
func (b *Bar) getThroughput() string {
	if len(b.samples) < 2 {
		return ""
	}

	first := b.samples[0]
	last := b.samples[len(b.samples)-1]

	duration := last.time.Sub(first.time)
	if duration < time.Second {
		return ""
	}

	itemsDone := last.value - first.value
	itemsPerSecond := float64(itemsDone) / duration.Seconds()

	switch {
	case itemsPerSecond >= 1:
		return color.HiBlackString("%.1f/s", itemsPerSecond)
	case itemsPerSecond > 0:
		return color.HiBlackString("%.2f/s", itemsPerSecond)
	default:
		return ""
	}
}

func (b *Bar) getETA() string {
	if b.current == 0 || b.current >= b.total {
		return ""
	}

	elapsed := time.Since(b.startTime)
	if elapsed < time.Second {
		return ""
	}

	itemsDone := b.current - b.startValue
	if itemsDone <= 0 {
		return ""
	}

	itemsRemaining := b.total - b.current
	secondsPerItem := elapsed.Seconds() / float64(itemsDone)
	secondsRemaining := secondsPerItem * float64(itemsRemaining)
	if secondsRemaining < 1 {
		return ""
	}

	eta := time.Duration(secondsRemaining * float64(time.Second))
	return color.HiBlackString("ETA %s", formatDuration(eta))
}

func (b *Bar) getElapsedTimeFormatted() string {
	if b.startTime.IsZero() {
		return ""
	}
	duration := time.Since(b.startTime)
	if duration < time.Second {
		return ""
	}
	return color.HiBlackString("[%s]", formatDuration(duration))
}
