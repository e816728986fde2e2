package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Executor handles command execution
type Executor struct {
	options  Options
	verbose  bool
	selector *StrategySelector
}

// NewExecutor creates a new command executor
func NewExecutor(options Options) *Executor {
	return &Executor{
		options:  options,
		verbose:  options.Verbose,
		selector: NewStrategySelector(),
	}
}

// Execute runs cmd via the legacy mode dispatch: ModeInteractive attaches a
// pseudo-TTY (the `tmux attach` path), anything else falls through to plain
// I/O passthrough. Every other command in grove goes through
// ExecuteWithContext instead.
func (e *Executor) Execute(cmd *Command) (*Result, error) {
	if e.verbose {
		color.Cyan("› %s", cmd.String())
	}

	start := time.Now()
	if cmd.Mode == ModeInteractive {
		return e.executeInteractive(cmd, start)
	}
	return e.executePassthrough(cmd, start)
}

// ExecuteWithContext runs cmd under ctx using the strategy the command's
// fields call for (BasicStrategy, or PipeStrategy when Stdin is set).
func (e *Executor) ExecuteWithContext(ctx context.Context, cmd *Command) (*Result, error) {
	if e.verbose {
		color.Cyan("› %s", cmd.String())
	}

	strategy := e.selector.Select(cmd)
	return strategy.Execute(ctx, cmd)
}

// executePassthrough runs a command with direct I/O passthrough
func (e *Executor) executePassthrough(cmd *Command, start time.Time) (*Result, error) {
	ctx := context.Background()
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}
	
	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	
	// Set working directory
	if cmd.WorkingDir != "" {
		execCmd.Dir = cmd.WorkingDir
	}
	
	// Configure environment
	if cmd.InheritEnv {
		execCmd.Env = os.Environ()
	}
	execCmd.Env = append(execCmd.Env, e.options.GlobalEnv...)
	execCmd.Env = append(execCmd.Env, cmd.Environment...)
	
	// Direct I/O passthrough
	execCmd.Stdin = os.Stdin
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	
	// Signal forwarding
	var cleanupSignals func()
	if cmd.SignalForward {
		cleanupSignals = e.setupSignalForwarding(execCmd)
		defer cleanupSignals()
	}
	
	// Run the command
	err := execCmd.Run()
	
	result := &Result{
		Duration: time.Since(start),
	}
	
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			result.Timeout = true
			result.Error = fmt.Errorf("command timed out after %s", cmd.Timeout)
			return result, nil
		} else if exitError, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitError.ExitCode()
		} else {
			result.ExitCode = -1
			result.Error = err
		}
	}
	
	return result, nil
}

// executeInteractive runs a command attached to a real pseudo-TTY, putting
// the calling terminal into raw mode for the duration so the subprocess
// (e.g. `tmux attach`) sees keystrokes exactly as a native terminal would.
// Falls back to plain passthrough when AllocateTTY is unset or stdin isn't
// itself a terminal (piped input, non-interactive CI runs).
func (e *Executor) executeInteractive(cmd *Command, start time.Time) (*Result, error) {
	if !cmd.AllocateTTY || !term.IsTerminal(int(os.Stdin.Fd())) {
		return e.executePassthrough(cmd, start)
	}

	execCmd := exec.Command(cmd.Name, cmd.Args...)
	if cmd.WorkingDir != "" {
		execCmd.Dir = cmd.WorkingDir
	}
	if cmd.InheritEnv {
		execCmd.Env = os.Environ()
	}
	execCmd.Env = append(execCmd.Env, e.options.GlobalEnv...)
	execCmd.Env = append(execCmd.Env, cmd.Environment...)

	ptmx, err := pty.Start(execCmd)
	if err != nil {
		return &Result{Duration: time.Since(start), ExitCode: -1, Error: err}, nil
	}
	defer ptmx.Close()

	if size, err := pty.GetsizeFull(os.Stdin); err == nil {
		_ = pty.Setsize(ptmx, size)
	}
	resize := make(chan os.Signal, 1)
	signal.Notify(resize, syscall.SIGWINCH)
	defer signal.Stop(resize)
	go func() {
		for range resize {
			if size, err := pty.GetsizeFull(os.Stdin); err == nil {
				_ = pty.Setsize(ptmx, size)
			}
		}
	}()

	stdinFd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(stdinFd)
	if err == nil {
		defer term.Restore(stdinFd, oldState)
	}

	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	_, copyErr := io.Copy(os.Stdout, ptmx)

	waitErr := execCmd.Wait()
	result := &Result{Duration: time.Since(start)}
	if waitErr != nil {
		if exitError, ok := waitErr.(*exec.ExitError); ok {
			result.ExitCode = exitError.ExitCode()
		} else {
			result.ExitCode = -1
			result.Error = waitErr
		}
	} else if copyErr != nil && copyErr != io.EOF {
		result.Error = copyErr
	}
	return result, nil
}

// setupSignalForwarding sets up signal forwarding to subprocess
// It returns a cleanup function that should be called after the command completes
func (e *Executor) setupSignalForwarding(cmd *exec.Cmd) func() {
	// Create a channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	
	go func() {
		for sig := range sigChan {
			if cmd.Process != nil {
				// Forward the signal to the subprocess
				cmd.Process.Signal(sig)
			}
		}
	}()
	
	// Return cleanup function to be called after command completes
	return func() {
		signal.Stop(sigChan)
		close(sigChan)
	}
}