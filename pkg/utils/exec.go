package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds a command when RunOptions.Timeout is zero.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxOutput caps stdout when RunOptions.MaxOutput is zero.
	DefaultMaxOutput = 4 << 20

	maxStderr = 64 << 10
)

var (
	// ErrCommandNotFound is returned when the executable is not in PATH.
	ErrCommandNotFound = errors.New("command not found")
	// ErrTimeout is returned when a command exceeds its timeout.
	ErrTimeout = errors.New("command timed out")
	// ErrOutputLimit is returned when a command writes more than MaxOutput bytes.
	ErrOutputLimit = errors.New("output limit exceeded")
)

// RunOptions bounds an external command.
type RunOptions struct {
	Timeout   time.Duration
	MaxOutput int
}

// CommandError describes a failed external command.
type CommandError struct {
	Command string
	Reason  string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %s: %s", e.Command, e.Reason, e.Output)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Run executes name with args and returns its stdout. The command is killed
// when it runs past opts.Timeout or writes more than opts.MaxOutput bytes;
// both cases, a missing binary and a non-zero exit are reported as
// *CommandError.
func Run(ctx context.Context, opts RunOptions, name string, args ...string) ([]byte, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxOutput <= 0 {
		opts.MaxOutput = DefaultMaxOutput
	}

	if _, err := exec.LookPath(name); err != nil {
		return nil, &CommandError{Command: name, Reason: "not found", Err: ErrCommandNotFound}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	stdout := &limitedBuffer{max: opts.MaxOutput, onOverflow: cancel}
	stderr := &limitedBuffer{max: maxStderr}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	switch {
	case stdout.Overflowed():
		return nil, &CommandError{Command: name, Reason: "output limit exceeded", Err: ErrOutputLimit}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, &CommandError{Command: name, Reason: fmt.Sprintf("timed out after %s", opts.Timeout), Err: ErrTimeout}
	case errors.Is(ctx.Err(), context.Canceled):
		return nil, &CommandError{Command: name, Reason: "cancelled", Err: ctx.Err()}
	case err != nil:
		reason := err.Error()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			reason = fmt.Sprintf("exit status %d", exitErr.ExitCode())
		}
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		return nil, &CommandError{Command: name, Reason: reason, Output: output, Err: err}
	}

	return stdout.Bytes(), nil
}

// limitedBuffer keeps at most max bytes and reports overflow once.
type limitedBuffer struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	max        int
	overflowed bool
	onOverflow func()
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.overflowed {
		return len(p), nil
	}

	if b.buf.Len()+len(p) > b.max {
		b.overflowed = true
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return len(p), nil
	}

	return b.buf.Write(p)
}

func (b *limitedBuffer) Overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflowed
}

func (b *limitedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *limitedBuffer) String() string {
	return string(b.Bytes())
}
