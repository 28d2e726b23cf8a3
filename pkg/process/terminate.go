package process

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lvim-tech/qlfind/pkg/utils"
)

var (
	// ErrNotFound means no process matched the pid or name.
	ErrNotFound = errors.New("process not found")
	// ErrAccessDenied means the caller may not signal the process.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidPID means the pid is not a decimal number.
	ErrInvalidPID = errors.New("invalid pid")
	// ErrTerminateFailed covers every other termination failure.
	ErrTerminateFailed = errors.New("terminate failed")
)

// TerminateError reports a failed termination for one pid or name.
type TerminateError struct {
	Target string
	Reason string
	Kind   error
	Err    error
}

func (e *TerminateError) Error() string {
	return fmt.Sprintf("failed to terminate %s: %s", e.Target, e.Reason)
}

// Unwrap exposes both the classification sentinel and the command error.
func (e *TerminateError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Terminate force-kills a process by pid.
func (l *Lister) Terminate(ctx context.Context, pid string) error {
	if !IsPID(pid) {
		return &TerminateError{Target: pid, Reason: "not a valid pid", Kind: ErrInvalidPID}
	}

	name, args := "kill", []string{"-9", pid}
	if l.format() == FormatCSV {
		name, args = "taskkill", []string{"/PID", pid, "/F"}
	}

	return l.terminate(ctx, "PID "+pid, name, args...)
}

// TerminateByName force-kills every process whose name matches exactly.
func (l *Lister) TerminateByName(ctx context.Context, processName string) error {
	if strings.TrimSpace(processName) == "" {
		return &TerminateError{Target: "\"\"", Reason: "empty process name", Kind: ErrNotFound}
	}

	name, args := "pkill", []string{"-9", "-x", processName}
	if l.format() == FormatCSV {
		name, args = "taskkill", []string{"/IM", processName, "/F"}
	}

	return l.terminate(ctx, processName, name, args...)
}

func (l *Lister) terminate(ctx context.Context, target, name string, args ...string) error {
	_, err := l.run(ctx, l.runOptions(), name, args...)
	if err == nil {
		l.log.Infof("terminated %s", target)
		return nil
	}

	reason, kind := classify(name, err)
	l.log.Warnf("failed to terminate %s: %v", target, err)
	return &TerminateError{Target: target, Reason: reason, Kind: kind, Err: err}
}

func classify(tool string, err error) (string, error) {
	var cmdErr *utils.CommandError
	if !errors.As(err, &cmdErr) {
		return err.Error(), ErrTerminateFailed
	}

	output := strings.ToLower(cmdErr.Output)
	switch {
	case strings.Contains(output, "not found"),
		strings.Contains(output, "no such process"),
		strings.Contains(output, "no process found"),
		strings.Contains(output, "no running instance"):
		return "process not found", ErrNotFound
	case strings.Contains(output, "access is denied"),
		strings.Contains(output, "access denied"),
		strings.Contains(output, "operation not permitted"),
		strings.Contains(output, "permission denied"):
		return "access denied", ErrAccessDenied
	case tool == "pkill" && cmdErr.Reason == "exit status 1":
		// pkill exits 1 silently when nothing matched
		return "process not found", ErrNotFound
	case tool == "taskkill" && cmdErr.Reason == "exit status 128":
		return "process not found", ErrNotFound
	}

	return cmdErr.Error(), ErrTerminateFailed
}

// BulkResult summarises a TerminateAll call.
type BulkResult struct {
	Succeeded []string
	Failed    []string
	Err       error
}

// TerminateAll terminates each pid in order and reports one summary error
// with the number of partial successes.
func (l *Lister) TerminateAll(ctx context.Context, pids []string) BulkResult {
	var result BulkResult
	var firstErr error

	for _, pid := range pids {
		if err := l.Terminate(ctx, pid); err != nil {
			result.Failed = append(result.Failed, pid)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Succeeded = append(result.Succeeded, pid)
	}

	if len(result.Failed) > 0 {
		result.Err = fmt.Errorf("terminated %d of %d processes; %d failed (%v)",
			len(result.Succeeded), len(pids), len(result.Failed), firstErr)
	}

	return result
}
