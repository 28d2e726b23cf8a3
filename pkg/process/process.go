// Package process lists and terminates OS processes through console tools.
//
// On Windows the listing comes from `tasklist /FO CSV /NH`, elsewhere from
// `ps`. Output is decoded with a configurable text encoding before parsing so
// non-ASCII process names survive legacy code pages.
package process

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/lvim-tech/qlfind/pkg/delimited"
	"github.com/lvim-tech/qlfind/pkg/logger"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

// Format selects the listing command and its parser.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatPS   Format = "ps"
)

// ProcessRecord is one row of the process listing.
type ProcessRecord struct {
	Name           string `json:"name" yaml:"name"`
	PID            string `json:"pid" yaml:"pid"`
	SessionName    string `json:"session_name" yaml:"session_name"`
	SessionNumber  string `json:"session_number" yaml:"session_number"`
	MemoryUsageRaw string `json:"memory_usage" yaml:"memory_usage"`
}

// Options configure a Lister.
type Options struct {
	Format    Format
	Encoding  string
	Exclude   []string
	Timeout   time.Duration
	MaxOutput int
}

type runFunc func(ctx context.Context, opts utils.RunOptions, name string, args ...string) ([]byte, error)

// Lister runs the platform listing and termination commands.
type Lister struct {
	opts Options
	goos string
	log  *logger.Logger
	run  runFunc
}

// NewLister creates a Lister for the current platform.
func NewLister(opts Options, log *logger.Logger) *Lister {
	return &Lister{
		opts: opts,
		goos: runtime.GOOS,
		log:  log,
		run:  utils.Run,
	}
}

func (l *Lister) format() Format {
	switch l.opts.Format {
	case FormatCSV, FormatPS:
		return l.opts.Format
	}
	if l.goos == "windows" {
		return FormatCSV
	}
	return FormatPS
}

func (l *Lister) runOptions() utils.RunOptions {
	return utils.RunOptions{Timeout: l.opts.Timeout, MaxOutput: l.opts.MaxOutput}
}

func (l *Lister) listCommand() (string, []string) {
	if l.format() == FormatCSV {
		return "tasklist", []string{"/FO", "CSV", "/NH"}
	}
	return "ps", []string{"-e", "-o", "pid=,sess=,tty=,rss=,comm="}
}

// List returns the running processes minus excluded names.
func (l *Lister) List(ctx context.Context) ([]ProcessRecord, error) {
	name, args := l.listCommand()

	out, err := l.run(ctx, l.runOptions(), name, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	text, err := Decode(out, l.opts.Encoding)
	if err != nil {
		return nil, err
	}

	var records []ProcessRecord
	if l.format() == FormatCSV {
		records = ParseCSV(text)
	} else {
		records = ParsePS(text)
	}

	filtered := records[:0]
	for _, r := range records {
		if shouldExclude(r.Name, l.opts.Exclude) {
			continue
		}
		filtered = append(filtered, r)
	}

	l.log.Debugf("listed %d processes (%d excluded)", len(filtered), len(records)-len(filtered))
	return filtered, nil
}

// ParseCSV converts tasklist CSV rows (name, pid, session name, session
// number, memory usage) into records. Rows without a name or a numeric pid
// are dropped.
func ParseCSV(text string) []ProcessRecord {
	var records []ProcessRecord

	for _, fields := range delimited.Parse(text) {
		if len(fields) < 2 {
			continue
		}
		record := ProcessRecord{
			Name:           fields[0],
			PID:            fields[1],
			SessionName:    field(fields, 2),
			SessionNumber:  field(fields, 3),
			MemoryUsageRaw: field(fields, 4),
		}
		if record.Name == "" || !IsPID(record.PID) {
			continue
		}
		records = append(records, record)
	}

	return records
}

// ParsePS converts `ps -o pid=,sess=,tty=,rss=,comm=` output into records.
// The command name is last so it may contain spaces.
func ParsePS(text string) []ProcessRecord {
	var records []ProcessRecord

	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		if !IsPID(fields[0]) {
			continue
		}

		records = append(records, ProcessRecord{
			Name:           strings.Join(fields[4:], " "),
			PID:            fields[0],
			SessionName:    fields[2],
			SessionNumber:  fields[1],
			MemoryUsageRaw: fields[3] + " K",
		})
	}

	return records
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// IsPID reports whether s is a non-empty decimal process id.
func IsPID(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 32)
	return err == nil
}

func shouldExclude(name string, excludeList []string) bool {
	nameLower := strings.ToLower(name)
	for _, exclude := range excludeList {
		if exclude == "" {
			continue
		}
		if strings.Contains(nameLower, strings.ToLower(exclude)) {
			return true
		}
	}
	return false
}
