package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lvim-tech/qlfind/pkg/delimited"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

const (
	limitPlaceholder = "{limit}"
	queryPlaceholder = "{query}"
)

// ErrNoAccelerator is returned when no accelerated search tool is configured.
var ErrNoAccelerator = errors.New("accelerated search not configured")

var modifiedLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
}

// Accelerator runs an external indexed search tool that prints one
// tab-separated row per hit: path, size, modified.
type Accelerator struct {
	Command   string
	Args      []string
	Timeout   time.Duration
	MaxOutput int

	run func(ctx context.Context, opts utils.RunOptions, name string, args ...string) ([]byte, error)
}

// NewAccelerator creates an Accelerator. Args may contain {limit} and {query}
// placeholders; when {query} is absent the query is appended.
func NewAccelerator(command string, args []string, timeout time.Duration) *Accelerator {
	return &Accelerator{
		Command: command,
		Args:    args,
		Timeout: timeout,
		run:     utils.Run,
	}
}

func (a *Accelerator) buildArgs(query string, limit int) []string {
	args := make([]string, 0, len(a.Args)+1)
	hasQuery := false
	for _, arg := range a.Args {
		if strings.Contains(arg, queryPlaceholder) {
			hasQuery = true
		}
		arg = strings.ReplaceAll(arg, limitPlaceholder, strconv.Itoa(limit))
		arg = strings.ReplaceAll(arg, queryPlaceholder, query)
		args = append(args, arg)
	}
	if !hasQuery {
		args = append(args, query)
	}
	return args
}

// Search runs the tool and converts its rows into records that pass the same
// filters as Walk.
func (a *Accelerator) Search(ctx context.Context, opts Options) ([]FileRecord, error) {
	if a == nil || a.Command == "" {
		return nil, ErrNoAccelerator
	}
	opts = opts.withDefaults()

	run := a.run
	if run == nil {
		run = utils.Run
	}

	out, err := run(ctx, utils.RunOptions{Timeout: a.Timeout, MaxOutput: a.MaxOutput},
		a.Command, a.buildArgs(opts.Query, opts.MaxResults)...)
	if err != nil {
		return nil, fmt.Errorf("accelerated search: %w", err)
	}

	return a.parse(string(out), opts), nil
}

func (a *Accelerator) parse(raw string, opts Options) []FileRecord {
	roots := absRoots(opts.Roots)
	query := strings.ToLower(opts.Query)

	var records []FileRecord
	for _, row := range delimited.ParseWith(raw, '\t') {
		if len(records) >= opts.MaxResults {
			break
		}

		path := filepath.Clean(row[0])
		if !acceptPath(path, roots, opts) {
			continue
		}
		if !matchesQuery(filepath.Base(path), query) {
			continue
		}

		record, ok := recordFromRow(path, row)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	return records
}

func absRoots(roots []string) []string {
	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		if p, err := filepath.Abs(root); err == nil {
			abs = append(abs, p)
		}
	}
	return abs
}

// acceptPath applies the walker's rules to a path reported by the tool: it
// must sit under a root within the depth ceiling, with no excluded component
// and no hidden ancestor.
func acceptPath(path string, roots []string, opts Options) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}

		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) > opts.MaxDepth {
			return false
		}
		for i, part := range parts {
			last := i == len(parts)-1
			if isExcluded(part, opts.ExcludePatterns) {
				return false
			}
			if isHidden(part) && (!last || !opts.IncludeHidden) {
				return false
			}
		}
		return true
	}
	return false
}

func recordFromRow(path string, row []string) (FileRecord, bool) {
	var sizeField, modifiedField string
	if len(row) > 1 {
		sizeField = row[1]
	}
	if len(row) > 2 {
		modifiedField = row[2]
	}

	size, sizeErr := strconv.ParseUint(strings.ReplaceAll(sizeField, ",", ""), 10, 64)
	modified, modErr := parseModified(modifiedField)

	info, statErr := os.Stat(path)
	if statErr == nil {
		record := recordFromInfo(path, info)
		if sizeErr == nil && !info.IsDir() {
			record.SizeBytes = size
		}
		if modErr == nil {
			record.ModifiedAt = modified
		}
		return record, true
	}

	if sizeErr != nil || modErr != nil {
		return FileRecord{}, false
	}

	name := filepath.Base(path)
	return FileRecord{
		Path:       path,
		Name:       name,
		SizeBytes:  size,
		ModifiedAt: modified,
		Kind:       KindFile,
		Extension:  extensionOf(name, KindFile),
		IsHidden:   isHidden(name),
	}, true
}

func parseModified(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range modifiedLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized modified date %q", value)
}
