package search

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvim-tech/qlfind/pkg/logger"
)

// Walk searches opts.Roots in order, depth-first, and returns at most
// opts.MaxResults records whose name contains opts.Query (case-insensitive).
//
// Hidden entries are skipped unless opts.IncludeHidden is set, and hidden
// directories are never descended into. Entries whose name contains an
// exclude pattern are skipped together with their subtree. Unreadable
// directories are logged and treated as empty.
func Walk(opts Options, log *logger.Logger) []FileRecord {
	opts = opts.withDefaults()

	w := &walker{
		opts:  opts,
		query: strings.ToLower(opts.Query),
		log:   log,
	}
	if w.query == "" {
		return nil
	}

	for _, root := range opts.Roots {
		if w.full() {
			break
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			log.Warnf("skipping root %s: %v", root, err)
			continue
		}
		w.walkDir(abs, 0)
	}

	return w.records
}

type walker struct {
	opts    Options
	query   string
	log     *logger.Logger
	records []FileRecord
}

func (w *walker) full() bool {
	return len(w.records) >= w.opts.MaxResults
}

func (w *walker) walkDir(dir string, depth int) {
	if w.full() {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.log.Warnf("cannot read %s: %v", dir, err)
		return
	}

	for _, entry := range entries {
		if w.full() {
			return
		}

		name := entry.Name()
		hidden := isHidden(name)
		if hidden && !w.opts.IncludeHidden {
			continue
		}
		if isExcluded(name, w.opts.ExcludePatterns) {
			continue
		}

		path := filepath.Join(dir, name)

		if matchesQuery(name, w.query) {
			record, err := recordFromEntry(path, entry)
			if err != nil {
				// vanished between ReadDir and Info
				w.log.Debugf("skipping %s: %v", path, err)
			} else {
				w.records = append(w.records, record)
			}
		}

		if entry.IsDir() && !hidden && depth+1 < w.opts.MaxDepth {
			w.walkDir(path, depth+1)
		}
	}
}

func recordFromEntry(path string, entry fs.DirEntry) (FileRecord, error) {
	info, err := entry.Info()
	if err != nil {
		return FileRecord{}, err
	}
	return recordFromInfo(path, info), nil
}

func recordFromInfo(path string, info fs.FileInfo) FileRecord {
	kind := KindFile
	if info.IsDir() {
		kind = KindDirectory
	}
	var size uint64
	if info.Size() > 0 {
		size = uint64(info.Size())
	}

	name := filepath.Base(path)
	return FileRecord{
		Path:       path,
		Name:       name,
		SizeBytes:  size,
		ModifiedAt: info.ModTime(),
		Kind:       kind,
		Extension:  extensionOf(name, kind),
		IsHidden:   isHidden(name),
	}
}
