package search

import (
	"context"
	"errors"
	"time"

	"github.com/lvim-tech/qlfind/pkg/logger"
)

// ErrNoRoots is returned when a search is started without root directories.
var ErrNoRoots = errors.New("no search roots configured")

// Searcher runs searches, trying the accelerator first when one is set.
type Searcher struct {
	accelerator *Accelerator
	log         *logger.Logger
	now         func() time.Time
}

// NewSearcher creates a Searcher. accelerator may be nil.
func NewSearcher(accelerator *Accelerator, log *logger.Logger) *Searcher {
	return &Searcher{
		accelerator: accelerator,
		log:         log,
		now:         time.Now,
	}
}

// Search runs one search to completion (or to the result cap). Accelerator
// failures fall back to Walk; the caller only sees the records.
func (s *Searcher) Search(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Roots) == 0 {
		return nil, ErrNoRoots
	}
	opts = opts.withDefaults()

	start := s.now()
	result := &Result{}

	if s.accelerator != nil && opts.Query != "" {
		records, err := s.accelerator.Search(ctx, opts)
		if err == nil {
			result.Records = records
			result.Accelerated = true
		} else {
			s.log.Debugf("falling back to directory walk: %v", err)
		}
	}

	if !result.Accelerated {
		result.Records = Walk(opts, s.log)
	}

	result.TotalCount = uint(len(result.Records))
	result.ElapsedMillis = uint(s.now().Sub(start).Milliseconds())

	return result, nil
}
