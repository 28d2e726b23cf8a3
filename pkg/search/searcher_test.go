package search

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvim-tech/qlfind/pkg/logger"
	"github.com/lvim-tech/qlfind/pkg/utils"
)

type fakeRun struct {
	output []byte
	err    error
	name   string
	args   []string
	calls  int
}

func (f *fakeRun) run(_ context.Context, _ utils.RunOptions, name string, args ...string) ([]byte, error) {
	f.calls++
	f.name = name
	f.args = args
	return f.output, f.err
}

func newFakeAccelerator(f *fakeRun) *Accelerator {
	a := NewAccelerator("es", []string{"-n", "{limit}", "-tsv", "{query}"}, time.Second)
	a.run = f.run
	return a
}

func TestAcceleratorBuildArgs(t *testing.T) {
	a := NewAccelerator("es", []string{"-n", "{limit}", "-size", "{query}"}, 0)
	assert.Equal(t, []string{"-n", "42", "-size", "my file"}, a.buildArgs("my file", 42))

	a = NewAccelerator("locate", []string{"-l", "{limit}"}, 0)
	assert.Equal(t, []string{"-l", "5", "needle"}, a.buildArgs("needle", 5))
}

func TestAcceleratorNotConfigured(t *testing.T) {
	var a *Accelerator
	_, err := a.Search(context.Background(), Options{Query: "x"})
	assert.ErrorIs(t, err, ErrNoAccelerator)

	_, err = (&Accelerator{}).Search(context.Background(), Options{Query: "x"})
	assert.ErrorIs(t, err, ErrNoAccelerator)
}

func TestAcceleratorParsesAndFilters(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "docs/plan.txt", "plan-dir/")
	outside := filepath.Join(t.TempDir(), "plan-outside.txt")

	rows := []string{
		fmt.Sprintf("%s\t1,234\t2024-03-05 10:20:30", filepath.Join(root, "docs", "plan.txt")),
		fmt.Sprintf("%s\t0\t2024-03-05 10:20", filepath.Join(root, "plan-dir")),
		fmt.Sprintf("%s\t10\t2024-03-05 10:20", filepath.Join(root, "missing-plan.md")),
		fmt.Sprintf("%s\tbad\tbad", filepath.Join(root, "gone-plan.md")),
		fmt.Sprintf("%s\t10\t2024-03-05 10:20", filepath.Join(root, ".plan-hidden")),
		fmt.Sprintf("%s\t10\t2024-03-05 10:20", filepath.Join(root, "node_modules", "plan.js")),
		fmt.Sprintf("%s\t10\t2024-03-05 10:20", filepath.Join(root, "a", "b", "c", "d", "e", "plan.deep")),
		fmt.Sprintf("%s\t10\t2024-03-05 10:20", filepath.Join(root, "unrelated.txt")),
		fmt.Sprintf("%s\t10\t2024-03-05 10:20", outside),
		"",
	}
	f := &fakeRun{output: []byte(strings.Join(rows, "\r\n"))}
	a := newFakeAccelerator(f)

	records, err := a.Search(context.Background(), Options{
		Roots:           []string{root},
		Query:           "PLAN",
		ExcludePatterns: []string{"node_modules"},
	})
	require.NoError(t, err)

	assert.Equal(t, "es", f.name)
	assert.Equal(t, []string{"-n", "100", "-tsv", "PLAN"}, f.args)

	require.Len(t, records, 3)

	assert.Equal(t, "plan.txt", records[0].Name)
	assert.Equal(t, uint64(1234), records[0].SizeBytes)
	assert.Equal(t, ".txt", records[0].Extension)
	assert.Equal(t, KindFile, records[0].Kind)
	assert.True(t, time.Date(2024, 3, 5, 10, 20, 30, 0, time.Local).Equal(records[0].ModifiedAt))

	assert.Equal(t, "plan-dir", records[1].Name)
	assert.Equal(t, KindDirectory, records[1].Kind)

	// not on disk but the row is complete
	assert.Equal(t, "missing-plan.md", records[2].Name)
	assert.Equal(t, uint64(10), records[2].SizeBytes)
	assert.Equal(t, ".md", records[2].Extension)
}

func TestAcceleratorCapsResults(t *testing.T) {
	root := t.TempDir()
	var rows []string
	for i := 0; i < 20; i++ {
		rows = append(rows, fmt.Sprintf("%s\t1\t2024-01-01 00:00", filepath.Join(root, fmt.Sprintf("hit-%d", i))))
	}
	a := newFakeAccelerator(&fakeRun{output: []byte(strings.Join(rows, "\n"))})

	records, err := a.Search(context.Background(), Options{Roots: []string{root}, Query: "hit", MaxResults: 4})
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestSearcherUsesAccelerator(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "walk-only-match.txt")

	f := &fakeRun{output: []byte(filepath.Join(root, "indexed-match.txt") + "\t5\t2024-01-01 00:00\n")}
	s := NewSearcher(newFakeAccelerator(f), logger.Discard())

	result, err := s.Search(context.Background(), Options{Roots: []string{root}, Query: "match"})
	require.NoError(t, err)

	assert.True(t, result.Accelerated)
	assert.Equal(t, uint(1), result.TotalCount)
	assert.Equal(t, "indexed-match.txt", result.Records[0].Name)
}

func TestSearcherFallsBackToWalk(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "walk-match.txt")

	failures := []error{
		&utils.CommandError{Command: "es", Reason: "not found", Err: utils.ErrCommandNotFound},
		&utils.CommandError{Command: "es", Reason: "timed out", Err: utils.ErrTimeout},
		errors.New("exit status 2"),
	}

	for _, failure := range failures {
		f := &fakeRun{err: failure}
		s := NewSearcher(newFakeAccelerator(f), logger.Discard())

		result, err := s.Search(context.Background(), Options{Roots: []string{root}, Query: "match"})
		require.NoError(t, err)

		assert.Equal(t, 1, f.calls)
		assert.False(t, result.Accelerated)
		assert.Equal(t, []string{"walk-match.txt"}, names(result.Records))
	}
}

func TestSearcherWithoutAccelerator(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "one.txt", "two.txt")

	s := NewSearcher(nil, logger.Discard())
	ticks := []time.Time{time.Unix(100, 0), time.Unix(100, int64(250*time.Millisecond))}
	s.now = func() time.Time {
		t := ticks[0]
		ticks = ticks[1:]
		return t
	}

	result, err := s.Search(context.Background(), Options{Roots: []string{root}, Query: ".txt", MaxResults: 1})
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.TotalCount)
	assert.Equal(t, uint(250), result.ElapsedMillis)
	assert.False(t, result.Accelerated)
}

func TestSearcherRequiresRoots(t *testing.T) {
	_, err := NewSearcher(nil, logger.Discard()).Search(context.Background(), Options{Query: "x"})
	assert.ErrorIs(t, err, ErrNoRoots)
}
