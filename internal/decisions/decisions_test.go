package decisions

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"dupefinder/internal/logging"
	"dupefinder/internal/media"
)

func testCandidate(id int64, score int, file string, size int64) *media.Candidate {
	return &media.Candidate{
		ID:         id,
		Score:      score,
		Scored:     true,
		Files:      []string{file},
		ShortFiles: []string{file},
		Size:       size,
	}
}

func TestRecorderLazyTitleHeader(t *testing.T) {
	var out strings.Builder
	rec := NewRecorderWith(&out, nil, "run-1", logging.NewNop())

	rec.Title("Some Movie (2019)")
	if out.Len() != 0 {
		t.Fatalf("header written before any decision: %q", out.String())
	}

	rec.Remove(context.Background(), testCandidate(10, 3000, "/m/a/file.mkv", 100))
	rec.Remove(context.Background(), testCandidate(11, 2000, "/m/a/other.mkv", 200))

	got := out.String()
	if count := strings.Count(got, "Title    : Some Movie (2019)"); count != 1 {
		t.Fatalf("title header count = %d, want 1\n%s", count, got)
	}
	if !strings.Contains(got, "Removing (3000): id=10") {
		t.Errorf("missing first removal line:\n%s", got)
	}
}

func TestRecorderRearmedTitleOpensNewSection(t *testing.T) {
	var out strings.Builder
	rec := NewRecorderWith(&out, nil, "run-1", logging.NewNop())

	rec.Title("Movie")
	rec.Remove(context.Background(), testCandidate(10, 0, "a", 1))
	rec.Title("Movie")
	rec.Keep(context.Background(), testCandidate(11, 0, "b", 1))

	if count := strings.Count(out.String(), "Title    : Movie"); count != 2 {
		t.Fatalf("title header count = %d, want 2\n%s", count, out.String())
	}
}

func TestRecorderNoDecisionsNoOutput(t *testing.T) {
	var out strings.Builder
	rec := NewRecorderWith(&out, nil, "run-1", logging.NewNop())
	rec.Title("Quiet Group")
	if out.Len() != 0 {
		t.Fatalf("expected empty log, got %q", out.String())
	}
}

func TestJournalRoundTrip(t *testing.T) {
	journal, err := OpenPath(filepath.Join(t.TempDir(), "decisions.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer journal.Close()

	ctx := context.Background()
	if err := journal.BeginRun(ctx, "run-1", true); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	rec := NewRecorderWith(&strings.Builder{}, journal, "run-1", logging.NewNop())
	rec.Title("Movie")
	rec.Keep(ctx, testCandidate(10, 5000, "/m/keep.mkv", 100))
	rec.Remove(ctx, testCandidate(11, 3000, "/m/drop.mkv", 200))

	if err := journal.FinishRun(ctx, "run-1", 1, 200); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	recent, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	// Most recent first.
	if recent[0].Action != ActionRemove || recent[0].MediaID != 11 {
		t.Errorf("recent[0] = %+v", recent[0])
	}
	if recent[1].Action != ActionKeep || recent[1].Score != 5000 || !recent[1].Scored {
		t.Errorf("recent[1] = %+v", recent[1])
	}
	if recent[0].Title != "Movie" || recent[0].SizeBytes != 200 {
		t.Errorf("recent[0] fields = %+v", recent[0])
	}
}

func TestJournalReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.db")
	journal, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := journal.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
}
