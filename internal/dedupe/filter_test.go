package dedupe

import (
	"testing"

	"dupefinder/internal/logging"
)

func TestFilterDropsOptimizedCopies(t *testing.T) {
	optimized := candidate(11, 0, "/m/a/optimized.mp4")
	optimized.Optimized = true
	group := newGroup(candidate(10, 0, "/m/a/original.mkv"), optimized)

	dropped := Filter(group, false, logging.NewNop())
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if len(group.Candidates) != 1 || group.Candidates[0].ID != 10 {
		t.Fatalf("remaining = %v", group.Candidates)
	}
}

func TestFilterVersionsFolder(t *testing.T) {
	inFolder := candidate(11, 0, `D:\Media\Plex Versions\Optimized.mp4`)
	group := newGroup(candidate(10, 0, "/m/a/original.mkv"), inFolder)

	if dropped := Filter(group, true, logging.NewNop()); dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}

	// Disabled: the copy stays.
	stays := candidate(11, 0, "/media/Plex Versions/Optimized.mp4")
	group = newGroup(candidate(10, 0, "/m/a/original.mkv"), stays)
	if dropped := Filter(group, false, logging.NewNop()); dropped != 0 {
		t.Fatalf("dropped = %d, want 0 when disabled", dropped)
	}
}

func TestFilterVersionsFolderNeedsExactSegment(t *testing.T) {
	group := newGroup(
		candidate(10, 0, "/m/a/original.mkv"),
		candidate(11, 0, "/media/Plex Versions Backup/copy.mkv"),
	)
	if dropped := Filter(group, true, logging.NewNop()); dropped != 0 {
		t.Fatalf("dropped = %d, want 0 for a non-matching segment", dropped)
	}
}

func TestFilterCollapseBelowTwo(t *testing.T) {
	optimized := candidate(11, 0, "/m/a/optimized.mp4")
	optimized.Optimized = true
	group := newGroup(candidate(10, 0, "/m/a/original.mkv"), optimized)

	Filter(group, false, logging.NewNop())
	if len(group.Candidates) >= 2 {
		t.Fatalf("group should collapse below the duplicate threshold, got %d", len(group.Candidates))
	}
}

func TestMatchesSkipList(t *testing.T) {
	files := []string{"/media/movies/Best Movie/file.mkv"}
	if !matchesSkipList(files, []string{"Best Movie"}) {
		t.Error("substring should match")
	}
	if matchesSkipList(files, []string{"Other Movie"}) {
		t.Error("unrelated entry should not match")
	}
	if matchesSkipList(files, []string{""}) {
		t.Error("empty entry should never match")
	}
	if matchesSkipList(files, nil) {
		t.Error("empty skip list should never match")
	}
}
