package dedupe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dupefinder/internal/decisions"
	"dupefinder/internal/logging"
	"dupefinder/internal/media"
)

type deleteCall struct {
	itemKey string
	mediaID int64
}

type fakeDeleter struct {
	calls   []deleteCall
	failIDs map[int64]bool
}

func (d *fakeDeleter) Delete(_ context.Context, itemKey string, mediaID int64) error {
	d.calls = append(d.calls, deleteCall{itemKey: itemKey, mediaID: mediaID})
	if d.failIDs[mediaID] {
		return errors.New("delete refused")
	}
	return nil
}

func (d *fakeDeleter) deletedIDs() []int64 {
	ids := make([]int64, 0, len(d.calls))
	for _, call := range d.calls {
		ids = append(ids, call.mediaID)
	}
	return ids
}

type fixedOverrider struct {
	id int64
	ok bool
}

func (o fixedOverrider) Override(context.Context, *media.Group) (int64, bool) {
	return o.id, o.ok
}

type fixedPrompter struct {
	choice Choice
}

func (p fixedPrompter) Choose(*media.Group, []*media.Candidate, int64, bool) Choice {
	return p.choice
}

func candidate(id int64, score int, file string) *media.Candidate {
	return &media.Candidate{
		ID:         id,
		ItemKey:    "/library/metadata/100",
		Score:      score,
		Scored:     true,
		Files:      []string{file},
		ShortFiles: []string{file},
		Exists:     true,
		Size:       1000,
	}
}

func newGroup(candidates ...*media.Candidate) *media.Group {
	return &media.Group{Title: "Movie", Kind: media.KindMovie, Candidates: candidates}
}

type testEngine struct {
	engine  *Engine
	deleter *fakeDeleter
	totals  *RunTotals
	log     *strings.Builder
}

func newTestEngine(t *testing.T, opts Options, overrider Overrider, prompter Prompter) *testEngine {
	t.Helper()
	deleter := &fakeDeleter{failIDs: map[int64]bool{}}
	totals := &RunTotals{}
	log := &strings.Builder{}
	recorder := decisions.NewRecorderWith(log, nil, "test-run", logging.NewNop())
	engine := NewEngine(opts, deleter, overrider, prompter, recorder, totals, logging.NewNop())
	return &testEngine{engine: engine, deleter: deleter, totals: totals, log: log}
}

func TestAutomaticKeepsHighestScore(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true}, nil, nil)
	group := newGroup(candidate(10, 5000, "/m/a/good.mkv"), candidate(11, 3000, "/m/a/bad.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := te.deleter.deletedIDs(); len(got) != 1 || got[0] != 11 {
		t.Fatalf("deleted = %v, want [11]", got)
	}
	if te.totals.Files() != 1 {
		t.Fatalf("totals files = %d, want 1", te.totals.Files())
	}
	if !strings.Contains(te.log.String(), "Keeping (5000): id=10") {
		t.Errorf("missing keep line:\n%s", te.log.String())
	}
}

func TestAutomaticTieKeepsFirstSeen(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true}, nil, nil)
	group := newGroup(candidate(20, 5000, "/m/a/first.mkv"), candidate(10, 5000, "/m/a/second.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := te.deleter.deletedIDs(); len(got) != 1 || got[0] != 10 {
		t.Fatalf("deleted = %v, want [10] (first-seen 20 kept)", got)
	}
}

func TestAutomaticAllNonPositiveScoresUnresolved(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true}, nil, nil)
	group := newGroup(candidate(10, 0, "/m/a/a.mkv"), candidate(11, -5, "/m/a/b.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(te.deleter.calls) != 0 {
		t.Fatalf("deleted = %v, want none for unresolved group", te.deleter.deletedIDs())
	}
	if te.log.Len() != 0 {
		t.Errorf("unexpected decisions:\n%s", te.log.String())
	}
}

func TestAutomaticOverrideBeatsScore(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true}, fixedOverrider{id: 11, ok: true}, nil)
	group := newGroup(candidate(10, 9000, "/m/a/high.mkv"), candidate(11, 100, "/m/a/preferred.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := te.deleter.deletedIDs(); len(got) != 1 || got[0] != 10 {
		t.Fatalf("deleted = %v, want [10] (override 11 kept)", got)
	}
}

func TestAutomaticFilepathsOnlyKeepsLowestID(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true, MatchFilepathsOnly: true}, nil, nil)
	group := newGroup(candidate(30, 0, "/m/a/a.mkv"), candidate(12, 0, "/m/a/b.mkv"), candidate(25, 0, "/m/a/c.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := te.deleter.deletedIDs()
	if len(got) != 2 || got[0] != 30 || got[1] != 25 {
		t.Fatalf("deleted = %v, want [30 25]", got)
	}
}

func TestAutomaticSkipListStillDeleted(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true, SkipList: []string{"/protected/"}}, nil, nil)
	group := newGroup(candidate(10, 5000, "/m/a/keep.mkv"), candidate(11, 3000, "/protected/drop.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := te.deleter.deletedIDs(); len(got) != 1 || got[0] != 11 {
		t.Fatalf("deleted = %v, want [11] despite skip list", got)
	}
}

func TestUnavailableCleanupDeletesMissing(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true, FindUnavailable: true}, nil, nil)
	missing := candidate(12, 0, "/m/a/gone.mkv")
	missing.Exists = false
	missing.Size = 0
	group := newGroup(candidate(10, 5000, "/m/a/good.mkv"), candidate(11, 3000, "/m/a/ok.mkv"), missing)

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := te.deleter.deletedIDs()
	if len(got) != 2 || got[0] != 12 || got[1] != 11 {
		t.Fatalf("deleted = %v, want [12 11]", got)
	}
	if len(group.Candidates) != 1 || group.Candidates[0].ID != 10 {
		t.Fatalf("remaining = %v", group.Candidates)
	}
}

func TestUnavailableCleanupTrustConflict(t *testing.T) {
	te := newTestEngine(t, Options{FindUnavailable: true, SkipFinalResolution: true}, nil, nil)
	suspicious := candidate(10, 0, "/m/a/still-there.mkv")
	suspicious.Exists = false
	suspicious.Size = 4096
	group := newGroup(suspicious, candidate(11, 0, "/m/a/fine.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(te.deleter.calls) != 0 {
		t.Fatalf("deleted = %v, want none (nonzero size contradicts unavailable)", te.deleter.deletedIDs())
	}
	if len(group.Candidates) != 2 {
		t.Fatalf("remaining = %d, want 2", len(group.Candidates))
	}
}

func TestUnavailableCleanupSkipList(t *testing.T) {
	te := newTestEngine(t, Options{FindUnavailable: true, SkipFinalResolution: true, SkipList: []string{"gone"}}, nil, nil)
	missing := candidate(10, 0, "/m/a/gone.mkv")
	missing.Exists = false
	missing.Size = 0
	group := newGroup(missing, candidate(11, 0, "/m/a/fine.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(te.deleter.calls) != 0 {
		t.Fatalf("deleted = %v, want none per skip list", te.deleter.deletedIDs())
	}
}

func extraTSCandidate(id int64, exts map[string]int, file string) *media.Candidate {
	c := candidate(id, 0, file)
	c.ExtCounts = exts
	return c
}

func TestExtraContainerCleanup(t *testing.T) {
	opts := Options{FindExtraContainers: true, ExtraContainerExt: ".ts", SkipFinalResolution: true}
	te := newTestEngine(t, opts, nil, nil)
	group := newGroup(
		extraTSCandidate(10, map[string]int{".mkv": 1}, "/m/a/good.mkv"),
		extraTSCandidate(11, map[string]int{".ts": 1}, "/m/a/extra.ts"),
	)

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := te.deleter.deletedIDs(); len(got) != 1 || got[0] != 11 {
		t.Fatalf("deleted = %v, want [11]", got)
	}
	if len(group.Candidates) != 1 {
		t.Fatalf("remaining = %d, want 1", len(group.Candidates))
	}
}

func TestExtraContainerCleanupNeedsAnotherFormat(t *testing.T) {
	opts := Options{FindExtraContainers: true, ExtraContainerExt: ".ts", SkipFinalResolution: true}
	te := newTestEngine(t, opts, nil, nil)
	group := newGroup(
		extraTSCandidate(10, map[string]int{".ts": 1}, "/m/a/a.ts"),
		extraTSCandidate(11, map[string]int{".ts": 1}, "/m/a/b.ts"),
	)

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(te.deleter.calls) != 0 {
		t.Fatalf("deleted = %v, want none when every copy is the reserved format", te.deleter.deletedIDs())
	}
}

func TestExtraContainerCleanupSparesMixedCopy(t *testing.T) {
	opts := Options{FindExtraContainers: true, ExtraContainerExt: ".ts", SkipFinalResolution: true}
	te := newTestEngine(t, opts, nil, nil)
	group := newGroup(
		extraTSCandidate(10, map[string]int{".mkv": 1}, "/m/a/good.mkv"),
		extraTSCandidate(11, map[string]int{".ts": 1, ".mkv": 1}, "/m/a/mixed.ts"),
	)

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(te.deleter.calls) != 0 {
		t.Fatalf("deleted = %v, want none for mixed-container copy", te.deleter.deletedIDs())
	}
}

func TestStageIsolation(t *testing.T) {
	te := newTestEngine(t, Options{SkipFinalResolution: true}, nil, nil)
	missing := candidate(12, 0, "/m/a/gone.mkv")
	missing.Exists = false
	group := newGroup(candidate(10, 5000, "/m/a/a.mkv"), candidate(11, 3000, "/m/a/b.mkv"), missing)

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(te.deleter.calls) != 0 {
		t.Fatalf("deleted = %v, want none with stages disabled", te.deleter.deletedIDs())
	}
	if len(group.Candidates) != 3 {
		t.Fatalf("remaining = %d, want 3 (candidate set unchanged)", len(group.Candidates))
	}
}

func TestDeletionFailureIsNonFatal(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true}, nil, nil)
	te.deleter.failIDs[11] = true
	group := newGroup(
		candidate(10, 5000, "/m/a/keep.mkv"),
		candidate(11, 3000, "/m/a/stuck.mkv"),
		candidate(12, 2000, "/m/a/drop.mkv"),
	)

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := te.deleter.deletedIDs(); len(got) != 2 {
		t.Fatalf("delete calls = %v, want both non-survivors attempted", got)
	}
	// The failed delete is not counted.
	if te.totals.Files() != 1 {
		t.Fatalf("totals files = %d, want 1", te.totals.Files())
	}
}

func TestDryRunCountsWithoutDeleting(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true, DryRun: true}, nil, nil)
	group := newGroup(candidate(10, 5000, "/m/a/keep.mkv"), candidate(11, 3000, "/m/a/drop.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(te.deleter.calls) != 0 {
		t.Fatalf("delete calls = %v, want none in dry run", te.deleter.deletedIDs())
	}
	if te.totals.Files() != 1 || te.totals.Bytes() != 1000 {
		t.Fatalf("totals = %d files / %d bytes, want 1 / 1000", te.totals.Files(), te.totals.Bytes())
	}
}

func TestInteractiveRankChoice(t *testing.T) {
	te := newTestEngine(t, Options{}, nil, fixedPrompter{choice: Choice{Kind: ChoiceRank, Rank: 2}})
	group := newGroup(candidate(10, 5000, "/m/a/top.mkv"), candidate(11, 3000, "/m/a/second.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Rank 2 is the lower-scored candidate, so the top-ranked one goes.
	if got := te.deleter.deletedIDs(); len(got) != 1 || got[0] != 10 {
		t.Fatalf("deleted = %v, want [10]", got)
	}
}

func TestInteractiveBestChoice(t *testing.T) {
	te := newTestEngine(t, Options{}, nil, fixedPrompter{choice: Choice{Kind: ChoiceBest}})
	group := newGroup(candidate(10, 3000, "/m/a/low.mkv"), candidate(11, 5000, "/m/a/high.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := te.deleter.deletedIDs(); len(got) != 1 || got[0] != 10 {
		t.Fatalf("deleted = %v, want [10] (best is 11)", got)
	}
}

func TestInteractiveSkipLeavesGroupUntouched(t *testing.T) {
	te := newTestEngine(t, Options{}, nil, fixedPrompter{choice: Choice{Kind: ChoiceInvalid}})
	group := newGroup(candidate(10, 5000, "/m/a/a.mkv"), candidate(11, 3000, "/m/a/b.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(te.deleter.calls) != 0 {
		t.Fatalf("deleted = %v, want none on invalid answer", te.deleter.deletedIDs())
	}
}

func TestInteractiveOverrideChoice(t *testing.T) {
	te := newTestEngine(t, Options{}, fixedOverrider{id: 11, ok: true}, fixedPrompter{choice: Choice{Kind: ChoiceOverride}})
	group := newGroup(candidate(10, 5000, "/m/a/high.mkv"), candidate(11, 100, "/m/a/preferred.mkv"))

	if err := te.engine.Resolve(context.Background(), group); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := te.deleter.deletedIDs(); len(got) != 1 || got[0] != 10 {
		t.Fatalf("deleted = %v, want [10]", got)
	}
}

func TestResolveCancelledContext(t *testing.T) {
	te := newTestEngine(t, Options{AutoDelete: true}, nil, nil)
	group := newGroup(candidate(10, 5000, "/m/a/a.mkv"), candidate(11, 3000, "/m/a/b.mkv"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := te.engine.Resolve(ctx, group); !errors.Is(err, context.Canceled) {
		t.Fatalf("Resolve err = %v, want context.Canceled", err)
	}
}

func TestRankCandidatesStable(t *testing.T) {
	a := candidate(20, 5000, "a")
	b := candidate(10, 5000, "b")
	c := candidate(30, 7000, "c")

	ranked := rankCandidates([]*media.Candidate{a, b, c}, false)
	if ranked[0] != c || ranked[1] != a || ranked[2] != b {
		t.Fatalf("score ranking = %v %v %v", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}

	byID := rankCandidates([]*media.Candidate{a, b, c}, true)
	if byID[0] != b || byID[1] != a || byID[2] != c {
		t.Fatalf("id ranking = %v %v %v", byID[0].ID, byID[1].ID, byID[2].ID)
	}
}
