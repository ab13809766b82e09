package dedupe

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"dupefinder/internal/config"
	"dupefinder/internal/decisions"
	"dupefinder/internal/logging"
	"dupefinder/internal/media"
)

// Deleter removes one stored copy from the library index.
type Deleter interface {
	Delete(ctx context.Context, itemKey string, mediaID int64) error
}

// Overrider resolves an external authority's preferred candidate for a
// group. A nil Overrider means no authority is configured.
type Overrider interface {
	Override(ctx context.Context, group *media.Group) (int64, bool)
}

// Options carries the runtime switches that shape resolution.
type Options struct {
	DryRun              bool
	AutoDelete          bool
	MatchFilepathsOnly  bool
	SkipFinalResolution bool
	FindUnavailable     bool
	FindExtraContainers bool
	// ExtraContainerExt is the redundant container extension removed in
	// the format-cleanup stage, lowercased with a leading dot.
	ExtraContainerExt string
	SkipList          []string
	DeleteSpacing     time.Duration
}

// OptionsFromConfig maps the runtime configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DryRun:              cfg.Runtime.DryRun,
		AutoDelete:          cfg.Runtime.AutoDelete,
		MatchFilepathsOnly:  cfg.Runtime.MatchFilepathsOnly,
		SkipFinalResolution: cfg.Runtime.SkipFinalResolution,
		FindUnavailable:     cfg.Runtime.FindUnavailable,
		FindExtraContainers: cfg.Runtime.FindExtraContainers,
		ExtraContainerExt:   cfg.Runtime.ExtraContainerExt,
		SkipList:            cfg.SkipList,
		DeleteSpacing:       time.Duration(cfg.Runtime.DeleteSpacingSeconds) * time.Second,
	}
}

// Engine resolves one duplicate group at a time through three ordered
// stages: availability cleanup, redundant-container cleanup, and final
// single-survivor selection. Deletions within a group stay ordered and are
// spaced by a rate limiter.
type Engine struct {
	opts      Options
	deleter   Deleter
	overrider Overrider
	prompter  Prompter
	recorder  *decisions.Recorder
	totals    *RunTotals
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewEngine builds a resolution engine. prompter may be nil when
// AutoDelete is set; overrider may be nil when no authority is enabled.
func NewEngine(opts Options, deleter Deleter, overrider Overrider, prompter Prompter, recorder *decisions.Recorder, totals *RunTotals, logger *slog.Logger) *Engine {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.DeleteSpacing > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.DeleteSpacing), 1)
	}
	return &Engine{
		opts:      opts,
		deleter:   deleter,
		overrider: overrider,
		prompter:  prompter,
		recorder:  recorder,
		totals:    totals,
		limiter:   limiter,
		logger:    logging.NewComponentLogger(logger, "dedupe"),
	}
}

// Resolve runs the three resolution stages over one group, in order. The
// only error it returns is context cancellation; everything local to a
// candidate is logged and absorbed.
func (e *Engine) Resolve(ctx context.Context, group *media.Group) error {
	if err := e.cleanupUnavailable(ctx, group); err != nil {
		return err
	}
	if err := e.cleanupExtraContainers(ctx, group); err != nil {
		return err
	}
	if e.opts.SkipFinalResolution {
		return nil
	}
	if len(group.Candidates) < 2 {
		return nil
	}
	if e.opts.AutoDelete {
		return e.resolveAutomatic(ctx, group)
	}
	return e.resolveInteractive(ctx, group)
}

// cleanupUnavailable deletes copies the library reports as missing from
// disk, unless their recorded size contradicts that or their path is
// skip-listed. Removed copies leave the group.
func (e *Engine) cleanupUnavailable(ctx context.Context, group *media.Group) error {
	if !e.opts.FindUnavailable {
		return nil
	}
	titleDecided := false
	for _, c := range snapshot(group) {
		if c.Exists {
			continue
		}
		if !titleDecided {
			titleDecided = true
			e.recorder.Title(group.Title)
		}
		if e.shouldSkipDeletion(c, "unavailable", true) {
			continue
		}
		e.logger.Info("removing unavailable media",
			logging.Int64(logging.FieldMediaID, c.ID),
			logging.String("file", c.ShortFile()),
			logging.Int64("size", c.Size))
		deleted, err := e.deleteCandidate(ctx, c)
		if err != nil {
			return err
		}
		if deleted {
			group.Remove(c.ID)
		}
	}
	return nil
}

// cleanupExtraContainers deletes copies stored solely in the redundant
// container format, but only when the group also holds at least one other
// format. A copy mixing extensions across its own parts is left alone.
func (e *Engine) cleanupExtraContainers(ctx context.Context, group *media.Group) error {
	if !e.opts.FindExtraContainers {
		return nil
	}
	ext := e.opts.ExtraContainerExt

	counts := make(map[string]int)
	for _, c := range group.Candidates {
		for k, v := range c.ExtCounts {
			counts[k] += v
		}
	}
	if len(counts) < 2 {
		return nil
	}
	if _, present := counts[ext]; !present {
		return nil
	}

	titleDecided := false
	for _, c := range snapshot(group) {
		if _, has := c.ExtCounts[ext]; !has {
			continue
		}
		if !titleDecided {
			titleDecided = true
			e.recorder.Title(group.Title)
		}
		if len(c.ExtCounts) != 1 {
			e.logger.Info("skipping mixed-container copy",
				logging.Int64(logging.FieldMediaID, c.ID),
				logging.String("file", c.ShortFile()))
			continue
		}
		if e.shouldSkipDeletion(c, "extra container", false) {
			continue
		}
		e.logger.Info("removing extra container media",
			logging.Int64(logging.FieldMediaID, c.ID),
			logging.String("file", c.ShortFile()))
		deleted, err := e.deleteCandidate(ctx, c)
		if err != nil {
			return err
		}
		if deleted {
			group.Remove(c.ID)
		}
	}
	return nil
}

// resolveAutomatic picks the survivor without a prompt and deletes every
// other candidate. The skip-list does not protect candidates here: a
// skip-listed path only changes the log label. This mirrors the reference
// behavior and is deliberate, asymmetric with the cleanup stages.
func (e *Engine) resolveAutomatic(ctx context.Context, group *media.Group) error {
	e.logger.Info("determining best media item to keep",
		logging.String(logging.FieldTitle, group.Title))

	survivor := e.pickSurvivor(ctx, group)
	if survivor == nil {
		e.logger.Warn("unable to determine best media item",
			logging.String(logging.FieldTitle, group.Title))
		return nil
	}

	e.recorder.Title(group.Title)
	for _, c := range group.Candidates {
		if c.ID == survivor.ID {
			e.recorder.Keep(ctx, c)
			e.logger.Info("keeping",
				logging.Int64(logging.FieldMediaID, c.ID),
				logging.Int("score", c.Score),
				logging.String("file", c.ShortFile()))
			continue
		}
		label := "removing"
		if matchesSkipList(c.Files, e.opts.SkipList) {
			label = "removing skip-listed"
		}
		e.logger.Info(label,
			logging.Int64(logging.FieldMediaID, c.ID),
			logging.Int("score", c.Score),
			logging.String("file", c.ShortFile()))
		if _, err := e.deleteCandidate(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// pickSurvivor returns the candidate retained in automatic mode, or nil
// when no candidate qualifies (the group is then left untouched).
func (e *Engine) pickSurvivor(ctx context.Context, group *media.Group) *media.Candidate {
	if e.opts.MatchFilepathsOnly {
		var lowest *media.Candidate
		for _, c := range group.Candidates {
			if lowest == nil || c.ID < lowest.ID {
				lowest = c
			}
		}
		return lowest
	}

	if e.overrider != nil {
		if id, ok := e.overrider.Override(ctx, group); ok {
			for _, c := range group.Candidates {
				if c.ID == id {
					e.logger.Info("auto-selected via authority override",
						logging.Int64(logging.FieldMediaID, c.ID),
						logging.String("file", c.ShortFile()))
					return c
				}
			}
		}
	}

	// Highest strictly positive score wins; ties keep the first seen. A
	// group where nothing scores above zero has no survivor.
	keepScore := 0
	var keep *media.Candidate
	for _, c := range group.Candidates {
		if c.Score > keepScore {
			keepScore = c.Score
			keep = c
		}
	}
	return keep
}

// resolveInteractive ranks the group, asks the operator, and deletes
// everything but the chosen candidate. Any skip or invalid answer leaves
// the group untouched.
func (e *Engine) resolveInteractive(ctx context.Context, group *media.Group) error {
	ranked := rankCandidates(group.Candidates, e.opts.MatchFilepathsOnly)

	var (
		overrideID  int64
		hasOverride bool
	)
	if e.overrider != nil {
		overrideID, hasOverride = e.overrider.Override(ctx, group)
	}

	choice := e.prompter.Choose(group, ranked, overrideID, hasOverride)

	var keepID int64
	switch choice.Kind {
	case ChoiceSkip:
		e.logger.Info("skipping deletions",
			logging.String(logging.FieldTitle, group.Title))
		return nil
	case ChoiceInvalid:
		e.logger.Info("unexpected response, skipping deletions",
			logging.String(logging.FieldTitle, group.Title))
		return nil
	case ChoiceBest:
		keepID = ranked[0].ID
	case ChoiceOverride:
		if !hasOverride {
			e.logger.Info("unexpected response, skipping deletions",
				logging.String(logging.FieldTitle, group.Title))
			return nil
		}
		keepID = overrideID
	case ChoiceRank:
		keepID = ranked[choice.Rank-1].ID
	}

	e.recorder.Title(group.Title)
	for _, c := range group.Candidates {
		if c.ID == keepID {
			e.recorder.Keep(ctx, c)
			e.logger.Info("keeping",
				logging.Int64(logging.FieldMediaID, c.ID),
				logging.Int("score", c.Score),
				logging.String("file", c.ShortFile()))
			continue
		}
		e.logger.Info("removing",
			logging.Int64(logging.FieldMediaID, c.ID),
			logging.Int("score", c.Score),
			logging.String("file", c.ShortFile()))
		if _, err := e.deleteCandidate(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// shouldSkipDeletion applies the deletion-time exemptions used by the two
// cleanup stages: a nonzero recorded size contradicting an unavailable
// flag (when checkSize is set), and skip-list path membership.
func (e *Engine) shouldSkipDeletion(c *media.Candidate, stage string, checkSize bool) bool {
	if checkSize && c.Size > 0 {
		e.logger.Info("skipping removal due to non-zero file size",
			logging.String(logging.FieldStage, stage),
			logging.Int64(logging.FieldMediaID, c.ID),
			logging.Int64("size", c.Size),
			logging.String("file", c.ShortFile()))
		return true
	}
	if matchesSkipList(c.Files, e.opts.SkipList) {
		e.logger.Info("skipping removal per skip list",
			logging.String(logging.FieldStage, stage),
			logging.Int64(logging.FieldMediaID, c.ID),
			logging.String("file", c.ShortFile()))
		return true
	}
	return false
}

// deleteCandidate performs (or simulates) one deletion, respecting the
// inter-call spacing. It reports whether the deletion counted; the only
// error returned is context cancellation. A failed delete is logged and
// absorbed so the rest of the group still gets processed.
func (e *Engine) deleteCandidate(ctx context.Context, c *media.Candidate) (bool, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}

	sizeStr := media.FormatBytes(c.Size)
	if e.opts.DryRun {
		e.totals.Add(c.Size)
		e.recorder.Remove(ctx, c)
		e.logger.Info("would delete media item (dry run)",
			logging.Int64(logging.FieldMediaID, c.ID),
			logging.String("file", c.ShortFile()),
			logging.String("size", sizeStr))
		return true, nil
	}

	if err := e.deleter.Delete(ctx, c.ItemKey, c.ID); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		e.logger.Warn("deletion failed",
			logging.Int64(logging.FieldMediaID, c.ID),
			logging.String("file", c.ShortFile()),
			logging.String("size", sizeStr),
			logging.Error(err))
		return false, nil
	}

	e.totals.Add(c.Size)
	e.recorder.Remove(ctx, c)
	e.logger.Info("successfully deleted",
		logging.Int64(logging.FieldMediaID, c.ID),
		logging.String("file", c.ShortFile()),
		logging.String("size", sizeStr))
	return true, nil
}

// rankCandidates orders candidates for display: by score descending, or by
// id ascending when duplicates are matched by file path alone. The sort is
// stable so equal scores keep their group order.
func rankCandidates(candidates []*media.Candidate, byID bool) []*media.Candidate {
	ranked := make([]*media.Candidate, len(candidates))
	copy(ranked, candidates)
	if byID {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].ID < ranked[j].ID })
	} else {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	}
	return ranked
}

// snapshot copies the candidate slice so a stage can delete from the group
// while iterating.
func snapshot(group *media.Group) []*media.Candidate {
	out := make([]*media.Candidate, len(group.Candidates))
	copy(out, group.Candidates)
	return out
}
