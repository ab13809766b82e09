package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dupefinder/internal/config"
	"dupefinder/internal/decisions"
	"dupefinder/internal/dedupe"
	"dupefinder/internal/logging"
	"dupefinder/internal/media"
	"dupefinder/internal/scoring"
)

// Library is the query surface the runner needs from the media server.
type Library interface {
	SectionKind(ctx context.Context, sectionName string) (media.Kind, error)
	Duplicates(ctx context.Context, sectionName string) ([]media.Item, error)
	Reload(ctx context.Context, ratingKey string) (*media.Item, error)
}

// Runner drives one full scan: it walks the configured sections, collects
// and filters duplicate groups, then hands each group to the resolution
// engine. Sections and groups are processed strictly one at a time.
type Runner struct {
	cfg     *config.Config
	library Library
	engine  *dedupe.Engine
	journal *decisions.Journal
	totals  *dedupe.RunTotals
	logger  *slog.Logger
	runID   string

	lockPath string
	lock     *flock.Flock
}

// NewRunner builds a runner. journal may be nil; an empty runID gets a
// fresh one.
func NewRunner(cfg *config.Config, library Library, engine *dedupe.Engine, journal *decisions.Journal, totals *dedupe.RunTotals, runID string, logger *slog.Logger) *Runner {
	if runID == "" {
		runID = uuid.NewString()
	}
	lockPath := filepath.Join(cfg.Runtime.LogDir, "dupefinder.lock")
	return &Runner{
		cfg:      cfg,
		library:  library,
		engine:   engine,
		journal:  journal,
		totals:   totals,
		logger:   logging.NewComponentLogger(logger, "scan"),
		runID:    runID,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// RunID returns the identifier stamped on this run's journal entries.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes the scan. A section lookup failure aborts the whole run;
// everything scoped to one group is absorbed there. The deletion summary
// is always reported, including when the context is cancelled mid-run.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return err
	}
	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire scan lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another dupefinder instance holds %s", r.lockPath)
	}
	defer func() { _ = r.lock.Unlock() }()

	if r.journal != nil {
		if err := r.journal.BeginRun(ctx, r.runID, r.cfg.Runtime.DryRun); err != nil {
			r.logger.Warn("journal run start failed", logging.Error(err))
		}
	}
	defer r.reportTotals()

	r.logger.Info("scan started",
		logging.String(logging.FieldRunID, r.runID),
		logging.Bool("dry_run", r.cfg.Runtime.DryRun))

	groups, err := r.collect(ctx)
	if err != nil {
		return err
	}

	for _, group := range groups {
		if ctx.Err() != nil {
			r.logger.Warn("scan interrupted")
			return nil
		}
		if err := r.engine.Resolve(ctx, group); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				r.logger.Warn("scan interrupted")
				return nil
			}
			return err
		}
	}
	return nil
}

// collect queries every configured section and returns the duplicate
// groups that survive filtering, in section order.
func (r *Runner) collect(ctx context.Context) ([]*media.Group, error) {
	var queued []*media.Group
	for _, section := range r.cfg.Plex.Libraries {
		kind, err := r.library.SectionKind(ctx, section)
		if err != nil {
			return nil, fmt.Errorf("lookup section %q: %w", section, err)
		}
		items, err := r.library.Duplicates(ctx, section)
		if err != nil {
			return nil, fmt.Errorf("list duplicates for section %q: %w", section, err)
		}
		r.logger.Info("found duplicates",
			logging.String(logging.FieldSection, section),
			logging.String("kind", kind.Label()),
			logging.Int("count", len(items)))

		for _, item := range items {
			if group := r.prepare(ctx, item); group != nil {
				queued = append(queued, group)
			}
		}
	}
	return queued, nil
}

// prepare normalizes, filters, and scores one library item. It returns nil
// when fewer than two candidates remain, since a lone survivor needs no
// decision.
func (r *Runner) prepare(ctx context.Context, item media.Item) *media.Group {
	r.logger.Info("processing", logging.String(logging.FieldTitle, item.Title))

	if r.cfg.Runtime.FindUnavailable {
		item = r.recheckAvailability(ctx, item)
	}

	if r.cfg.Runtime.MatchFilepathsOnly && !identicalPaths(item) {
		return nil
	}

	group := media.NormalizeGroup(item)
	dedupe.Filter(group, r.cfg.Runtime.SkipVersionsFolder, r.logger)

	if len(group.Candidates) < 2 {
		r.logger.Info("no duplicates after filtering",
			logging.String(logging.FieldTitle, item.Title))
		return nil
	}

	if !r.cfg.Runtime.MatchFilepathsOnly {
		scoring.Apply(group, scoring.FromConfig(r.cfg), r.logger)
		for _, c := range group.Candidates {
			r.logger.Info("scored candidate",
				logging.Int64(logging.FieldMediaID, c.ID),
				logging.Int("score", c.Score),
				logging.String("file", c.ShortFile()))
		}
	}
	return group
}

// recheckAvailability asks the library to re-verify an item before any
// "unavailable" flag is trusted. A failed reload keeps the original item;
// the flag is then taken at face value.
func (r *Runner) recheckAvailability(ctx context.Context, item media.Item) media.Item {
	if allPartsExist(item) {
		r.logger.Debug("all media is available",
			logging.String(logging.FieldTitle, item.Title))
		return item
	}
	r.logger.Debug("reloading to confirm availability",
		logging.String(logging.FieldTitle, item.Title))
	reloaded, err := r.library.Reload(ctx, item.RatingKey)
	if err != nil {
		r.logger.Warn("reload failed, trusting reported availability",
			logging.String(logging.FieldTitle, item.Title),
			logging.Error(err))
		return item
	}
	return *reloaded
}

// reportTotals logs the run summary. It runs on every exit path so an
// interrupted run still reports what it deleted.
func (r *Runner) reportTotals() {
	r.logger.Info("total deleted files", logging.Int("count", r.totals.Files()))
	r.logger.Info("total deleted size",
		logging.String("size", fmt.Sprintf("%.2f GB", r.totals.Gigabytes())))
	if r.journal != nil {
		if err := r.journal.FinishRun(context.Background(), r.runID, r.totals.Files(), r.totals.Bytes()); err != nil {
			r.logger.Warn("journal run finish failed", logging.Error(err))
		}
	}
}

func allPartsExist(item media.Item) bool {
	for _, rec := range item.Records {
		for _, part := range rec.Parts {
			if !part.Exists {
				return false
			}
		}
	}
	return true
}

// identicalPaths reports whether every file backing the item resolves to
// the same path. Used by file-path-only matching, where only literal
// same-path duplicates qualify.
func identicalPaths(item media.Item) bool {
	first := ""
	for _, rec := range item.Records {
		for _, part := range rec.Parts {
			if first == "" {
				first = part.File
				continue
			}
			if part.File != first {
				return false
			}
		}
	}
	return true
}
