package decisions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dupefinder/internal/config"
	"dupefinder/internal/logging"
	"dupefinder/internal/media"
)

// Action labels one side of a resolution outcome.
type Action string

const (
	ActionKeep   Action = "keep"
	ActionRemove Action = "remove"
)

// Decision is one immutable keep/remove record.
type Decision struct {
	RunID      string
	RecordedAt time.Time
	Title      string
	Action     Action
	MediaID    int64
	Score      int
	Scored     bool
	File       string
	SizeBytes  int64
}

// Recorder appends decisions to the plain-text decision log and, when a
// journal is attached, to the SQLite journal. The group title header is
// written lazily: at most once per Title call, and only when a decision
// follows it.
type Recorder struct {
	mu      sync.Mutex
	out     io.Writer
	journal *Journal
	runID   string
	logger  *slog.Logger

	title       string
	titleOnFile bool
}

// NewRecorder opens (or creates) decisions.log under the configured log
// directory and returns a recorder appending to it.
func NewRecorder(cfg *config.Config, journal *Journal, runID string, logger *slog.Logger) (*Recorder, func() error, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := filepath.Join(cfg.Runtime.LogDir, "decisions.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open decision log %q: %w", path, err)
	}
	rec := NewRecorderWith(file, journal, runID, logger)
	return rec, file.Close, nil
}

// NewRecorderWith builds a recorder over an explicit writer, for tests.
func NewRecorderWith(out io.Writer, journal *Journal, runID string, logger *slog.Logger) *Recorder {
	return &Recorder{
		out:     out,
		journal: journal,
		runID:   runID,
		logger:  logging.NewComponentLogger(logger, "decisions"),
	}
}

// Title arms the lazy group header. The header line is written when the
// next Keep or Remove lands; calling Title again re-arms it so each
// resolution stage can open its own section.
func (r *Recorder) Title(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title = title
	r.titleOnFile = false
}

// Keep records that a candidate survived resolution.
func (r *Recorder) Keep(ctx context.Context, c *media.Candidate) {
	r.record(ctx, ActionKeep, c)
}

// Remove records that a candidate was deleted (or would be, in dry-run).
func (r *Recorder) Remove(ctx context.Context, c *media.Candidate) {
	r.record(ctx, ActionRemove, c)
}

func (r *Recorder) record(ctx context.Context, action Action, c *media.Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lines strings.Builder
	if !r.titleOnFile && r.title != "" {
		fmt.Fprintf(&lines, "\nTitle    : %s\n", r.title)
		r.titleOnFile = true
	}
	verb := "Keeping"
	if action == ActionRemove {
		verb = "Removing"
	}
	fmt.Fprintf(&lines, "\t%s (%d): id=%d file=%q size=%s\n",
		verb, c.Score, c.ID, c.ShortFile(), media.FormatBytes(c.Size))

	if _, err := io.WriteString(r.out, lines.String()); err != nil {
		r.logger.Warn("decision log write failed", logging.Error(err))
	}

	if r.journal != nil {
		err := r.journal.Record(ctx, r.runID, Decision{
			Title:     r.title,
			Action:    action,
			MediaID:   c.ID,
			Score:     c.Score,
			Scored:    c.Scored,
			File:      c.ShortFile(),
			SizeBytes: c.Size,
		})
		if err != nil {
			r.logger.Warn("decision journal write failed", logging.Error(err))
		}
	}
}
