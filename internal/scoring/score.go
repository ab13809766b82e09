package scoring

import (
	"log/slog"
	"path"

	"dupefinder/internal/logging"
	"dupefinder/internal/media"
)

// Score computes the candidate's score from the weight tables. Contributions
// are accumulated as floats and truncated once at the end; intermediate
// values are never rounded. Passing a logger records each contribution at
// debug level; nil disables that.
func Score(c *media.Candidate, w Weights, logger *slog.Logger) int {
	if logger == nil {
		logger = logging.NewNop()
	}
	var score float64

	if points, ok := w.AudioCodec.Lookup(c.AudioCodec); ok {
		score += float64(points)
		logger.Debug("scored audio codec", logging.Int("points", points), logging.String("codec", c.AudioCodec))
	}
	if points, ok := w.VideoCodec.Lookup(c.VideoCodec); ok {
		score += float64(points)
		logger.Debug("scored video codec", logging.Int("points", points), logging.String("codec", c.VideoCodec))
	}
	if points, ok := w.VideoResolution.Lookup(c.Resolution); ok {
		score += float64(points)
		logger.Debug("scored resolution", logging.Int("points", points), logging.String("resolution", c.Resolution))
	}

	// Filename patterns accumulate: every pattern is tried against every
	// path's basename, and each match contributes.
	for _, pattern := range w.Filename {
		for _, file := range c.Files {
			if pattern.Match(path.Base(file)) {
				score += float64(pattern.Points)
				logger.Debug("scored filename pattern", logging.Int("points", pattern.Points), logging.String("pattern", pattern.Pattern))
			}
		}
	}

	if w.BitrateEnabled {
		score += float64(c.BitrateKbps) * w.BitrateMultiplier
	}
	score += float64(c.DurationMs) / 300
	score += float64(c.Width) * 2
	score += float64(c.Height) * w.HeightMultiplier
	if w.ScoreChannels {
		score += float64(c.Channels) * 1000
	}
	if w.ScoreFileSize {
		score += float64(c.Size) / 100000
	}

	return int(score)
}

// Apply scores every candidate in the group, setting Score exactly once.
func Apply(group *media.Group, w Weights, logger *slog.Logger) {
	for _, c := range group.Candidates {
		c.Score = Score(c, w, logger)
		c.Scored = true
	}
}
