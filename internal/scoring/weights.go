package scoring

import (
	"path"
	"strings"

	"dupefinder/internal/config"
)

// Weight maps a codec or resolution name to a score contribution.
type Weight struct {
	Name   string
	Points int
}

// WeightTable is an ordered lookup table. Lookup walks entries in order and
// stops at the first case-insensitive match, so duplicate names resolve to
// the earliest entry. Order is part of the contract.
type WeightTable []Weight

// Lookup returns the points for the first entry matching name, or 0.
func (t WeightTable) Lookup(name string) (int, bool) {
	for _, entry := range t {
		if strings.EqualFold(entry.Name, name) {
			return entry.Points, true
		}
	}
	return 0, false
}

// PatternWeight maps a glob pattern against file basenames to a score
// contribution.
type PatternWeight struct {
	Pattern string
	Points  int
}

// PatternTable holds filename pattern weights. Unlike WeightTable, every
// matching pattern contributes, once per matched path.
type PatternTable []PatternWeight

// Match reports whether the pattern matches the basename, ignoring case.
// Malformed patterns never match; config validation rejects them up front.
func (p PatternWeight) Match(basename string) bool {
	ok, err := path.Match(strings.ToLower(p.Pattern), strings.ToLower(basename))
	return err == nil && ok
}

// Weights bundles every input the scoring engine consults.
type Weights struct {
	AudioCodec      WeightTable
	VideoCodec      WeightTable
	VideoResolution WeightTable
	Filename        PatternTable

	BitrateEnabled    bool
	BitrateMultiplier float64
	HeightMultiplier  float64
	ScoreChannels     bool
	ScoreFileSize     bool
}

// FromConfig assembles the weight tables and toggles from configuration,
// preserving the file order of every table.
func FromConfig(cfg *config.Config) Weights {
	w := Weights{
		BitrateEnabled:    cfg.Scoring.VideoBitrate.Enabled,
		BitrateMultiplier: cfg.Scoring.VideoBitrate.Multiplier,
		HeightMultiplier:  cfg.Scoring.VideoHeightMultiplier,
		ScoreChannels:     cfg.Scoring.ScoreAudioChannels,
		ScoreFileSize:     cfg.Scoring.ScoreFileSize,
	}
	for _, entry := range cfg.Scores.AudioCodec {
		w.AudioCodec = append(w.AudioCodec, Weight{Name: entry.Name, Points: entry.Weight})
	}
	for _, entry := range cfg.Scores.VideoCodec {
		w.VideoCodec = append(w.VideoCodec, Weight{Name: entry.Name, Points: entry.Weight})
	}
	for _, entry := range cfg.Scores.VideoResolution {
		w.VideoResolution = append(w.VideoResolution, Weight{Name: entry.Name, Points: entry.Weight})
	}
	for _, entry := range cfg.Scores.Filename {
		w.Filename = append(w.Filename, PatternWeight{Pattern: entry.Pattern, Points: entry.Weight})
	}
	return w
}
