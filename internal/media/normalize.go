package media

import (
	"path"
	"strings"
)

const unknown = "Unknown"

// Normalize converts a raw record into a candidate. Missing technical
// attributes are non-fatal: string fields fall back to "Unknown" and numeric
// fields to zero. Multi-part records are merged in record order: paths
// appended, sizes summed, extension counts accumulated.
func Normalize(item Item, rec Record) *Candidate {
	c := &Candidate{
		ID:          rec.ID,
		ItemKey:     item.Key,
		Kind:        item.Kind,
		VideoCodec:  fallbackString(rec.VideoCodec),
		AudioCodec:  fallbackString(rec.AudioCodec),
		Resolution:  fallbackString(rec.VideoResolution),
		BitrateKbps: rec.BitrateKbps,
		Width:       rec.Width,
		Height:      rec.Height,
		DurationMs:  rec.DurationMs,
		ExtCounts:   make(map[string]int),
		Exists:      true,
		Multipart:   len(rec.Parts) > 1,
		Optimized:   rec.Optimized,
		TMDBID:      item.TMDBID,
		TVDBID:      item.TVDBID,
	}

	for _, channels := range rec.StreamChannels {
		c.Channels += channels
	}
	if c.Channels == 0 {
		c.Channels = rec.AudioChannels
	}

	for _, part := range rec.Parts {
		c.Files = append(c.Files, part.File)
		c.ShortFiles = append(c.ShortFiles, ShortPath(part.File))
		c.Size += part.Size
		if !part.Exists {
			c.Exists = false
		}
		if ext := strings.ToLower(path.Ext(part.File)); ext != "" {
			c.ExtCounts[ext]++
		}
	}

	return c
}

// NormalizeGroup converts a library item into a duplicate group with one
// candidate per stored copy.
func NormalizeGroup(item Item) *Group {
	group := &Group{Title: item.Title, Kind: item.Kind}
	for _, rec := range item.Records {
		group.Candidates = append(group.Candidates, Normalize(item, rec))
	}
	return group
}

func fallbackString(value string) string {
	if strings.TrimSpace(value) == "" {
		return unknown
	}
	return value
}

// ShortPath abbreviates a path to its last three segments for display and
// skip-list logging.
func ShortPath(file string) string {
	segments := strings.Split(strings.ReplaceAll(file, "\\", "/"), "/")
	kept := segments
	if len(segments) > 3 {
		kept = segments[len(segments)-3:]
	}
	joined := strings.Join(kept, "/")
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	return joined
}
