package media

// Part is one physical file backing a copy (multi-part media has several).
type Part struct {
	File   string
	Size   int64
	Exists bool
}

// Record is the library-neutral raw form of one stored copy, as returned by
// the library client before normalization. Absent attributes stay at their
// zero value; Normalize substitutes documented fallbacks.
type Record struct {
	ID              int64
	VideoCodec      string
	AudioCodec      string
	VideoResolution string
	BitrateKbps     int
	Width           int
	Height          int
	DurationMs      int64
	// AudioChannels is the item-level channel count, used only when no
	// per-stream counts are available.
	AudioChannels int
	// StreamChannels lists the channel count of every audio stream across
	// all parts.
	StreamChannels []int
	Optimized      bool
	Parts          []Part
}

// Item is one library entry with all of its stored copies.
type Item struct {
	Title string
	// Key is the metadata path used to route deletions.
	Key string
	// RatingKey identifies the item for re-fetches.
	RatingKey string
	Kind      Kind
	TMDBID    int64
	TVDBID    int64
	// Records holds one entry per stored copy of the item.
	Records []Record
}

// Candidate is the canonical attribute set for one stored copy. All fields
// except Score are fixed at construction; Score is set exactly once by the
// scoring engine when scoring is active.
type Candidate struct {
	ID      int64
	ItemKey string
	Kind    Kind

	VideoCodec  string
	AudioCodec  string
	Resolution  string
	BitrateKbps int
	Width       int
	Height      int
	DurationMs  int64
	Channels    int

	Files      []string
	ShortFiles []string
	ExtCounts  map[string]int
	Size       int64
	Exists     bool
	Multipart  bool
	Optimized  bool

	TMDBID int64
	TVDBID int64

	Score  int
	Scored bool
}

// ShortFile returns the abbreviated form of the first path, for log lines.
func (c *Candidate) ShortFile() string {
	if len(c.ShortFiles) == 0 {
		return ""
	}
	return c.ShortFiles[0]
}

// Group is the set of candidates believed to represent the same title.
type Group struct {
	Title      string
	Kind       Kind
	Candidates []*Candidate
}

// Remove drops the candidate with the given id, preserving order.
func (g *Group) Remove(id int64) {
	kept := g.Candidates[:0]
	for _, c := range g.Candidates {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	g.Candidates = kept
}
