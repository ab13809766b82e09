package media

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind distinguishes the duplicate search mode for a library section.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
	KindUnknown Kind = "unknown"
)

var titleCaser = cases.Title(language.English)

// Label returns the display form of the kind ("Movie", "Episode").
func (k Kind) Label() string {
	return titleCaser.String(string(k))
}
