package plex

import (
	"fmt"
	"strconv"
	"strings"

	"dupefinder/internal/media"
)

const (
	searchTypeMovie   = 1
	searchTypeEpisode = 4

	// Plex marks server-generated optimized versions with this proxy type.
	proxyTypeOptimized = 42
)

type mediaContainer struct {
	Directories []directory `xml:"Directory"`
	Videos      []video     `xml:"Video"`
}

type directory struct {
	Key   string `xml:"key,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type video struct {
	RatingKey        string      `xml:"ratingKey,attr"`
	Key              string      `xml:"key,attr"`
	Type             string      `xml:"type,attr"`
	Title            string      `xml:"title,attr"`
	GrandparentTitle string      `xml:"grandparentTitle,attr"`
	ParentIndex      int         `xml:"parentIndex,attr"`
	Index            int         `xml:"index,attr"`
	Guids            []guid      `xml:"Guid"`
	Media            []mediaElem `xml:"Media"`
}

type guid struct {
	ID string `xml:"id,attr"`
}

type mediaElem struct {
	ID              int64  `xml:"id,attr"`
	Bitrate         int    `xml:"bitrate,attr"`
	VideoCodec      string `xml:"videoCodec,attr"`
	AudioCodec      string `xml:"audioCodec,attr"`
	VideoResolution string `xml:"videoResolution,attr"`
	Width           int    `xml:"width,attr"`
	Height          int    `xml:"height,attr"`
	Duration        int64  `xml:"duration,attr"`
	AudioChannels   int    `xml:"audioChannels,attr"`
	ProxyType       int    `xml:"proxyType,attr"`
	Parts           []part `xml:"Part"`
}

type part struct {
	ID      int64    `xml:"id,attr"`
	File    string   `xml:"file,attr"`
	Size    int64    `xml:"size,attr"`
	Exists  *bool    `xml:"exists,attr"`
	Streams []stream `xml:"Stream"`
}

type stream struct {
	StreamType int `xml:"streamType,attr"`
	Channels   int `xml:"channels,attr"`
}

const audioStreamType = 2

func (v video) toItem() media.Item {
	item := media.Item{
		Title:     v.composeTitle(),
		Key:       v.Key,
		RatingKey: v.RatingKey,
		Kind:      kindOf(v.Type),
	}
	for _, g := range v.Guids {
		if id, ok := externalID(g.ID, "tmdb://"); ok {
			item.TMDBID = id
		}
		if id, ok := externalID(g.ID, "tvdb://"); ok {
			item.TVDBID = id
		}
	}
	for _, m := range v.Media {
		item.Records = append(item.Records, m.toRecord())
	}
	return item
}

func (v video) composeTitle() string {
	switch v.Type {
	case "episode":
		if v.Index > 0 && v.ParentIndex > 0 {
			return fmt.Sprintf("%s - %02dx%02d - %s", v.GrandparentTitle, v.ParentIndex, v.Index, v.Title)
		}
		// Plex occasionally reports episodes without an index.
		return fmt.Sprintf("%s - %s", v.GrandparentTitle, v.Title)
	case "movie":
		return v.Title
	default:
		return "Unknown"
	}
}

func (m mediaElem) toRecord() media.Record {
	rec := media.Record{
		ID:              m.ID,
		VideoCodec:      m.VideoCodec,
		AudioCodec:      m.AudioCodec,
		VideoResolution: m.VideoResolution,
		BitrateKbps:     m.Bitrate,
		Width:           m.Width,
		Height:          m.Height,
		DurationMs:      m.Duration,
		AudioChannels:   m.AudioChannels,
		Optimized:       m.ProxyType == proxyTypeOptimized,
	}
	for _, p := range m.Parts {
		exists := true
		if p.Exists != nil {
			exists = *p.Exists
		}
		rec.Parts = append(rec.Parts, media.Part{File: p.File, Size: p.Size, Exists: exists})
		for _, s := range p.Streams {
			if s.StreamType == audioStreamType && s.Channels > 0 {
				rec.StreamChannels = append(rec.StreamChannels, s.Channels)
			}
		}
	}
	return rec
}

func kindOf(sectionOrItemType string) media.Kind {
	switch sectionOrItemType {
	case "movie":
		return media.KindMovie
	case "show", "episode":
		return media.KindEpisode
	default:
		return media.KindUnknown
	}
}

func externalID(guidValue, scheme string) (int64, bool) {
	if !strings.HasPrefix(guidValue, scheme) {
		return 0, false
	}
	raw := strings.TrimPrefix(guidValue, scheme)
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		raw = raw[:idx]
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
