package dedupe

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dupefinder/internal/media"
)

var scorePrinter = message.NewPrinter(language.English)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// RenderGroupTable renders the candidate listing shown before the
// interactive prompt. Candidates arrive already ranked; the choice column
// counts from 1 in that order. The score column is omitted when scoring is
// inactive, and the authority-preferred candidate's id carries a marker.
func RenderGroupTable(ranked []*media.Candidate, overrideID int64, hasOverride, showScore bool) string {
	headers := []string{"choice", "score", "id", "file", "size", "duration", "bitrate", "resolution", "codecs"}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft}
	if !showScore {
		headers = append(headers[:1:1], headers[2:]...)
		aligns = append(aligns[:1:1], aligns[2:]...)
	}

	rows := make([][]string, 0, len(ranked))
	for pos, c := range ranked {
		row := []string{fmt.Sprintf("%d", pos+1)}
		if showScore {
			row = append(row, scorePrinter.Sprintf("%d", c.Score))
		}
		id := fmt.Sprintf("%d", c.ID)
		if hasOverride && c.ID == overrideID {
			id += " *"
		}
		row = append(row,
			id,
			strings.Join(c.ShortFiles, "\n"),
			media.FormatBytes(c.Size),
			media.FormatDurationMillis(c.DurationMs),
			media.FormatBitrate(c.BitrateKbps),
			fmt.Sprintf("%s (%d x %d)", c.Resolution, c.Width, c.Height),
			fmt.Sprintf("%s, %s x %d", c.VideoCodec, c.AudioCodec, c.Channels),
		)
		rows = append(rows, row)
	}

	return renderTable(headers, rows, aligns)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
