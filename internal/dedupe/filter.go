package dedupe

import (
	"log/slog"
	"strings"

	"dupefinder/internal/logging"
	"dupefinder/internal/media"
)

// versionsFolder is the library-managed folder holding transcoded copies.
// Copies inside it are never real duplicates even when the optimized flag
// is missing.
const versionsFolder = "Plex Versions"

// Filter drops candidates that must never participate in comparison:
// library-generated optimized copies always, and copies stored under the
// versions folder when skipVersions is set. It returns the number of
// candidates removed.
func Filter(group *media.Group, skipVersions bool, logger *slog.Logger) int {
	kept := group.Candidates[:0]
	dropped := 0
	for _, c := range group.Candidates {
		switch {
		case c.Optimized:
			logger.Info("skipping optimized version",
				logging.Int64(logging.FieldMediaID, c.ID),
				logging.String("file", c.ShortFile()))
			dropped++
		case skipVersions && inVersionsFolder(c.Files):
			logger.Info("skipping versions folder copy",
				logging.Int64(logging.FieldMediaID, c.ID),
				logging.String("file", c.ShortFile()),
				logging.Bool("optimized", c.Optimized))
			dropped++
		default:
			kept = append(kept, c)
		}
	}
	group.Candidates = kept
	return dropped
}

func inVersionsFolder(files []string) bool {
	for _, file := range files {
		for _, segment := range strings.FieldsFunc(file, func(r rune) bool {
			return r == '/' || r == '\\'
		}) {
			if segment == versionsFolder {
				return true
			}
		}
	}
	return false
}

// matchesSkipList reports whether any path contains any configured
// skip-list entry. Matching is plain substring containment, not glob.
func matchesSkipList(files, skipList []string) bool {
	for _, file := range files {
		for _, entry := range skipList {
			if entry != "" && strings.Contains(file, entry) {
				return true
			}
		}
	}
	return false
}
