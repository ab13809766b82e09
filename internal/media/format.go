package media

import (
	"fmt"
	"strconv"
)

type byteSuffix struct {
	suffix    string
	precision int
}

var byteSuffixes = []byteSuffix{
	{"bytes", 0},
	{"KB", 0},
	{"MB", 1},
	{"GB", 2},
	{"TB", 2},
	{"PB", 2},
}

// FormatBytes renders a byte count with automatic unit step-up at 1024:
// bytes and KB without decimals, MB with one, GB and above with two.
func FormatBytes(size int64) string {
	if size == 1 {
		return "1 byte"
	}

	num := float64(size)
	chosen := byteSuffixes[0]
	for _, entry := range byteSuffixes {
		chosen = entry
		if num < 1024.0 {
			break
		}
		if entry.suffix != byteSuffixes[len(byteSuffixes)-1].suffix {
			num /= 1024.0
		}
	}

	if chosen.precision == 0 {
		return strconv.FormatInt(int64(num), 10) + " " + chosen.suffix
	}
	return strconv.FormatFloat(num, 'f', chosen.precision, 64) + " " + chosen.suffix
}

// FormatDurationMillis renders a millisecond duration as HH:MM:SS.
// Durations of a day or more wrap, matching clock-style display.
func FormatDurationMillis(millis int64) string {
	seconds := (millis / 1000) % 60
	minutes := (millis / (1000 * 60)) % 60
	hours := (millis / (1000 * 60 * 60)) % 24
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatBitrate renders a kilobit-per-second rate as Kbps below 1024 and
// Mbps with two decimals above.
func FormatBitrate(kbps int) string {
	if kbps < 1024 {
		return fmt.Sprintf("%d Kbps", kbps)
	}
	return fmt.Sprintf("%.2f Mbps", float64(kbps)/1024.0)
}
