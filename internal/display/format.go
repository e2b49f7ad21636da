// Package display formats values for humans: the banner, byte sizes and
// clip/video lengths.
package display

import (
	"fmt"
	"math"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatSeconds renders a duration in seconds as "9s", "1m09s" or
// "1h02m03s". Fractions are rounded to the nearest whole second except below
// ten seconds, where one decimal is kept ("2.5s").
func FormatSeconds(sec float64) string {
	if sec < 0 {
		return "-" + FormatSeconds(-sec)
	}
	if sec < 10 && sec != math.Trunc(sec) {
		return fmt.Sprintf("%.1fs", sec)
	}
	total := int64(math.Round(sec))
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
