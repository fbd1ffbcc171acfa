package util

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
)

// TruncateString cuts a string to fit within maxWidth visual width
func TruncateString(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to exactly width columns, truncating if it is wider
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}

// FormatDuration renders a duration compactly with millisecond precision, e.g. "1.5s" or "2m03.250s"
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Millisecond)
	if d < time.Minute {
		return fmt.Sprintf("%gs", d.Seconds())
	}
	minutes := int(d / time.Minute)
	rest := d - time.Duration(minutes)*time.Minute
	return fmt.Sprintf("%dm%06.3fs", minutes, rest.Seconds())
}

// FormatBitrate renders a bitrate in kbps, or "-" when it is not known
func FormatBitrate(bps int64) string {
	if bps < 0 {
		return "-"
	}
	return fmt.Sprintf("%d kbps", bps/1000)
}
