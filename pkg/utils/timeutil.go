package utils

import (
	"fmt"
	"time"
)

// DateLayout is the YYYY-MM-DD layout used by provider date-range parameters.
const DateLayout = "2006-01-02"

// FormatDate formats t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// TimeAgo renders the distance between published and now in the dashboard's
// coarse style: "Just now", "N hours ago", "N days ago".
func TimeAgo(published, now time.Time) string {
	hours := int(now.Sub(published).Hours())
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return fmt.Sprintf("%d days ago", hours/24)
	}
}

// FormatDateTime formats t for display in the local zone.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05 MST")
}
