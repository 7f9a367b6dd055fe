package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var isoDurationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// FormatDuration converts an ISO 8601 duration (PT1H2M3S) to a clock string
// (1:02:03, or 4:13 when under an hour)
func FormatDuration(isoDuration string) string {
	if isoDuration == "" {
		return ""
	}
	match := isoDurationPattern.FindStringSubmatch(isoDuration)
	if match == nil {
		return ""
	}

	hours, _ := strconv.Atoi(zeroIfEmpty(match[1]))
	minutes, _ := strconv.Atoi(zeroIfEmpty(match[2]))
	seconds, _ := strconv.Atoi(zeroIfEmpty(match[3]))

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatViewCount renders a raw view count ("1234567") as "1.2M views"
func FormatViewCount(count string) string {
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return "0 views"
	}
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB views", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM views", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK views", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d views", n)
	}
}

// FormatTimeAgo renders a publish time relative to now ("3 days ago")
func FormatTimeAgo(published time.Time) string {
	diff := time.Since(published)

	days := int(diff.Hours() / 24)
	years := days / 365
	months := days / 30

	switch {
	case years > 0:
		return plural(years, "year")
	case months > 0:
		return plural(months, "month")
	case days > 0:
		return plural(days, "day")
	case int(diff.Hours()) > 0:
		return plural(int(diff.Hours()), "hour")
	case int(diff.Minutes()) > 0:
		return plural(int(diff.Minutes()), "minute")
	default:
		return "Just now"
	}
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
