package utils

import (
	"fmt"
	"time"
)

// PKT is Pakistan Standard Time (UTC+5), used for operator-facing timestamps.
var PKT *time.Location

func init() {
	var err error
	PKT, err = time.LoadLocation("Asia/Karachi")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		PKT = time.FixedZone("PKT", 5*60*60)
	}
}

// NowPKT returns the current time in PKT.
func NowPKT() time.Time {
	return time.Now().In(PKT)
}

// FormatDateTimePKT formats a time.Time to "2006-01-02 15:04:05 PKT".
func FormatDateTimePKT(t time.Time) string {
	return t.In(PKT).Format("2006-01-02 15:04:05 PKT")
}

// FormatAge renders how long ago t was relative to now, e.g. "3m ago".
// A zero t renders as "never".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
