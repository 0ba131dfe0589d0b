package discovery

import (
	"strings"
	"time"
)

// urgentWindowDays bounds how far out a deadline still counts as urgent in
// the run summary notification.
const urgentWindowDays = 30

var deadlineLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// parseDeadlineDate interprets an extracted deadline string as a calendar
// date. Free-text deadlines that match no known layout report false.
func parseDeadlineDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func daysUntil(deadline, now time.Time) int {
	return int(deadline.Sub(now).Hours() / 24)
}
