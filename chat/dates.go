package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used everywhere a due date appears.
const DateLayout = "2006-01-02"

var (
	inDaysRe   = regexp.MustCompile(`^in (\d+) days?$`)
	inWeeksRe  = regexp.MustCompile(`^in (\d+) weeks?$`)
	weekdayRe  = regexp.MustCompile(`^(?:next )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`)
	weekdayIdx = map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
)

// absoluteLayouts are the calendar formats accepted by the direct-parse
// fallback. Parses resolving to years before 2001 are rejected so arbitrary
// text cannot masquerade as a date.
var absoluteLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ResolveDate converts a natural-language date phrase to a calendar day
// relative to now. The returned day is formatted as YYYY-MM-DD with no time
// component. ok is false when the phrase is not recognized.
func ResolveDate(phrase string, now time.Time) (date string, ok bool) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return "", false
	}

	switch p {
	case "today", "end of day", "eod":
		return formatDay(now), true
	case "tomorrow", "tmr", "tmrw":
		return formatDay(now.AddDate(0, 0, 1)), true
	case "next week":
		return formatDay(now.AddDate(0, 0, 7)), true
	case "next month":
		return formatDay(now.AddDate(0, 1, 0)), true
	}

	if m := inDaysRe.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", false
		}
		return formatDay(now.AddDate(0, 0, n)), true
	}
	if m := inWeeksRe.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", false
		}
		return formatDay(now.AddDate(0, 0, 7*n)), true
	}
	if m := weekdayRe.FindStringSubmatch(p); m != nil {
		target := weekdayIdx[m[1]]
		// Offset is always within [1,7]: naming today's weekday means the
		// next occurrence, a full week ahead.
		offset := (int(target) - int(now.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		return formatDay(now.AddDate(0, 0, offset)), true
	}

	for _, layout := range absoluteLayouts {
		parsed, err := time.Parse(layout, phraseForLayout(p, layout))
		if err != nil {
			continue
		}
		if parsed.Year() <= 2000 {
			continue
		}
		return parsed.Format(DateLayout), true
	}
	return "", false
}

// phraseForLayout title-cases month names so "march 5 2026" matches layouts
// written with capitalized months.
func phraseForLayout(p, layout string) string {
	if !strings.ContainsAny(layout, "J") {
		return p
	}
	words := strings.Fields(p)
	for i, w := range words {
		if len(w) > 2 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatDay(t time.Time) string {
	return t.Format(DateLayout)
}
