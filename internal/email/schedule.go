package email

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TimeParts is a clock time extracted from free text.
type TimeParts struct {
	Hour     int    // 1-12
	Minute   int    // 0-59
	Meridiem string // "am" or "pm"
}

// ScheduleParts is the day/time pair extracted from free text. Derived
// per draft, never stored.
type ScheduleParts struct {
	DayRaw       string
	DayFormatted string
	Time         *TimeParts
}

var dayPattern = regexp.MustCompile(`(?i)\b(today|tonight|tomorrow|monday|tuesday|wednesday|thursday|friday|saturday|sunday|next week|this week)\b`)

// timePattern matches H[:MM] am/pm with hour 1-12 and minute 0-59.
var timePattern = regexp.MustCompile(`(?i)\b(1[0-2]|[1-9])(?::([0-5][0-9]))?\s*(a\.?m\.?|p\.?m\.?)\b`)

// relativeDays take no "on" preposition in clause form.
var relativeDays = map[string]bool{
	"today":     true,
	"tonight":   true,
	"tomorrow":  true,
	"next week": true,
	"this week": true,
}

// ExtractSchedule recognizes a day token and a time token in text.
// Returns nil when neither is present.
func ExtractSchedule(text string) *ScheduleParts {
	var parts ScheduleParts

	if m := dayPattern.FindString(text); m != "" {
		parts.DayRaw = strings.ToLower(m)
		parts.DayFormatted = titleWords(parts.DayRaw)
	}

	if m := timePattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		meridiem := "am"
		if strings.HasPrefix(strings.ToLower(m[3]), "p") {
			meridiem = "pm"
		}
		parts.Time = &TimeParts{Hour: hour, Minute: minute, Meridiem: meridiem}
	}

	if parts.DayRaw == "" && parts.Time == nil {
		return nil
	}
	return &parts
}

// Clock renders the time as "3:00 PM".
func (t *TimeParts) Clock() string {
	return fmt.Sprintf("%d:%02d %s", t.Hour, t.Minute, strings.ToUpper(t.Meridiem))
}

// Overnight reports whether the time looks like a red-eye typo: an "am"
// hour of 12 through 5 rarely means what was typed.
func (t *TimeParts) Overnight() bool {
	return t.Meridiem == "am" && (t.Hour == 12 || t.Hour <= 5)
}

// PMAlternative renders the same clock position in the afternoon, used
// to offer a same-day alternative for overnight times.
func (t *TimeParts) PMAlternative() string {
	return fmt.Sprintf("%d:%02d PM", t.Hour, t.Minute)
}

// Label renders a human-readable schedule ("Friday at 2:00 PM").
func (p *ScheduleParts) Label() string {
	switch {
	case p.DayFormatted != "" && p.Time != nil:
		return p.DayFormatted + " at " + p.Time.Clock()
	case p.DayFormatted != "":
		return p.DayFormatted
	case p.Time != nil:
		return p.Time.Clock()
	}
	return ""
}

// Clause renders the schedule as a sentence fragment
// ("on Friday at 2:00 PM", "tomorrow at 3:00 AM").
func (p *ScheduleParts) Clause() string {
	switch {
	case p.DayRaw != "" && p.Time != nil:
		return p.dayClause() + " at " + p.Time.Clock()
	case p.DayRaw != "":
		return p.dayClause()
	case p.Time != nil:
		return "at " + p.Time.Clock()
	}
	return ""
}

// AlternativeClause renders the clause with the overnight time flipped
// to the afternoon ("tomorrow at 3:00 PM").
func (p *ScheduleParts) AlternativeClause() string {
	if p.Time == nil {
		return ""
	}
	if p.DayRaw != "" {
		return p.dayClause() + " at " + p.Time.PMAlternative()
	}
	return "at " + p.Time.PMAlternative()
}

func (p *ScheduleParts) dayClause() string {
	if relativeDays[p.DayRaw] {
		return p.DayRaw
	}
	return "on " + p.DayFormatted
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
