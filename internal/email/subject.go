package email

import (
	"regexp"
	"strings"
)

// MaxSubjectLen is the hard cap on synthesized subject length.
const MaxSubjectLen = 72

// fallbackSubject is used when nothing meaningful can be derived.
const fallbackSubject = "Quick Follow-Up"

var casualMarkers = regexp.MustCompile(`(?i)\b(hey|yo|lol|haha|whatever|idk|gonna|wanna|kinda|sorta|omg|sup)\b|!!|\.\.\.`)

var bareDayWords = map[string]bool{
	"today": true, "tonight": true, "tomorrow": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// subjectChecks is the ordered rule table an upstream-proposed subject
// must clear before it is accepted verbatim.
var subjectChecks = []struct {
	name string
	bad  func(s string) bool
}{
	{"empty", func(s string) bool { return strings.TrimSpace(s) == "" }},
	{"too long", func(s string) bool { return len(s) > MaxSubjectLen }},
	{"too few words", func(s string) bool { return len(strings.Fields(s)) < 2 }},
	{"too many words", func(s string) bool { return len(strings.Fields(s)) > 10 }},
	{"bare day word", func(s string) bool { return bareDayWords[strings.ToLower(strings.TrimSpace(s))] }},
	{"casual marker", func(s string) bool { return casualMarkers.MatchString(s) }},
	{"lowercase start", func(s string) bool {
		t := strings.TrimSpace(s)
		return t != "" && t[0] >= 'a' && t[0] <= 'z'
	}},
	{"question marks", func(s string) bool { return strings.Contains(s, "?") }},
}

// SubjectOK reports whether a subject clears every quality check.
// Synthesized subjects are constructed to pass this themselves.
func SubjectOK(s string) bool {
	for _, check := range subjectChecks {
		if check.bad(s) {
			return false
		}
	}
	return true
}

// subjectTopics maps topic keywords to subject templates, in match
// priority order.
var subjectTopics = []struct {
	keyword string
	base    string
}{
	{"coffee", "Coffee Chat"},
	{"lunch", "Lunch Chat"},
	{"interview", "Interview Request"},
	{"meeting", "Meeting Request"},
	{"meet", "Meeting Request"},
	{"call", "Call"},
	{"chat", "Quick Chat"},
}

// subjectStopwords are skipped when compacting free text into a subject.
var subjectStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "for": true, "of": true,
	"and": true, "or": true, "about": true, "on": true, "at": true, "in": true,
	"my": true, "our": true, "your": true, "is": true, "are": true, "i": true,
	"you": true, "we": true, "that": true, "this": true, "it": true,
	"with": true, "would": true, "love": true, "like": true, "really": true,
	"just": true, "please": true, "can": true, "could": true, "want": true,
	"hey": true, "so": true, "him": true, "her": true, "them": true,
	"me": true, "i'm": true, "i'd": true,
}

var nonWord = regexp.MustCompile(`[^a-zA-Z0-9'-]+`)

// deriveSubject builds a deterministic subject from the normalized
// request text and the extracted schedule. Always title-cased, always
// within MaxSubjectLen, never empty.
func deriveSubject(normalized string, sched *ScheduleParts) string {
	lower := strings.ToLower(normalized)

	label := ""
	if sched != nil {
		label = sched.Label()
	}

	for _, topic := range subjectTopics {
		if strings.Contains(lower, topic.keyword) {
			subject := topic.base
			if label != "" {
				subject += " - " + label
			} else if len(strings.Fields(subject)) < 2 {
				subject += " Request"
			}
			return clampSubject(subject)
		}
	}

	// No known topic: compact the first meaningful words.
	var words []string
	for _, raw := range strings.Fields(lower) {
		word := nonWord.ReplaceAllString(raw, "")
		if word == "" || subjectStopwords[word] {
			continue
		}
		words = append(words, strings.ToUpper(word[:1])+word[1:])
		if len(words) == 8 {
			break
		}
	}
	if len(words) < 2 {
		return fallbackSubject
	}
	return clampSubject(strings.Join(words, " "))
}

// clampSubject trims to the length cap on a word boundary.
func clampSubject(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= MaxSubjectLen {
		return s
	}
	cut := s[:MaxSubjectLen]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	cut = strings.Trim(cut, " -,")
	if len(strings.Fields(cut)) < 2 {
		return fallbackSubject
	}
	return cut
}
