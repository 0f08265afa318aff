package email

import (
	"regexp"
	"strings"
)

// MaxBodyLen is the hard cap on synthesized body length.
const MaxBodyLen = 2000

var (
	greetingPattern    = regexp.MustCompile(`(?i)^(hi|hello|dear|good (morning|afternoon|evening))\b`)
	firstPersonPattern = regexp.MustCompile(`(?i)\b(i|i'm|i'd|i'll|i've|my|we|our)\b`)
	closingPattern     = regexp.MustCompile(`(?i)\b(best regards|kind regards|warm regards|regards|sincerely|best wishes|thank you|thanks)\b`)
	thirdPersonPattern = regexp.MustCompile(`(?i)\b(him|her|them)\b`)
	secondPersonRef    = regexp.MustCompile(`(?i)\byou\b`)
)

// bodyChecks is the ordered rule table an upstream-proposed body must
// clear. userText is the raw user message, consulted for the
// pronoun-consistency rule.
var bodyChecks = []struct {
	name string
	bad  func(body, userText string) bool
}{
	{"empty", func(body, _ string) bool { return strings.TrimSpace(body) == "" }},
	{"too long", func(body, _ string) bool { return len(body) > MaxBodyLen }},
	{"no greeting", func(body, _ string) bool { return !greetingPattern.MatchString(strings.TrimSpace(body)) }},
	{"no first person", func(body, _ string) bool { return !firstPersonPattern.MatchString(body) }},
	{"no formal closing", func(body, _ string) bool { return !closingPattern.MatchString(body) }},
	{"no paragraph spacing", func(body, _ string) bool {
		return !strings.Contains(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n")
	}},
	{"casual", func(body, _ string) bool { return casualMarkers.MatchString(body) }},
	// A recipient the user addressed as "you" must not become
	// "him/her/them" in the draft.
	{"pronoun mismatch", func(body, userText string) bool {
		return secondPersonRef.MatchString(userText) && thirdPersonPattern.MatchString(body)
	}},
}

// BodyOK reports whether an upstream body clears every formality check.
func BodyOK(body, userText string) bool {
	for _, check := range bodyChecks {
		if check.bad(body, userText) {
			return false
		}
	}
	return true
}

// cleanBody sanitizes an accepted upstream body: typo and filler
// cleanup, newline normalization, length cap.
func cleanBody(body string) string {
	out := strings.ReplaceAll(body, "\r\n", "\n")
	out = FixTypos(out)
	out = StripFiller(out)
	out = strings.TrimSpace(out)
	return clampBody(out)
}

// activityTopics maps request keywords to the activity named in the
// synthesized request sentence, in match priority order.
var activityTopics = []struct {
	keyword  string
	activity string
}{
	{"coffee", "coffee chat"},
	{"lunch", "lunch"},
	{"interview", "interview"},
	{"meeting", "meeting"},
	{"meet", "meeting"},
	{"call", "call"},
	{"chat", "chat"},
	{"talk", "chat"},
}

func detectActivity(normalized string) string {
	lower := strings.ToLower(normalized)
	for _, topic := range activityTopics {
		if strings.Contains(lower, topic.keyword) {
			return topic.activity
		}
	}
	return "conversation"
}

// buildBody synthesizes the deterministic template body:
// greeting, pleasantry, request, optional overnight clarification,
// next step, closing, signature placeholder.
func (s *Synthesizer) buildBody(normalized, recipient string, sched *ScheduleParts) string {
	activity := detectActivity(normalized)

	var request strings.Builder
	article := "a "
	if strings.HasPrefix(activity, "interview") {
		article = "an "
	}
	if strings.Contains(strings.ToLower(normalized), "reschedul") {
		request.WriteString("I would like to reschedule our " + activity)
	} else {
		request.WriteString("I would like to set up " + article + activity)
	}
	if sched != nil {
		if clause := sched.Clause(); clause != "" {
			request.WriteString(" " + clause)
		}
	}
	request.WriteString(".")

	var clarification string
	if sched != nil && sched.Time != nil && sched.Time.Overnight() {
		clarification = "I noticed that " + sched.Time.Clock() +
			" is an overnight time, so in case that was a typo, " +
			sched.AlternativeClause() + " would also work on my end."
	}

	paragraph := "I hope you're doing well. " + request.String()
	if clarification != "" {
		paragraph += " " + clarification
	}

	body := "Hi " + s.greetingName(recipient) + ",\n\n" +
		paragraph + "\n\n" +
		"Please let me know if that works for you, or feel free to suggest another time.\n\n" +
		"Best regards,\n[Your Name]"

	return clampBody(body)
}

// greetingName picks the salutation name for a resolved recipient,
// falling back to "there" rather than guessing.
func (s *Synthesizer) greetingName(recipient string) string {
	if recipient == "" {
		return "there"
	}
	if strings.EqualFold(recipient, s.ownerEmail) {
		if first := strings.Fields(s.ownerName); len(first) > 0 {
			return first[0]
		}
	}
	local := recipient
	if at := strings.Index(recipient, "@"); at > 0 {
		local = recipient[:at]
	}
	if sep := strings.IndexAny(local, ".-_"); sep > 0 {
		local = local[:sep]
	}
	if local == "" || !isAlpha(local) {
		return "there"
	}
	return strings.ToUpper(local[:1]) + strings.ToLower(local[1:])
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// clampBody trims to the length cap on a word boundary.
func clampBody(body string) string {
	if len(body) <= MaxBodyLen {
		return body
	}
	cut := body[:MaxBodyLen]
	if idx := strings.LastIndexAny(cut, " \n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
