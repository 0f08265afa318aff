package email

import (
	"regexp"
	"strings"
)

// Draft is a fully formed mail-compose result. To may be empty when no
// recipient could be resolved; the draft is still complete.
type Draft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Href    string `json:"href"`
}

// UpstreamDraft is the model-proposed draft parsed from an upstream
// JSON reply. Every field is treated as untrusted input.
type UpstreamDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Synthesizer turns vague user text (and optionally an upstream draft)
// into a sanitized, well-formed email draft. Synthesize never fails.
type Synthesizer struct {
	ownerName     string
	ownerEmail    string
	ownerPatterns []*regexp.Regexp
}

// NewSynthesizer creates a synthesizer for the given site owner. The
// owner's full name and each name token are matched as whole words for
// recipient resolution.
func NewSynthesizer(ownerName, ownerEmail string) *Synthesizer {
	s := &Synthesizer{
		ownerName:  ownerName,
		ownerEmail: ownerEmail,
	}

	tokens := []string{ownerName}
	tokens = append(tokens, strings.Fields(ownerName)...)
	seen := make(map[string]bool)
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[strings.ToLower(tok)] {
			continue
		}
		seen[strings.ToLower(tok)] = true
		s.ownerPatterns = append(s.ownerPatterns,
			regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(tok)+`\b[,.!]?\s*`))
	}
	return s
}

// Synthesize produces a complete draft from the raw user message and an
// optional upstream-proposed draft. Both paths converge on output that
// satisfies the same validation rules: subject within MaxSubjectLen,
// body within MaxBodyLen, href always a mailto URI.
func (s *Synthesizer) Synthesize(userText string, upstream *UpstreamDraft) Draft {
	normalized := s.Normalize(userText)
	sched := ExtractSchedule(userText)
	to := s.resolveRecipient(userText, upstream)

	var subject string
	if upstream != nil && SubjectOK(upstream.Subject) {
		subject = clampSubject(FixTypos(strings.TrimSpace(upstream.Subject)))
	} else {
		subject = deriveSubject(normalized, sched)
	}
	if subject == "" {
		subject = fallbackSubject
	}

	var body string
	if upstream != nil && BodyOK(upstream.Body, userText) {
		body = cleanBody(upstream.Body)
	} else {
		body = s.buildBody(normalized, to, sched)
	}

	return Draft{
		To:      to,
		Subject: subject,
		Body:    body,
		Href:    ComposeHref(to, subject, body),
	}
}

// resolveRecipient prefers an explicit address in the user text, then
// an upstream-proposed address, then the owner's published address when
// the text references the owner by name. A third-party address is never
// fabricated: with nothing to go on, the recipient stays empty.
func (s *Synthesizer) resolveRecipient(userText string, upstream *UpstreamDraft) string {
	if addr := addressPattern.FindString(userText); addr != "" {
		return addr
	}
	if upstream != nil {
		if addr := addressPattern.FindString(upstream.To); addr != "" {
			return addr
		}
	}
	if s.mentionsOwner(userText) {
		return s.ownerEmail
	}
	return ""
}

// mentionsOwner reports whether the text references the owner's full
// name or any name token as a whole word. A heuristic: partial-name
// collisions are accepted in exchange for never guessing a stranger's
// address.
func (s *Synthesizer) mentionsOwner(text string) bool {
	for _, p := range s.ownerPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
