// Package email synthesizes structured, sanitized email drafts from
// free-form user text, with a fully local fallback path.
package email

import (
	"regexp"
	"strings"
)

// contractions maps common shorthand and typos to their formal spelling.
// Applied token-wise, case-insensitively, punctuation preserved.
var contractions = map[string]string{
	"im":     "I'm",
	"ive":    "I've",
	"id":     "I'd",
	"ill":    "I'll",
	"dont":   "don't",
	"cant":   "can't",
	"wont":   "won't",
	"didnt":  "didn't",
	"isnt":   "isn't",
	"wasnt":  "wasn't",
	"pls":    "please",
	"plz":    "please",
	"u":      "you",
	"ur":     "your",
	"thx":    "thanks",
	"ty":     "thank you",
	"tmrw":   "tomorrow",
	"tmr":    "tomorrow",
	"rly":    "really",
	"ppl":    "people",
	"gonna":  "going to",
	"wanna":  "want to",
	"lemme":  "let me",
	"abt":    "about",
	"b4":     "before",
	"w/":     "with",
	"asap":   "as soon as possible",
	"resced": "rescheduled",
}

// fillerPatterns remove casual hedging that has no place in a
// professional draft.
var fillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhatever( works)?\b[,.]?\s*`),
	regexp.MustCompile(`(?i)\bmaybe\b[,.]?\s*`),
	regexp.MustCompile(`(?i)\bi guess\b[,.]?\s*`),
	regexp.MustCompile(`(?i)\bi'?m down to\s*`),
	regexp.MustCompile(`(?i)\bkinda\b\s*`),
	regexp.MustCompile(`(?i)\bsorta\b\s*`),
	regexp.MustCompile(`(?i)\bor something\b[,.]?\s*`),
	regexp.MustCompile(`(?i)\bidk\b[,.]?\s*`),
	regexp.MustCompile(`(?i)\blol\b[,.]?\s*`),
	regexp.MustCompile(`(?i)\bhaha\b[,.]?\s*`),
}

// commandPrefix strips leading "send/write/draft/compose an email" style
// imperatives, including polite wrappers.
var commandPrefix = regexp.MustCompile(`(?i)^(please\s+)?(can|could|would)?\s*(you\s+)?(please\s+)?(send|write|draft|compose|shoot|e-?mail)\s*(me\s+)?((an?|the)\s+)?(quick\s+)?(e-?mail|message|note)?\s*((about|regarding|re:)\s+)?`)

// recipientPrefix strips a leading recipient phrase left over once the
// command verb is gone ("to sarah about...", "him for...").
var recipientPrefix = regexp.MustCompile(`(?i)^(to|for)?\s*(him|her|them|us|me|[a-z]+@[a-z0-9.\-]+\.[a-z]{2,})\b[,:]?\s*(about|regarding|re:|asking|saying|for)?\s*`)

var (
	wordSplit  = regexp.MustCompile(`[a-zA-Z0-9'/]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// FixTypos applies the contraction/typo table token-wise.
func FixTypos(text string) string {
	return wordSplit.ReplaceAllStringFunc(text, func(word string) string {
		if fixed, ok := contractions[strings.ToLower(word)]; ok {
			return fixed
		}
		return word
	})
}

// StripFiller removes casual hedging phrases.
func StripFiller(text string) string {
	for _, p := range fillerPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return text
}

// Normalize reduces raw user text to its substantive request: command
// verbs, recipient phrases, owner self-references, and filler are
// stripped, typos fixed, whitespace collapsed.
func (s *Synthesizer) Normalize(text string) string {
	out := strings.TrimSpace(text)
	out = FixTypos(out)
	out = commandPrefix.ReplaceAllString(out, "")
	out = recipientPrefix.ReplaceAllString(out, "")
	out = s.stripOwnerMentions(out)
	out = StripFiller(out)
	out = whitespace.ReplaceAllString(out, " ")
	out = strings.Trim(out, " ,.:;-")
	return out
}

// stripOwnerMentions removes whole-word references to the site owner's
// name so the request text does not address the owner in third person.
func (s *Synthesizer) stripOwnerMentions(text string) string {
	for _, p := range s.ownerPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return text
}
