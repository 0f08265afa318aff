package email

import (
	"net/url"
	"strings"
)

// mailtoEscaper covers the characters query escaping leaves alone but
// mail clients require escaped.
var mailtoEscaper = strings.NewReplacer(
	"+", "%20",
	"!", "%21",
	"'", "%27",
	"(", "%28",
	")", "%29",
	"*", "%2A",
)

// encodeComponent percent-encodes a mailto query component.
func encodeComponent(s string) string {
	return mailtoEscaper.Replace(url.QueryEscape(s))
}

// crlf normalizes line endings to CRLF as mail bodies require.
func crlf(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

// ComposeHref builds the mailto URI for a draft. The recipient may be
// empty; clients then prompt for one.
func ComposeHref(to, subject, body string) string {
	return "mailto:" + to +
		"?subject=" + encodeComponent(subject) +
		"&body=" + encodeComponent(crlf(body))
}
