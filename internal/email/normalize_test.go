package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixTypos(t *testing.T) {
	assert.Equal(t, "I'm free, please tell you about your plan",
		FixTypos("im free, pls tell u about ur plan"))
	assert.Equal(t, "tomorrow as soon as possible", FixTypos("tmrw asap"))
	// Substrings of larger words are left alone.
	assert.Equal(t, "imagine pleasant urgent", FixTypos("imagine pleasant urgent"))
}

func TestNormalizeStripsCommandAndRecipient(t *testing.T) {
	s := newTestSynthesizer()

	cases := []struct{ in, want string }{
		{"can you email him for a lunch chat tomorrow", "a lunch chat tomorrow"},
		{"please draft an email to sarah@example.com about the offsite", "the offsite"},
		{"send a quick note about the invoice", "the invoice"},
		{"write me something about go", "something about go"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, s.Normalize(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeStripsOwnerAndFiller(t *testing.T) {
	s := newTestSynthesizer()

	got := s.Normalize("maybe ask Daniel Wern about the conference, whatever works, im flexible")
	assert.NotContains(t, got, "Daniel")
	assert.NotContains(t, got, "Wern")
	assert.NotContains(t, got, "maybe")
	assert.NotContains(t, got, "whatever")
	assert.Contains(t, got, "I'm flexible")
}
