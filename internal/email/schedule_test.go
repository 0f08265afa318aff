package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSchedule(t *testing.T) {
	cases := []struct {
		text    string
		day     string
		hour    int
		minute  int
		merid   string
		hasTime bool
	}{
		{"lunch tomorrow at 3am", "Tomorrow", 3, 0, "am", true},
		{"call on Friday at 2pm", "Friday", 2, 0, "pm", true},
		{"meet next week at 11:30 am", "Next Week", 11, 30, "am", true},
		{"catch up tonight", "Tonight", 0, 0, "", false},
		{"free at 5 p.m.", "", 5, 0, "pm", true},
	}

	for _, tc := range cases {
		parts := ExtractSchedule(tc.text)
		require.NotNil(t, parts, "text %q", tc.text)
		assert.Equal(t, tc.day, parts.DayFormatted, "text %q", tc.text)
		if tc.hasTime {
			require.NotNil(t, parts.Time, "text %q", tc.text)
			assert.Equal(t, tc.hour, parts.Time.Hour)
			assert.Equal(t, tc.minute, parts.Time.Minute)
			assert.Equal(t, tc.merid, parts.Time.Meridiem)
		} else {
			assert.Nil(t, parts.Time, "text %q", tc.text)
		}
	}
}

func TestExtractScheduleNothing(t *testing.T) {
	assert.Nil(t, ExtractSchedule("tell me about your projects"))
	// 13pm is not a valid clock time; 70 minutes neither.
	assert.Nil(t, ExtractSchedule("at 13pm or 2:70pm"))
}

func TestClauseForms(t *testing.T) {
	weekday := ExtractSchedule("friday at 2pm")
	require.NotNil(t, weekday)
	assert.Equal(t, "on Friday at 2:00 PM", weekday.Clause())
	assert.Equal(t, "Friday at 2:00 PM", weekday.Label())

	relative := ExtractSchedule("tomorrow at 3am")
	require.NotNil(t, relative)
	assert.Equal(t, "tomorrow at 3:00 AM", relative.Clause())
	assert.Equal(t, "tomorrow at 3:00 PM", relative.AlternativeClause())
}

func TestOvernightFlag(t *testing.T) {
	overnight := []string{"12am", "1am", "3am", "5am"}
	for _, s := range overnight {
		parts := ExtractSchedule("tomorrow at " + s)
		require.NotNil(t, parts.Time, s)
		assert.True(t, parts.Time.Overnight(), s)
	}

	fine := []string{"6am", "11am", "12pm", "3pm"}
	for _, s := range fine {
		parts := ExtractSchedule("tomorrow at " + s)
		require.NotNil(t, parts.Time, s)
		assert.False(t, parts.Time.Overnight(), s)
	}
}
