package discover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventDate_CommonFormats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2026-09-15", time.Date(2026, 9, 15, 23, 59, 59, 0, time.UTC)},
		{"September 15, 2026", time.Date(2026, 9, 15, 23, 59, 59, 0, time.UTC)},
		{"15 September 2026", time.Date(2026, 9, 15, 23, 59, 59, 0, time.UTC)},
		{"Sep 15, 2026", time.Date(2026, 9, 15, 23, 59, 59, 0, time.UTC)},
		{"2026-09-15T12:00:00Z", time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseEventDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, got.Equal(tc.want), "input %q: got %v want %v", tc.in, got, tc.want)
	}
}

func TestParseEventDate_StripsLabelsAndOrdinals(t *testing.T) {
	got, err := parseEventDate("CFP closes: March 3rd, 2026")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 3, 23, 59, 59, 0, time.UTC), got)

	got, err = parseEventDate("Deadline: 21st March 2026")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 21, 23, 59, 59, 0, time.UTC), got)
}

func TestParseEventDate_Unparseable(t *testing.T) {
	_, err := parseEventDate("rolling submissions")
	assert.Error(t, err)

	_, err = parseEventDate("")
	assert.Error(t, err)
}
