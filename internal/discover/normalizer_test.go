package discover

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRaw_FullEvent(t *testing.T) {
	raw := RawEvent{
		Title:        "  GopherCon   EU 2026 ",
		ExternalURL:  "https://papercall.io/gophercon-eu-2026",
		SourceDomain: "papercall.io",
		Organizer:    "GopherCon EU",
		Location:     "Berlin, Germany",
		Description:  "<p>We want <b>your</b> talk!</p><script>alert(1)</script>",
		RawDeadline:  "CFP closes: March 3rd, 2026",
		RawEventDate: "June 15, 2026",
		RawFee:       "$1,000 - $2,500 honorarium",
		RawTopics:    []string{"Go", "go", " Cloud ", ""},
	}

	opp := FromRaw(raw)

	assert.Equal(t, "GopherCon EU 2026", opp.EventName)
	assert.Equal(t, "GopherCon EU", opp.OrganizerName)
	assert.Equal(t, "Berlin, Germany", opp.Location)
	assert.Equal(t, []string{"Go", "Cloud"}, opp.Topics)

	assert.Contains(t, opp.Description, "<b>your</b>")
	assert.NotContains(t, opp.Description, "script")

	require.NotNil(t, opp.Deadline)
	assert.Equal(t, time.Date(2026, 3, 3, 23, 59, 59, 0, time.UTC), *opp.Deadline)
	require.NotNil(t, opp.EventDate)
	assert.Equal(t, time.Date(2026, 6, 15, 23, 59, 59, 0, time.UTC), *opp.EventDate)

	assert.Equal(t, 1000.0, opp.FeeMin)
	assert.Equal(t, 2500.0, opp.FeeMax)
	assert.Equal(t, "USD", opp.Currency)
}

func TestFromRaw_MinimalEventDefaults(t *testing.T) {
	opp := FromRaw(RawEvent{
		Title:       "DevTalks",
		ExternalURL: "https://example.com/devtalks",
	})

	assert.Nil(t, opp.Deadline)
	assert.Nil(t, opp.EventDate)
	assert.Zero(t, opp.FeeMin)
	assert.Equal(t, "USD", opp.Currency)
}

func TestTruncateText(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := TruncateText(long, 50)
	assert.Len(t, got, 50)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short", TruncateText("short", 50))
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText("<div><h1>Title</h1>\n<p>Body   text</p></div>")
	assert.Equal(t, "Title Body text", got)
}
