package export

import (
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MAILMUSE_BACK-END/internal/models"
)

func sampleCampaign() models.Campaign {
	return models.Campaign{
		ID:   uuid.New(),
		Name: "Launch Sequence",
		Emails: []models.Email{
			{Day: 0, Subject: "Welcome aboard", Preview: "Here's what happens next", Body: "Hi,\n\nThanks for joining.", Status: models.EmailStatusReady},
			{Day: 2, Subject: "A story about beans", Preview: "Why we roast weekly", Body: "Our roaster wakes at 5am.", Status: models.EmailStatusDraft},
			{Day: 5, Subject: "Last call, with a comma", Preview: "Offer ends \"soon\"", Body: "Use code LAUNCH.", Status: models.EmailStatusDraft},
		},
	}
}

func TestTextAndJSONExportsRoundTripSameEmailList(t *testing.T) {
	c := sampleCampaign()

	jsonData, err := ToJSON(c)
	require.NoError(t, err)
	doc, err := FromJSON(jsonData)
	require.NoError(t, err)

	// JSON round-trips the exact list
	assert.Equal(t, c.Name, doc.Name)
	assert.Equal(t, c.Emails, doc.Emails)

	// Text contains the same emails in the same order
	text := ToText(c)
	lastIdx := -1
	for i, e := range c.Emails {
		idx := strings.Index(text, e.Subject)
		require.GreaterOrEqual(t, idx, 0, "subject %d missing from text export", i)
		assert.Greater(t, idx, lastIdx, "email %d out of order in text export", i)
		lastIdx = idx
		assert.Contains(t, text, e.Body)
		assert.Contains(t, text, e.Preview)
		assert.Contains(t, text, fmt.Sprintf("Day %d", e.Day))
	}
}

func TestExportEmptyCampaign(t *testing.T) {
	c := models.Campaign{Name: "Empty"}

	jsonData, err := ToJSON(c)
	require.NoError(t, err)
	doc, err := FromJSON(jsonData)
	require.NoError(t, err)
	assert.NotNil(t, doc.Emails)
	assert.Empty(t, doc.Emails)

	text := ToText(c)
	assert.Contains(t, text, "Emails: 0")
}

func TestCSVExportHasHeaderAndQuotesProperly(t *testing.T) {
	c := sampleCampaign()

	data, err := ToCSV(c)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(c.Emails)+1)

	assert.Equal(t, []string{"position", "day", "subject", "preview", "body", "status"}, records[0])
	assert.Equal(t, "Last call, with a comma", records[3][2], "commas must survive CSV quoting")
	assert.Equal(t, `Offer ends "soon"`, records[3][3], "quotes must survive CSV quoting")
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "0", records[1][1])
}

func TestRenderDispatch(t *testing.T) {
	c := sampleCampaign()

	for _, tc := range []struct {
		format      string
		contentType string
	}{
		{FormatText, "text/plain; charset=utf-8"},
		{"", "text/plain; charset=utf-8"},
		{FormatJSON, "application/json"},
		{FormatCSV, "text/csv"},
	} {
		data, ct, err := Render(c, tc.format)
		require.NoError(t, err, "format %q", tc.format)
		assert.Equal(t, tc.contentType, ct)
		assert.NotEmpty(t, data)
	}

	_, _, err := Render(c, "xml")
	assert.Error(t, err)
}
