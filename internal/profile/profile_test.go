package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsDefaultsForPartialPayload(t *testing.T) {
	raw := map[string]interface{}{
		"brand": map[string]interface{}{
			"name": "Acme Coffee",
		},
	}

	p := Normalize(raw)

	assert.Equal(t, SchemaVersion, p.SchemaVersion)
	assert.Equal(t, "Acme Coffee", p.Brand.Name)
	assert.Equal(t, "", p.Brand.Tone)
	assert.NotNil(t, p.Brand.Voice)
	assert.Empty(t, p.Brand.Voice)
	assert.NotNil(t, p.Audience.PainPoints)
	assert.Empty(t, p.Audience.PainPoints)
	assert.NotNil(t, p.Offer.Features)
	assert.Equal(t, "", p.Offer.Price)
}

func TestNormalizeNilAndEmptyInput(t *testing.T) {
	assert.Equal(t, Empty(), Normalize(nil))
	assert.Equal(t, Empty(), Normalize(map[string]interface{}{}))
}

func TestNormalizeLegacyV1Aliases(t *testing.T) {
	raw := map[string]interface{}{
		"brand_name":      "Acme Coffee",
		"brand_voice":     "warm and direct",
		"target_audience": "remote workers who miss good espresso",
		"offer_details":   "monthly bean subscription",
	}

	p := Normalize(raw)

	assert.Equal(t, "Acme Coffee", p.Brand.Name)
	assert.Equal(t, []string{"warm and direct"}, p.Brand.Voice, "scalar voice should be wrapped")
	assert.Equal(t, "remote workers who miss good espresso", p.Audience.Description)
	assert.Equal(t, "monthly bean subscription", p.Offer.Description)
}

func TestNormalizeCoercesWrongTypes(t *testing.T) {
	raw := map[string]interface{}{
		"brand": map[string]interface{}{
			"tone":  []interface{}{"friendly", "expert"}, // array where scalar expected
			"voice": []interface{}{"bold", 42.0, nil},    // mixed array
		},
		"audience": map[string]interface{}{
			"painPoints": []interface{}{"no time", "decision fatigue"},
		},
		"offer": map[string]interface{}{
			"price": 49.0, // number where string expected
		},
	}

	p := Normalize(raw)

	assert.Equal(t, "friendly", p.Brand.Tone)
	assert.Equal(t, []string{"bold", "42"}, p.Brand.Voice)
	assert.Equal(t, []string{"no time", "decision fatigue"}, p.Audience.PainPoints)
	assert.Equal(t, "49", p.Offer.Price)
}

func TestNormalizeDropsUnknownFields(t *testing.T) {
	raw := map[string]interface{}{
		"brand": map[string]interface{}{
			"name":          "Acme",
			"hallucination": "should vanish",
		},
		"confidence": 0.93,
	}

	p := Normalize(raw)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hallucination")
	assert.NotContains(t, string(data), "confidence")
}

func TestNormalizeNestedUnderProfileKey(t *testing.T) {
	raw := map[string]interface{}{
		"profile": map[string]interface{}{
			"brand": map[string]interface{}{"name": "Nested Co"},
		},
	}

	p := Normalize(raw)
	assert.Equal(t, "Nested Co", p.Brand.Name)
}

func TestParseJSONStripsMarkdownFences(t *testing.T) {
	payload := "```json\n{\"brand\": {\"name\": \"Fenced\"}}\n```"

	p, err := ParseJSON([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "Fenced", p.Brand.Name)
}

func TestParseJSONRejectsNonObject(t *testing.T) {
	_, err := ParseJSON([]byte("I could not analyze this business."))
	assert.Error(t, err)

	_, err = ParseJSON([]byte(`["not", "an", "object"]`))
	assert.Error(t, err)
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without newline", "```{\"a\":1}```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestEmptyRoundTripsThroughJSON(t *testing.T) {
	data, err := json.Marshal(Empty())
	require.NoError(t, err)

	var back Profile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Empty().SchemaVersion, back.SchemaVersion)
	assert.True(t, back.IsEmpty())
}
