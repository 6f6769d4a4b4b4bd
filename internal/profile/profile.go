package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SchemaVersion is the current profile schema version. Version 1 payloads
// (and anything the language model improvises) are folded into this shape by
// Normalize.
const SchemaVersion = 2

// Brand describes the business voice and positioning
type Brand struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Voice           []string `json:"voice"`
	Tone            string   `json:"tone"`
	Values          []string `json:"values"`
	Differentiators []string `json:"differentiators"`
}

// Audience describes who the emails are written for
type Audience struct {
	Description    string   `json:"description"`
	Demographics   []string `json:"demographics"`
	Psychographics []string `json:"psychographics"`
	PainPoints     []string `json:"pain_points"`
	Desires        []string `json:"desires"`
}

// Offer describes the product or service being sold
type Offer struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Features    []string `json:"features"`
	ProofPoints []string `json:"proof_points"`
	Guarantee   string   `json:"guarantee"`
	CTA         string   `json:"cta"`
}

// Profile is the brand/audience/offer record used as generation context
type Profile struct {
	SchemaVersion int      `json:"schema_version"`
	Brand         Brand    `json:"brand"`
	Audience      Audience `json:"audience"`
	Offer         Offer    `json:"offer"`
}

// Empty returns a profile with every field set to its safe default
func Empty() Profile {
	return Profile{
		SchemaVersion: SchemaVersion,
		Brand: Brand{
			Voice:           []string{},
			Values:          []string{},
			Differentiators: []string{},
		},
		Audience: Audience{
			Demographics:   []string{},
			Psychographics: []string{},
			PainPoints:     []string{},
			Desires:        []string{},
		},
		Offer: Offer{
			Features:    []string{},
			ProofPoints: []string{},
		},
	}
}

// IsEmpty reports whether no meaningful field is populated
func (p Profile) IsEmpty() bool {
	return p.Brand.Name == "" && p.Brand.Description == "" && len(p.Brand.Voice) == 0 &&
		p.Audience.Description == "" && len(p.Audience.PainPoints) == 0 &&
		p.Offer.Name == "" && p.Offer.Description == ""
}

// ParseJSON unwraps optional markdown fences, parses the payload, and
// normalizes it. It fails only when the payload is not a JSON object at all;
// shape surprises inside the object are absorbed by Normalize.
func ParseJSON(data []byte) (Profile, error) {
	text := StripFences(string(data))

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Empty(), fmt.Errorf("profile payload is not a JSON object: %w", err)
	}
	return Normalize(raw), nil
}

// StripFences removes a surrounding markdown code fence, if present.
// Language models routinely wrap JSON in ```json ... ``` despite
// instructions not to.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string ("json", "JSON", ...) on the opening fence
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Normalize reconciles a loosely-typed payload into the strict v2 schema.
// It accepts v1 field aliases, scalar strings where v2 wants arrays, arrays
// where v2 wants scalars, and numbers for price. Missing or unusable fields
// default to empty string/array; unknown fields are dropped. Normalize never
// fails.
func Normalize(raw map[string]interface{}) Profile {
	p := Empty()
	if raw == nil {
		return p
	}

	// Some payloads nest everything under "profile" or "context"
	if inner := section(raw, "profile", "context", "business_profile"); inner != nil {
		raw = inner
	}

	brand := section(raw, "brand", "brand_profile", "brandProfile", "business")
	if brand == nil {
		brand = raw // v1 kept brand fields at the top level
	}
	p.Brand.Name = scalar(brand, "name", "brand_name", "brandName", "business_name")
	p.Brand.Description = scalar(brand, "description", "brand_description", "about", "summary")
	p.Brand.Voice = list(brand, "voice", "brand_voice", "brandVoice", "voice_attributes")
	p.Brand.Tone = scalar(brand, "tone", "tone_of_voice", "toneOfVoice")
	p.Brand.Values = list(brand, "values", "brand_values", "core_values")
	p.Brand.Differentiators = list(brand, "differentiators", "usp", "unique_selling_points", "uniqueSellingPoints")

	audience := section(raw, "audience", "target_audience", "targetAudience")
	if audience == nil {
		audience = map[string]interface{}{}
		// v1 stored the audience as a single string under target_audience
		if desc := scalar(raw, "target_audience", "targetAudience"); desc != "" {
			audience["description"] = desc
		}
	}
	p.Audience.Description = scalar(audience, "description", "summary", "who")
	p.Audience.Demographics = list(audience, "demographics")
	p.Audience.Psychographics = list(audience, "psychographics")
	p.Audience.PainPoints = list(audience, "pain_points", "painPoints", "pain points", "pains", "problems")
	p.Audience.Desires = list(audience, "desires", "goals", "aspirations", "wants")

	offer := section(raw, "offer", "offer_details", "offerDetails", "product")
	if offer == nil {
		offer = map[string]interface{}{}
		if desc := scalar(raw, "offer_details", "offerDetails", "offer"); desc != "" {
			offer["description"] = desc
		}
	}
	p.Offer.Name = scalar(offer, "name", "product_name", "productName")
	p.Offer.Description = scalar(offer, "description", "details", "summary")
	p.Offer.Price = scalar(offer, "price", "pricing", "price_point")
	p.Offer.Features = list(offer, "features", "benefits", "whats_included", "includes")
	p.Offer.ProofPoints = list(offer, "proof_points", "proofPoints", "proof points", "social_proof", "testimonials")
	p.Offer.Guarantee = scalar(offer, "guarantee", "refund_policy")
	p.Offer.CTA = scalar(offer, "cta", "call_to_action", "callToAction")

	return p
}

// section returns the first present map-valued field among keys
func section(m map[string]interface{}, keys ...string) map[string]interface{} {
	for _, k := range keys {
		if sub, ok := m[k].(map[string]interface{}); ok {
			return sub
		}
	}
	return nil
}

// scalar returns the first present field among keys coerced to a string.
// Arrays contribute their first usable element.
func scalar(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s := coerceString(v); s != "" {
			return s
		}
	}
	return ""
}

// list returns the first present field among keys coerced to a string slice.
// Scalar strings are wrapped into a one-element slice.
func list(m map[string]interface{}, keys ...string) []string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if out := coerceStringList(v); len(out) > 0 {
			return out
		}
	}
	return []string{}
}

func coerceString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []interface{}:
		for _, item := range val {
			// Nested arrays are not coerced further
			if _, isList := item.([]interface{}); isList {
				continue
			}
			if s := coerceString(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func coerceStringList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if _, isList := item.([]interface{}); isList {
				continue
			}
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		return []string{s}
	case float64:
		return []string{coerceString(val)}
	}
	return nil
}
