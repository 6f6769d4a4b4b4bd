package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/metrics"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
)

// Generator is the language-model surface the handlers depend on
type Generator interface {
	ExtractProfile(ctx context.Context, input, personalKey string) (profile.Profile, error)
	GenerateCampaign(ctx context.Context, p profile.Profile, name string, emailCount int, personalKey string) ([]models.Email, error)
}

// Client calls the Gemini API for extraction and generation
type Client struct {
	cfg    config.AIConfig
	shared *genai.Client // nil when no shared key is configured
}

// NewClient creates the shared AI client. A missing shared key is not an
// error; callers with a personal key can still generate.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	c := &Client{cfg: cfg}

	if cfg.APIKey != "" {
		shared, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		c.shared = shared
	}

	return c, nil
}

// ExtractProfile derives a structured brand/audience/offer profile from a
// free-form business description. The model's loose JSON is reconciled into
// the strict schema before returning.
func (c *Client) ExtractProfile(ctx context.Context, input, personalKey string) (profile.Profile, error) {
	prompt := extractionPrompt(input)

	text, err := c.generate(ctx, "extract", prompt, personalKey)
	if err != nil {
		return profile.Empty(), err
	}

	p, err := profile.ParseJSON([]byte(text))
	if err != nil {
		return profile.Empty(), fmt.Errorf("model returned unusable output: %w", err)
	}
	return p, nil
}

// GenerateCampaign produces an email sequence for the given profile.
// emailCount is clamped to 1..10 by the caller.
func (c *Client) GenerateCampaign(ctx context.Context, p profile.Profile, name string, emailCount int, personalKey string) ([]models.Email, error) {
	profileJSON, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	prompt := generationPrompt(string(profileJSON), name, emailCount)

	text, err := c.generate(ctx, "generate", prompt, personalKey)
	if err != nil {
		return nil, err
	}

	emails, err := ParseCampaignJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("model returned unusable output: %w", err)
	}
	return emails, nil
}

// generate runs one model call on the personal key when given, otherwise on
// the shared client.
func (c *Client) generate(ctx context.Context, operation, prompt, personalKey string) (string, error) {
	client := c.shared
	if personalKey != "" {
		personal, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: personalKey})
		if err != nil {
			return "", fmt.Errorf("failed to create AI client from personal key: %w", err)
		}
		client = personal
	}
	if client == nil {
		return "", fmt.Errorf("no AI API key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		metrics.RecordAICallLatency(operation, "error", time.Since(start))
		return "", fmt.Errorf("AI call failed: %w", err)
	}
	metrics.RecordAICallLatency(operation, "ok", time.Since(start))

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("AI returned an empty response")
	}
	return text, nil
}

func extractionPrompt(input string) string {
	return fmt.Sprintf(`You are a brand strategist. Read the business description below and return a JSON object with exactly this shape:

{"schema_version": 2,
 "brand": {"name": "", "description": "", "voice": [], "tone": "", "values": [], "differentiators": []},
 "audience": {"description": "", "demographics": [], "psychographics": [], "pain_points": [], "desires": []},
 "offer": {"name": "", "description": "", "price": "", "features": [], "proof_points": [], "guarantee": "", "cta": ""}}

Fill every field you can infer; leave fields you cannot infer as empty string or empty array. Return only JSON, no commentary.

Business description:
%s`, input)
}

func generationPrompt(profileJSON, name string, emailCount int) string {
	return fmt.Sprintf(`You are an email marketing copywriter. Using the business profile below, write a %d-email marketing sequence named %q. Return a JSON object with exactly this shape:

{"emails": [{"day": 0, "subject": "", "preview": "", "body": ""}]}

Rules: emails are ordered, "day" is the send-day offset from signup (first email day 0), "preview" is the inbox preview line, "body" is plain text with line breaks. Match the brand voice and speak to the audience pain points. Return only JSON, no commentary.

Business profile:
%s`, emailCount, name, profileJSON)
}
