// Package analysis talks to an OpenAI-compatible chat-completions endpoint
// to produce mood analyses of journal entries and the weekly letter text.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mindsoothe/backend/internal/config"
	domain "github.com/mindsoothe/backend/internal/domain/journal"
	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/pkg/logger"
)

// Result is the structured outcome of analyzing one entry.
type Result struct {
	Mood        domain.Mood `json:"mood"`
	Reflection  string      `json:"reflection"`
	Suggestions []string    `json:"suggestions"`
	ColorHint   string      `json:"colorHint"`
}

// Client produces entry analyses and letter text.
type Client interface {
	AnalyzeEntry(ctx context.Context, content string, kindFriend bool) (Result, error)
	GenerateLetter(ctx context.Context, entries []domain.Entry) (string, error)
}

const (
	standardPrompt = `You are a compassionate mental wellness companion analyzing a journal entry. Provide:
- mood: detected emotional state (happy, calm, neutral, sad, anxious, or stressed)
- reflection: An empathetic, supportive reflection (2-3 sentences)
- suggestions: 3 actionable self-care suggestions
- colorHint: A calming color that matches the mood (e.g., "soft blue", "warm amber", "gentle lavender")`

	kindFriendPrompt = `You are a wise, compassionate friend analyzing someone's journal entry from a third-person perspective. Provide:
- mood: detected emotional state (happy, calm, neutral, sad, anxious, or stressed)
- reflection: A caring reflection as if a kind friend is speaking about them (2-3 sentences). Use "they/them" pronouns and speak with warmth.
- suggestions: 3 actionable self-care suggestions
- colorHint: A calming color that matches the mood (e.g., "soft blue", "warm amber", "gentle lavender")`

	letterPrompt = `You are writing a compassionate letter from the user's future self, reflecting on their week of journaling. The letter should:
- Be warm, encouraging, and insightful
- Acknowledge their emotional journey
- Highlight growth and resilience
- Offer gentle wisdom
- Be 3-4 paragraphs
- Sign off as "Your Future Self" with a sparkle emoji`
)

// HTTPClient implements Client against a chat-completions API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *logger.Logger
}

// NewHTTPClient builds a client from configuration.
func NewHTTPClient(cfg config.AnalysisConfig, log *logger.Logger) *HTTPClient {
	if log == nil {
		log = logger.NewDefault("analysis")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
}

// analysisSchema forces the completion into the exact shape Result decodes.
const analysisSchema = `{
  "type": "json_schema",
  "json_schema": {
    "name": "journal_analysis",
    "strict": true,
    "schema": {
      "type": "object",
      "properties": {
        "mood": {"type": "string", "enum": ["happy", "calm", "neutral", "sad", "anxious", "stressed"]},
        "reflection": {"type": "string"},
        "suggestions": {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 3},
        "colorHint": {"type": "string"}
      },
      "required": ["mood", "reflection", "suggestions", "colorHint"],
      "additionalProperties": false
    }
  }
}`

// AnalyzeEntry asks the model for a mood read of one journal entry.
func (c *HTTPClient) AnalyzeEntry(ctx context.Context, content string, kindFriend bool) (Result, error) {
	if strings.TrimSpace(content) == "" {
		return Result{}, errors.InvalidInput("content is required")
	}

	prompt := standardPrompt
	if kindFriend {
		prompt = kindFriendPrompt
	}

	raw, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: content},
		},
		ResponseFormat: json.RawMessage(analysisSchema),
		Temperature:    0.7,
		MaxTokens:      500,
	})
	if err != nil {
		return Result{}, err
	}

	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, errors.AnalysisFailed(fmt.Errorf("decode analysis: %w", err))
	}
	res.Mood = res.Mood.Normalize()
	return res, nil
}

// GenerateLetter asks the model for a future-self letter over the week's
// entries. Callers guarantee entries is non-empty.
func (c *HTTPClient) GenerateLetter(ctx context.Context, entries []domain.Entry) (string, error) {
	moods := map[domain.Mood]int{}
	for _, e := range entries {
		moods[e.Mood]++
	}
	summary, _ := json.Marshal(moods)

	var digest strings.Builder
	for i, e := range entries {
		reflection := "No reflection"
		if e.Reflection != nil && *e.Reflection != "" {
			reflection = *e.Reflection
		}
		fmt.Fprintf(&digest, "Day %d: %s - %s\n", i+1, e.Mood, reflection)
	}

	userPrompt := fmt.Sprintf(`This week I journaled %d times. Here's my emotional journey:

Mood distribution: %s

%s
Write a letter from my future self reflecting on this week.`, len(entries), summary, digest.String())

	letter, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: letterPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.8,
		MaxTokens:   800,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(letter) == "" {
		return "", errors.AnalysisFailed(fmt.Errorf("empty completion"))
	}
	return letter, nil
}

// complete posts one chat-completion request and returns the first choice's
// message content.
func (c *HTTPClient) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.AnalysisFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errors.AnalysisFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.AnalysisFailed(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.AnalysisFailed(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WithField("status", resp.StatusCode).Warn("completion request rejected")
		return "", errors.AnalysisFailed(fmt.Errorf("completion status %d", resp.StatusCode))
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", errors.AnalysisFailed(fmt.Errorf("completion missing message content"))
	}
	return content.String(), nil
}
