package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"retrace/internal/config"
	"retrace/internal/mistake"
)

const (
	jsonResponseType   = "json_object"
	defaultHTTPTimeout = 60 * time.Second
)

// ErrMalformedResponse reports a reply that could not be turned into a usable
// Analysis: unparseable JSON or missing required fields. Treated exactly like
// a transport failure by callers, since trusting it would store wrong
// classifications.
var ErrMalformedResponse = errors.New("malformed analyzer response")

// Client wraps the vision chat-completion API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base (useful for tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs an analyzer client from application config.
func NewClient(cfg config.Analyzer, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:      strings.TrimSpace(cfg.Model),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Analyze submits one mistake image and returns the structured result.
func (c *Client) Analyze(ctx context.Context, imageRef string) (mistake.Analysis, error) {
	var empty mistake.Analysis
	imageRef = strings.TrimSpace(imageRef)
	if imageRef == "" {
		return empty, errors.New("analyze: image reference required")
	}
	if c.apiKey == "" {
		return empty, errors.New("analyze: api key required")
	}

	endpoint, err := url.JoinPath(c.baseURL, "/chat/completions")
	if err != nil {
		return empty, fmt.Errorf("analyze: build url: %w", err)
	}

	request := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: userPrompt},
					{Type: "image_url", ImageURL: &imagePayload{URL: imageRef}},
				},
			},
		},
		Temperature:    0.2,
		MaxTokens:      2000,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return empty, fmt.Errorf("analyze: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, fmt.Errorf("analyze: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("analyze: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("analyze: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("analyze: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return empty, fmt.Errorf("analyze: decode response: %w", err)
	}
	if completion.Error != nil {
		return empty, fmt.Errorf("analyze: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return empty, fmt.Errorf("analyze: %w: empty choices", ErrMalformedResponse)
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return empty, fmt.Errorf("analyze: %w: empty content", ErrMalformedResponse)
	}
	return parseAnalysis(content)
}

// parseAnalysis decodes the model's JSON payload, tolerating the markdown
// code fences some providers wrap around JSON mode output.
func parseAnalysis(content string) (mistake.Analysis, error) {
	var empty mistake.Analysis
	var payload struct {
		QuestionText  string   `json:"question_text"`
		UserAnswer    string   `json:"user_answer"`
		AIAnalysis    string   `json:"ai_analysis"`
		Subject       string   `json:"subject"`
		ErrorType     string   `json:"error_type"`
		KnowledgeTags []string `json:"knowledge_tags"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		return empty, fmt.Errorf("analyze: %w: parse payload: %v", ErrMalformedResponse, err)
	}

	payload.QuestionText = strings.TrimSpace(payload.QuestionText)
	payload.AIAnalysis = strings.TrimSpace(payload.AIAnalysis)
	if payload.QuestionText == "" || payload.AIAnalysis == "" {
		return empty, fmt.Errorf("analyze: %w: missing question_text or ai_analysis", ErrMalformedResponse)
	}

	// Unknown labels degrade to "other" rather than failing the whole item;
	// the human confirmation step corrects them.
	subject, ok := mistake.ParseSubject(payload.Subject)
	if !ok {
		subject = mistake.SubjectOther
	}
	errType, ok := mistake.ParseErrorType(payload.ErrorType)
	if !ok {
		errType = mistake.ErrorOther
	}

	return mistake.Analysis{
		QuestionText:  payload.QuestionText,
		UserAnswer:    strings.TrimSpace(payload.UserAnswer),
		AIAnalysis:    payload.AIAnalysis,
		Subject:       subject,
		ErrorType:     errType,
		KnowledgeTags: payload.KnowledgeTags,
	}, nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

// chatMessage carries either a plain string (system) or content parts (user
// with image attachment).
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imagePayload `json:"image_url,omitempty"`
}

type imagePayload struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
