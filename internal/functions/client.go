// Package functions is the HTTP client for nextmic's externally hosted
// serverless functions: follow-up reminder scheduling, AI text generation
// and text embeddings. Their logic lives outside this repository; we only
// own the request/response plumbing.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:54321"
	}
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Invoke posts payload to the named function and decodes the JSON response
// into out (which may be nil when the caller only cares about success).
func (c *Client) Invoke(ctx context.Context, name string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/functions/v1/"+name, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("function %s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("function %s returned status: %d", name, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", name, err)
	}
	return nil
}

type reminderRequest struct {
	UserID    string `json:"userId"`
	ScoreID   string `json:"scoreId"`
	PitchDate string `json:"pitchDate"`
	Intervals []int  `json:"intervals"`
}

// CreateFollowUpReminders schedules follow-up nudges after a pitch. It
// satisfies pipeline.ReminderScheduler.
func (c *Client) CreateFollowUpReminders(ctx context.Context, userID, scoreID uuid.UUID, pitchDate time.Time, intervals []int) error {
	return c.Invoke(ctx, "createFollowUpReminders", reminderRequest{
		UserID:    userID.String(),
		ScoreID:   scoreID.String(),
		PitchDate: pitchDate.UTC().Format(time.RFC3339),
		Intervals: intervals,
	}, nil)
}

type generateRequest struct {
	Kind      string   `json:"kind"` // "pitch", "outline", "coaching"
	EventName string   `json:"eventName,omitempty"`
	Organizer string   `json:"organizer,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// GenerateRequest carries the speaker/event context sent to the text
// generation function.
type GenerateRequest struct {
	EventName string
	Organizer string
	Topics    []string
	Bio       string
	Notes     string
}

func (c *Client) GenerateText(ctx context.Context, kind string, req GenerateRequest) (string, error) {
	var resp generateResponse
	err := c.Invoke(ctx, "generateSpeakerText", generateRequest{
		Kind:      kind,
		EventName: req.EventName,
		Organizer: req.Organizer,
		Topics:    req.Topics,
		Bio:       req.Bio,
		Notes:     req.Notes,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

type embeddingRequest struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingResponse
	if err := c.Invoke(ctx, "embedText", embeddingRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}
