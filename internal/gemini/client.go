// Package gemini is a stateless request/response wrapper around the
// generateContent REST API. One POST per call, no retry, no streaming;
// every failure collapses into an error the caller surfaces as a generic
// "feature unavailable" message.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrNoContent is returned when the API answers 2xx but carries no
// candidate text.
var ErrNoContent = errors.New("gemini: response contained no content")

// Part is a single text fragment of a conversation turn.
type Part struct {
	Text string `json:"text"`
}

// Content is one conversation turn ("user" or "model").
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Config carries the settings for the text-generation endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client calls the generateContent endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client with the default transport.
func NewClient(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

type generateRequest struct {
	Contents []Content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the history plus a final user turn and returns the first
// candidate's text. It returns an error on any transport failure, non-2xx
// status, or an empty candidate; it never panics.
func (c *Client) Generate(ctx context.Context, prompt string, history []Content) (string, error) {
	contents := make([]Content, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, Content{Role: "user", Parts: []Part{{Text: prompt}}})

	body, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("gemini: failed to encode request: %v", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("Gemini request failed")
		return "", fmt.Errorf("gemini: request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithField("status", resp.StatusCode).Warn("Gemini returned non-2xx status")
		return "", fmt.Errorf("gemini: API call failed with status %d", resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("gemini: failed to decode response: %v", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoContent
	}
	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}
