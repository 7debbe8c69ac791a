package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

const (
	claudeAPIURL       = "https://api.anthropic.com/v1/messages"
	claudeDefaultModel = "claude-sonnet-4-20250514"
	claudeMaxTokens    = 4096
)

// Claude queries the Anthropic Messages API with keyframes and transcript
// context.
type Claude struct {
	apiKey string
	model  string
	client *http.Client
}

func NewClaude(apiKey, model string) (*Claude, error) {
	if apiKey == "" {
		return nil, errors.New("claude: API key required")
	}
	if model == "" {
		model = claudeDefaultModel
	}
	return &Claude{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (c *Claude) Name() string { return "claude" }

type claudeContent struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *claudeImageSource `json:"source,omitempty"`
}

type claudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Claude) Query(ctx context.Context, pkg *entity.Package, question string) (string, error) {
	content := []claudeContent{{
		Type: "text",
		Text: fmt.Sprintf("I'm sharing keyframes from a video for analysis.\n\n%s\nKeyframes:", contextText(pkg)),
	}}
	for _, b64 := range keyframesBase64(pkg) {
		content = append(content, claudeContent{
			Type: "image",
			Source: &claudeImageSource{
				Type:      "base64",
				MediaType: "image/webp",
				Data:      b64,
			},
		})
	}
	content = append(content, claudeContent{
		Type: "text",
		Text: "\nQuestion: " + question,
	})

	body, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("claude: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("claude: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("claude: read response: %w", err)
	}

	var parsed claudeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("claude: parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("claude: API error (%d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("claude: API error (%d)", resp.StatusCode)
	}
	if len(parsed.Content) == 0 {
		return "", errors.New("claude: empty response")
	}
	return parsed.Content[0].Text, nil
}
