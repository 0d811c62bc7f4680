// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// Anthropic calls the Claude Messages API with both card faces attached.
type Anthropic struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropic builds a Claude backend. An empty baseURL uses the public API.
func NewAnthropic(apiKey, model, baseURL string, maxTokens int, client *http.Client) *Anthropic {
	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(client)}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &Anthropic{
		client:    anthropic.NewClient(apiKey, opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Name implements Backend.
func (a *Anthropic) Name() string { return "anthropic" }

// Describe implements Backend.
func (a *Anthropic) Describe(ctx context.Context, question, answer Image, instruction string) (string, error) {
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(a.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(instruction),
					anthropicImage(question),
					anthropicImage(answer),
				},
			},
		},
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			parts = append(parts, *block.Text)
		}
	}
	if len(parts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.Join(parts, "\n"), nil
}

func anthropicImage(img Image) anthropic.MessageContent {
	return anthropic.NewImageMessageContent(
		anthropic.NewMessageContentSource(anthropic.MessagesContentSourceTypeBase64, img.MediaType, img.Base64()),
	)
}
