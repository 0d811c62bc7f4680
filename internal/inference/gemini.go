// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini calls the Gemini generateContent API. It manages its own
// transport because a custom HTTP client would bypass the API key option.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGemini builds a Gemini backend. Close it when done.
func NewGemini(ctx context.Context, apiKey, model, baseURL string, maxTokens int) (*Gemini, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithEndpoint(baseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, maxTokens: maxTokens}, nil
}

// Name implements Backend.
func (g *Gemini) Name() string { return "gemini" }

// Describe implements Backend.
func (g *Gemini) Describe(ctx context.Context, question, answer Image, instruction string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(int32(g.maxTokens))

	resp, err := model.GenerateContent(ctx,
		genai.Text(instruction),
		genai.ImageData(question.Format(), question.Data),
		genai.ImageData(answer.Format(), answer.Data),
	)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	var parts []string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if txt, ok := p.(genai.Text); ok {
				parts = append(parts, string(txt))
			}
		}
	}
	if len(parts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.Join(parts, ""), nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
