package chatmodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleEndpoint probes a Gemini-compatible deployment via the official
// generative-ai-go client.
type GoogleEndpoint struct {
	apiKey    string
	modelName string
}

// NewGoogleEndpoint builds an endpoint for modelName (default
// "gemini-2.5-flash" if empty).
func NewGoogleEndpoint(apiKey, modelName string) *GoogleEndpoint {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &GoogleEndpoint{apiKey: apiKey, modelName: modelName}
}

func (e *GoogleEndpoint) Invoke(ctx context.Context, messages []Message) (Reply, error) {
	if e.apiKey == "" {
		return Reply{}, errors.New("google API key is required")
	}
	if ctx.Err() != nil {
		return Reply{}, ctx.Err()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to create Google client: %w", err)
	}
	defer client.Close()

	genModel := client.GenerativeModel(e.modelName)

	var parts []genai.Part
	for _, msg := range messages {
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
	}

	resp, err := genModel.GenerateContent(ctx, parts...)
	if err != nil {
		return Reply{}, fmt.Errorf("google API error: %w", err)
	}

	var text string
	var totalTokens int64
	if resp.UsageMetadata != nil {
		totalTokens = int64(resp.UsageMetadata.TotalTokenCount)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				if text != "" {
					text += "\n"
				}
				text += string(t)
			}
		}
	}

	return Reply{Text: text, InputTokens: totalTokens}, nil
}
