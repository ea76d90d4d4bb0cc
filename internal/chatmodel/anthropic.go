package chatmodel

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicEndpoint probes a Claude-compatible deployment via the official
// SDK. Adapted from graph/model/anthropic: the system-prompt extraction and
// message conversion are unchanged, tool calling is dropped since a probe
// only needs a text reply.
type AnthropicEndpoint struct {
	apiKey    string
	modelName string
}

// NewAnthropicEndpoint builds an endpoint for modelName (default
// claude-sonnet-4-5-20250929 if empty).
func NewAnthropicEndpoint(apiKey, modelName string) *AnthropicEndpoint {
	if modelName == "" {
		modelName = "claude-sonnet-4-5-20250929"
	}
	return &AnthropicEndpoint{apiKey: apiKey, modelName: modelName}
}

func (e *AnthropicEndpoint) Invoke(ctx context.Context, messages []Message) (Reply, error) {
	if e.apiKey == "" {
		return Reply{}, errors.New("anthropic API key is required")
	}
	if ctx.Err() != nil {
		return Reply{}, ctx.Err()
	}

	systemPrompt, conversation := extractSystemPrompt(messages)

	client := anthropicsdk.NewClient(option.WithAPIKey(e.apiKey))
	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(e.modelName),
		Messages:  convertAnthropicMessages(conversation),
		MaxTokens: 4096,
	}
	if systemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropicsdk.TextBlock); ok {
			if text != "" {
				text += "\n"
			}
			text += tb.Text
		}
	}

	return Reply{
		Text:         text,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

func extractSystemPrompt(messages []Message) (string, []Message) {
	var systemPrompt string
	var conversation []Message
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if systemPrompt != "" {
				systemPrompt += "\n\n"
			}
			systemPrompt += msg.Content
			continue
		}
		conversation = append(conversation, msg)
	}
	return systemPrompt, conversation
}

func convertAnthropicMessages(messages []Message) []anthropicsdk.MessageParam {
	out := make([]anthropicsdk.MessageParam, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleAssistant:
			out[i] = anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(msg.Content))
		default:
			out[i] = anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(msg.Content))
		}
	}
	return out
}
