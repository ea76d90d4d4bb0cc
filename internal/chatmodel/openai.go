package chatmodel

import (
	"context"
	"errors"
	"fmt"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIEndpoint probes an OpenAI-compatible chat deployment, retrying a
// failed call up to maxRetries times whatever the error, with a fixed
// delay between attempts.
type OpenAIEndpoint struct {
	apiKey     string
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIEndpoint builds an endpoint for modelName (default "gpt-4o" if
// empty), with 3 retries 1 second apart.
func NewOpenAIEndpoint(apiKey, modelName string) *OpenAIEndpoint {
	if modelName == "" {
		modelName = "gpt-4o"
	}
	return &OpenAIEndpoint{apiKey: apiKey, modelName: modelName, maxRetries: 3, retryDelay: time.Second}
}

func (e *OpenAIEndpoint) Invoke(ctx context.Context, messages []Message) (Reply, error) {
	if e.apiKey == "" {
		return Reply{}, errors.New("OpenAI API key is required")
	}
	if ctx.Err() != nil {
		return Reply{}, ctx.Err()
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		reply, err := e.call(ctx, messages)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if attempt >= e.maxRetries {
			break
		}
		select {
		case <-time.After(e.retryDelay):
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		}
	}
	return Reply{}, fmt.Errorf("OpenAI API failed after %d retries: %w", e.maxRetries, lastErr)
}

func (e *OpenAIEndpoint) call(ctx context.Context, messages []Message) (Reply, error) {
	client := openaisdk.NewClient(option.WithAPIKey(e.apiKey))

	resp, err := client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(e.modelName),
		Messages: convertOpenAIMessages(messages),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, errors.New("no response from OpenAI API")
	}

	return Reply{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func convertOpenAIMessages(messages []Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out[i] = openaisdk.SystemMessage(msg.Content)
		case RoleAssistant:
			out[i] = openaisdk.AssistantMessage(msg.Content)
		default:
			out[i] = openaisdk.UserMessage(msg.Content)
		}
	}
	return out
}
