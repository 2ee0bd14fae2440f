package llm

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"

	"github.com/callsense-ai/callsense/agent/contract"
)

// OpenAIClient adapts the OpenAI chat-completions API to contract.LLM.
type OpenAIClient struct {
	client      *openaisdk.Client
	model       string
	temperature float64
}

var _ contract.LLM = (*OpenAIClient)(nil)

func NewOpenAI(client *openaisdk.Client, model string, temperature float64) *OpenAIClient {
	return &OpenAIClient{
		client:      client,
		model:       model,
		temperature: temperature,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("%w: openai client is not configured", contract.ErrModelInvoke)
	}

	completion, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(user),
		},
		Temperature: openaisdk.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contract.ErrModelInvoke, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", contract.ErrModelInvoke)
	}

	return completion.Choices[0].Message.Content, nil
}
