package llm

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/callsense-ai/callsense/agent/contract"
)

// EinoModel adapts an eino chat model to contract.LLM.
type EinoModel struct {
	model einomodel.BaseChatModel
}

var _ contract.LLM = (*EinoModel)(nil)

func NewEino(model einomodel.BaseChatModel) *EinoModel {
	return &EinoModel{model: model}
}

func (m *EinoModel) Complete(ctx context.Context, system, user string) (string, error) {
	if m == nil || m.model == nil {
		return "", fmt.Errorf("%w: chat model is not configured", contract.ErrModelInvoke)
	}

	msg, err := m.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contract.ErrModelInvoke, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: empty model response", contract.ErrModelInvoke)
	}

	return msg.Content, nil
}
