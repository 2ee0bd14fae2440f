package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/callsense-ai/callsense/agent/contract"
	openrouterx "github.com/callsense-ai/callsense/pkg/openrouter"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

type Config struct {
	Provider           string        `envconfig:"PROVIDER" split_words:"true" default:"openrouter"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contract.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: llm model is required", contract.ErrValidation)
	}
	switch strings.TrimSpace(c.Provider) {
	case ProviderOpenRouter, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unsupported llm provider %q", contract.ErrValidation, c.Provider)
	}
	return nil
}

func (c Config) openRouter() openrouterx.Config {
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

// NewCapability builds the contract.LLM configured by Provider: the eino
// chat-model path for OpenRouter, or the OpenAI SDK chat-completions path.
func (c Config) NewCapability(ctx context.Context) (contract.LLM, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := c.openRouter()
	switch strings.TrimSpace(c.Provider) {
	case ProviderOpenAI:
		client := openrouterx.NewClient(cfg)
		if client == nil {
			return nil, fmt.Errorf("%w: create openai client", contract.ErrModelInvoke)
		}
		return NewOpenAI(client, cfg.Model, float64(c.Temperature)), nil
	default:
		model, err := cfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create chat model: %v", contract.ErrModelInvoke, err)
		}
		return NewEino(model), nil
	}
}
