// Package agent provides the LLM client behind the AgentClient
// interface.
package agent

import (
	"context"
	"log/slog"

	"canopy/config"
	"canopy/internal/domain/service"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/fx"
)

type openaiClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// ClientParams holds dependencies for AgentClient, injected by Fx
type ClientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewAgentClient creates an AgentClient from the agent config block
func NewAgentClient(params ClientParams) (service.AgentClient, error) {
	cfg := params.Config.Agent
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("agent API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	params.Logger.Info("Agent client initialized", slog.String("model", model))

	return &openaiClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: params.Logger,
	}, nil
}

// Complete sends a system + user prompt pair and returns the text of
// the first completion
func (c *openaiClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Module provides the agent FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewAgentClient),
)
