// services/openai_provider.go
package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/geo-intelligence/geo-workflows/internal/config"
)

type openAIProvider struct {
	client      *openai.Client
	model       string
	costService CostService
}

// systemPrompt is shared across all platforms so responses stay comparable.
const systemPrompt = "Du bist ein hilfreicher Assistent. Beantworte die folgende Frage " +
	"ausführlich und nenne konkrete Unternehmen/Anbieter wenn möglich."

func NewOpenAIProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	fmt.Printf("[NewOpenAIProvider] Using model %s via github.com/openai/openai-go\n", model)

	return &openAIProvider{
		client:      &client,
		model:       model,
		costService: costService,
	}
}

func (p *openAIProvider) GetProviderName() string {
	return "chatgpt"
}

func (p *openAIProvider) RunQuestion(ctx context.Context, query string) (*AIResponse, error) {
	response, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(query),
		},
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(1000),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	inputTokens := int(response.Usage.PromptTokens)
	outputTokens := int(response.Usage.CompletionTokens)

	return &AIResponse{
		Response:     response.Choices[0].Message.Content,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         p.costService.CalculateCost(p.model, inputTokens, outputTokens),
	}, nil
}
