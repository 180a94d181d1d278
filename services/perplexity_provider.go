// services/perplexity_provider.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/geo-intelligence/geo-workflows/internal/config"
)

type perplexityProvider struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

func NewPerplexityProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	fmt.Printf("[NewPerplexityProvider] Creating Perplexity provider\n")
	fmt.Printf("[NewPerplexityProvider]   - API Key: %s\n", maskAPIKey(cfg.PerplexityAPIKey))
	fmt.Printf("[NewPerplexityProvider]   - Model: %s\n", model)

	return &perplexityProvider{
		apiKey:      cfg.PerplexityAPIKey,
		model:       model,
		baseURL:     "https://api.perplexity.ai",
		costService: costService,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Helper function to mask API key for logging
func maskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func (p *perplexityProvider) GetProviderName() string {
	return "perplexity"
}

// Perplexity speaks the OpenAI chat-completions dialect.
type perplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *perplexityProvider) RunQuestion(ctx context.Context, query string) (*AIResponse, error) {
	requestBody := perplexityRequest{
		Model: p.model,
		Messages: []perplexityMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perplexity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("perplexity API returned status %d: %s", resp.StatusCode, string(body))
	}

	var perplexityResp perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&perplexityResp); err != nil {
		return nil, fmt.Errorf("failed to decode perplexity response: %w", err)
	}

	if len(perplexityResp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	inputTokens := perplexityResp.Usage.PromptTokens
	outputTokens := perplexityResp.Usage.CompletionTokens

	return &AIResponse{
		Response:     perplexityResp.Choices[0].Message.Content,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         p.costService.CalculateCost(p.model, inputTokens, outputTokens),
	}, nil
}
