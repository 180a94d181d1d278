// services/gemini_provider.go
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

type geminiProvider struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

func NewGeminiProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	fmt.Printf("[NewGeminiProvider] Creating Gemini provider\n")
	fmt.Printf("[NewGeminiProvider]   - API Key: %s\n", maskAPIKey(cfg.GoogleAPIKey))
	fmt.Printf("[NewGeminiProvider]   - Model: %s\n", model)

	return &geminiProvider{
		apiKey:      cfg.GoogleAPIKey,
		model:       model,
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
		costService: costService,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *geminiProvider) GetProviderName() string {
	return "gemini"
}

// Gemini generateContent request structures
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *geminiProvider) RunQuestion(ctx context.Context, query string) (*AIResponse, error) {
	// The v1beta API has no separate system role, prepend the prompt instead.
	fullPrompt := fmt.Sprintf("%s\n\n%s", systemPrompt, query)

	requestBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fullPrompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.7,
			MaxOutputTokens: 1000,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}

	responseText := ""
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		responseText += part.Text
	}

	inputTokens := geminiResp.UsageMetadata.PromptTokenCount
	outputTokens := geminiResp.UsageMetadata.CandidatesTokenCount
	if inputTokens == 0 {
		inputTokens = p.costService.EstimateTokens(fullPrompt)
	}
	if outputTokens == 0 {
		outputTokens = p.costService.EstimateTokens(responseText)
	}

	return &AIResponse{
		Response:     responseText,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         p.costService.CalculateCost(p.model, inputTokens, outputTokens),
	}, nil
}
