// services/cost_service.go
package services

type costService struct{}

func NewCostService() CostService {
	return &costService{}
}

// Pricing per 1M tokens (USD)
var modelPricing = map[string]struct{ input, output float64 }{
	// OpenAI
	"gpt-4.1":      {input: 2.00, output: 8.00},
	"gpt-4.1-mini": {input: 0.40, output: 1.60},
	"gpt-4.1-nano": {input: 0.10, output: 0.40},
	"gpt-4o":       {input: 2.50, output: 10.00},
	"gpt-4o-mini":  {input: 0.15, output: 0.60},
	// Anthropic
	"claude-sonnet-4-5-20250929": {input: 3.00, output: 15.00},
	"claude-haiku-4-5-20251001":  {input: 0.80, output: 4.00},
	// Google
	"gemini-2.5-flash": {input: 0.15, output: 0.60},
	"gemini-2.5-pro":   {input: 1.25, output: 10.00},
	"gemini-2.0-flash": {input: 0.10, output: 0.40},
	// Perplexity
	"sonar":     {input: 1.00, output: 1.00},
	"sonar-pro": {input: 3.00, output: 15.00},
}

var fallbackPricing = struct{ input, output float64 }{input: 5.00, output: 15.00}

const charsPerToken = 4

func (s *costService) CalculateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, exists := modelPricing[model]
	if !exists {
		pricing = fallbackPricing
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.input
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.output
	return inputCost + outputCost
}

// EstimateTokens approximates the token count of a text when the provider
// does not report usage.
func (s *costService) EstimateTokens(text string) int {
	tokens := len(text) / charsPerToken
	if tokens < 1 {
		return 1
	}
	return tokens
}
