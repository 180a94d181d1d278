// services/cost_service_test.go
package services_test

import (
	"math"
	"testing"

	"github.com/geo-intelligence/geo-workflows/services"
)

func TestCalculateCost(t *testing.T) {
	costService := services.NewCostService()

	tests := []struct {
		name         string
		model        string
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{"gpt-4o", "gpt-4o", 1_000_000, 1_000_000, 12.50},
		{"gpt-4o-mini small usage", "gpt-4o-mini", 1000, 500, 0.00045},
		{"claude sonnet", "claude-sonnet-4-5-20250929", 500_000, 100_000, 3.00},
		{"sonar", "sonar", 1_000_000, 0, 1.00},
		{"unknown model uses fallback pricing", "mystery-model", 1_000_000, 1_000_000, 20.00},
		{"zero tokens", "gpt-4o", 0, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := costService.CalculateCost(tt.model, tt.inputTokens, tt.outputTokens)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateCost = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	costService := services.NewCostService()

	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"abcd", 1},
		{"abcdefgh", 2},
		{"abcdefghijkl", 3},
	}

	for _, tt := range tests {
		if got := costService.EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
