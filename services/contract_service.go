// services/contract_service.go
package services

import (
	"math"
	"strings"

	"github.com/geo-intelligence/geo-workflows/internal/models"
)

// Platforms the frontend contract always expects to be present.
var requiredPlatforms = []string{"chatgpt", "claude", "gemini", "perplexity"}

type contractService struct{}

func NewContractService() ContractService {
	return &contractService{}
}

// NormalizePlatformScores exposes stable platform keys so downstream
// consumers never see a missing platform. Scores are defaulted outside the
// scorer on purpose; its weighting semantics stay untouched.
func (s *contractService) NormalizePlatformScores(platformScores map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(requiredPlatforms))

	for platform, score := range platformScores {
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		normalized[platform] = score
	}

	for _, platform := range requiredPlatforms {
		if _, ok := normalized[platform]; !ok {
			normalized[platform] = 0.0
		}
	}

	return normalized
}

// ExtractCompetitors derives the stable competitors list from the
// aggregated analysis, dropping malformed entries.
func (s *contractService) ExtractCompetitors(analysis *models.AggregatedAnalysis) []models.CompetitorMention {
	if analysis == nil {
		return []models.CompetitorMention{}
	}

	competitors := make([]models.CompetitorMention, 0, len(analysis.TopCompetitors))
	for _, competitor := range analysis.TopCompetitors {
		name := strings.TrimSpace(competitor.Name)
		if name == "" {
			continue
		}
		mentions := competitor.Mentions
		if mentions < 0 {
			mentions = 0
		}
		competitors = append(competitors, models.CompetitorMention{Name: name, Mentions: mentions})
	}

	return competitors
}
