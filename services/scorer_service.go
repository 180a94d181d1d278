// services/scorer_service.go
package services

import (
	"sort"

	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
)

type scorerService struct {
	mentionTypeWeights map[models.MentionType]float64
	platformWeights    map[string]float64
}

var defaultMentionTypeWeights = map[models.MentionType]float64{
	models.MentionDirectRecommendation: 1.0,
	models.MentionListedAmongTop:       0.8,
	models.MentionPositive:             0.6,
	models.MentionNeutral:              0.3,
	models.MentionNone:                 0.0,
}

var sentimentModifiers = map[models.Sentiment]float64{
	models.SentimentPositive: 1.0,
	models.SentimentNeutral:  0.8,
	models.SentimentNegative: 0.5,
}

// NewScorerService creates a scorer from the industry's scoring weights.
// Missing scoring config falls back to the default mention-type weights.
func NewScorerService(cfg *industry.Config) ScorerService {
	weights := make(map[models.MentionType]float64, len(defaultMentionTypeWeights))
	for mentionType, weight := range defaultMentionTypeWeights {
		weights[mentionType] = weight
	}
	platformWeights := make(map[string]float64)

	if cfg != nil {
		if len(cfg.Scoring.MentionTypes) > 0 {
			weights = make(map[models.MentionType]float64, len(cfg.Scoring.MentionTypes))
			for name, weight := range cfg.Scoring.MentionTypes {
				weights[models.MentionType(name)] = weight
			}
		}
		for platform, platformCfg := range cfg.Platforms {
			platformWeights[platform] = platformCfg.Weight
		}
	}

	return &scorerService{
		mentionTypeWeights: weights,
		platformWeights:    platformWeights,
	}
}

// ScoreSingleResult converts one analysis result into a 0-100 score:
// mention-type base weight plus position bonus, modulated by sentiment.
func (s *scorerService) ScoreSingleResult(result *models.MentionResult) float64 {
	if result == nil {
		return 0.0
	}

	base := s.mentionTypeWeights[result.MentionType]
	bonus := 0.0
	if result.Mentioned {
		bonus = positionBonus(result.Position)
	}

	modifier, ok := sentimentModifiers[result.Sentiment]
	if !ok {
		modifier = 0.8
	}

	score := (base + bonus) * modifier * 100
	if score < 0 {
		return 0.0
	}
	if score > 100 {
		return 100.0
	}
	return score
}

func positionBonus(position *int) float64 {
	if position == nil {
		return 0.0
	}
	switch *position {
	case 1:
		return 0.20
	case 2:
		return 0.10
	case 3:
		return 0.05
	default:
		return 0.0
	}
}

// mention normalizes the flat-vs-nested result shapes: records carrying
// their analysis under Analysis win over the inline fields.
func (r *ScoreResult) mention() *models.MentionResult {
	if r.Analysis != nil {
		return r.Analysis
	}
	return &r.MentionResult
}

// CalculatePlatformScores averages single-result scores per platform.
func (s *scorerService) CalculatePlatformScores(results []*ScoreResult) map[string]float64 {
	grouped := make(map[string][]*ScoreResult)
	for _, result := range results {
		platform := result.Platform
		if platform == "" {
			platform = "unknown"
		}
		grouped[platform] = append(grouped[platform], result)
	}

	platformScores := make(map[string]float64, len(grouped))
	for platform, platformResults := range grouped {
		sum := 0.0
		for _, result := range platformResults {
			sum += s.ScoreSingleResult(result.mention())
		}
		platformScores[platform] = round2(sum / float64(len(platformResults)))
	}

	return platformScores
}

// CalculateOverallScore computes the industry-weighted mean over platform
// scores. Platforms without a configured weight are excluded from both
// numerator and denominator so injected placeholder platforms cannot skew
// the mean.
func (s *scorerService) CalculateOverallScore(platformScores map[string]float64) float64 {
	if len(platformScores) == 0 {
		return 0.0
	}

	weightedSum := 0.0
	totalWeight := 0.0
	for platform, score := range platformScores {
		weight := s.platformWeights[platform]
		weightedSum += score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0.0
	}

	return round2(weightedSum / totalWeight)
}

// CalculateCategoryScores averages single-result scores per query category.
func (s *scorerService) CalculateCategoryScores(results []*ScoreResult) map[string]float64 {
	grouped := make(map[string][]*ScoreResult)
	for _, result := range results {
		category := result.Category
		if category == "" {
			category = "unknown"
		}
		grouped[category] = append(grouped[category], result)
	}

	categoryScores := make(map[string]float64, len(grouped))
	for category, categoryResults := range grouped {
		sum := 0.0
		for _, result := range categoryResults {
			sum += s.ScoreSingleResult(result.mention())
		}
		categoryScores[category] = round2(sum / float64(len(categoryResults)))
	}

	return categoryScores
}

// GetScoreBreakdown exposes the score components of one result.
func (s *scorerService) GetScoreBreakdown(result *models.MentionResult) *models.ScoreBreakdown {
	if result == nil {
		result = &models.MentionResult{MentionType: models.MentionNone, Sentiment: models.SentimentNeutral}
	}

	base := s.mentionTypeWeights[result.MentionType]
	bonus := positionBonus(result.Position)
	modifier, ok := sentimentModifiers[result.Sentiment]
	if !ok {
		modifier = 0.8
	}

	return &models.ScoreBreakdown{
		BaseScore:         round2(base * 100),
		PositionBonus:     round2(bonus * 100),
		SentimentModifier: modifier,
		FinalScore:        round2((base + bonus) * modifier * 100),
		MentionType:       result.MentionType,
		Position:          result.Position,
		Sentiment:         result.Sentiment,
	}
}

// CompareToCompetitors ranks our overall score inside a set of named
// competitor scores.
func (s *scorerService) CompareToCompetitors(ourScore float64, competitorScores map[string]float64) *models.CompetitorComparison {
	if len(competitorScores) == 0 {
		return &models.CompetitorComparison{
			Rank:       1,
			Percentile: 100.0,
			BetterThan: []string{},
			WorseThan:  []string{},
		}
	}

	allScores := make([]float64, 0, len(competitorScores)+1)
	for _, score := range competitorScores {
		allScores = append(allScores, score)
	}
	allScores = append(allScores, ourScore)
	sort.Sort(sort.Reverse(sort.Float64Slice(allScores)))

	rank := 1
	for i, score := range allScores {
		if score == ourScore {
			rank = i + 1
			break
		}
	}

	percentile := float64(len(allScores)-rank) / float64(len(allScores)) * 100

	betterThan := []string{}
	worseThan := []string{}
	for name, score := range competitorScores {
		if score < ourScore {
			betterThan = append(betterThan, name)
		} else if score > ourScore {
			worseThan = append(worseThan, name)
		}
	}
	sort.Strings(betterThan)
	sort.Strings(worseThan)

	gap := 0.0
	if len(worseThan) > 0 {
		gap = round2(allScores[0] - ourScore)
	}

	return &models.CompetitorComparison{
		Rank:             rank,
		TotalCompetitors: len(competitorScores),
		Percentile:       round2(percentile),
		BetterThan:       betterThan,
		WorseThan:        worseThan,
		ScoreGapToLeader: gap,
	}
}
