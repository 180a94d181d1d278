// services/scorer_service_test.go
package services_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
	"github.com/geo-intelligence/geo-workflows/services"
)

func scoringConfig() *industry.Config {
	return &industry.Config{
		ID: "test_industry",
		Platforms: map[string]industry.PlatformConfig{
			"chatgpt": {Weight: 0.5, Model: "gpt-4o"},
			"claude":  {Weight: 0.5, Model: "claude-sonnet-4-5-20250929"},
		},
		Scoring: industry.ScoringConfig{
			MentionTypes: map[string]float64{
				"direct_recommendation": 1.0,
				"listed_among_top":      0.8,
				"mentioned_positively":  0.6,
				"mentioned_neutrally":   0.3,
				"not_mentioned":         0.0,
			},
		},
	}
}

func TestScoreSingleResult(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	tests := []struct {
		name   string
		result *models.MentionResult
		want   float64
	}{
		{
			name:   "nil result",
			result: nil,
			want:   0.0,
		},
		{
			name: "not mentioned",
			result: &models.MentionResult{
				Mentioned:   false,
				MentionType: models.MentionNone,
				Sentiment:   models.SentimentNeutral,
			},
			want: 0.0,
		},
		{
			name: "direct recommendation positive without position",
			result: &models.MentionResult{
				Mentioned:   true,
				MentionType: models.MentionDirectRecommendation,
				Sentiment:   models.SentimentPositive,
			},
			want: 100.0,
		},
		{
			name: "direct recommendation position 1 clamps at 100",
			result: &models.MentionResult{
				Mentioned:   true,
				MentionType: models.MentionDirectRecommendation,
				Position:    intPtr(1),
				Sentiment:   models.SentimentPositive,
			},
			want: 100.0,
		},
		{
			name: "listed among top position 2",
			result: &models.MentionResult{
				Mentioned:   true,
				MentionType: models.MentionListedAmongTop,
				Position:    intPtr(2),
				Sentiment:   models.SentimentPositive,
			},
			want: 90.0, // (0.8 + 0.10) * 1.0 * 100
		},
		{
			name: "neutral mention neutral sentiment",
			result: &models.MentionResult{
				Mentioned:   true,
				MentionType: models.MentionNeutral,
				Sentiment:   models.SentimentNeutral,
			},
			want: 24.0, // 0.3 * 0.8 * 100
		},
		{
			name: "negative sentiment halves the score",
			result: &models.MentionResult{
				Mentioned:   true,
				MentionType: models.MentionPositive,
				Sentiment:   models.SentimentNegative,
			},
			want: 30.0, // 0.6 * 0.5 * 100
		},
		{
			name: "unknown sentiment treated as neutral",
			result: &models.MentionResult{
				Mentioned:   true,
				MentionType: models.MentionPositive,
				Sentiment:   models.Sentiment("bizarre"),
			},
			want: 48.0, // 0.6 * 0.8 * 100
		},
		{
			name: "position bonus ignored when not mentioned",
			result: &models.MentionResult{
				Mentioned:   false,
				MentionType: models.MentionNone,
				Position:    intPtr(1),
				Sentiment:   models.SentimentNeutral,
			},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorer.ScoreSingleResult(tt.result); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ScoreSingleResult = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculatePlatformScoresFlatAndNested(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	mention := models.MentionResult{
		Mentioned:   true,
		MentionType: models.MentionDirectRecommendation,
		Sentiment:   models.SentimentPositive,
	}

	flat := []*services.ScoreResult{
		{Platform: "chatgpt", MentionResult: mention},
	}
	nested := []*services.ScoreResult{
		{Platform: "chatgpt", Analysis: &mention},
	}

	flatScores := scorer.CalculatePlatformScores(flat)
	nestedScores := scorer.CalculatePlatformScores(nested)

	if !reflect.DeepEqual(flatScores, nestedScores) {
		t.Errorf("flat (%v) and nested (%v) shapes must score identically", flatScores, nestedScores)
	}
	if flatScores["chatgpt"] != 100.0 {
		t.Errorf("chatgpt score = %v, want 100.0", flatScores["chatgpt"])
	}
}

func TestScanScenario(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	results := []*services.ScoreResult{
		{
			Platform: "chatgpt",
			Analysis: &models.MentionResult{
				Mentioned:   true,
				MentionType: models.MentionDirectRecommendation,
				Position:    nil,
				Sentiment:   models.SentimentPositive,
			},
		},
		{
			Platform: "claude",
			Analysis: &models.MentionResult{
				Mentioned:   false,
				MentionType: models.MentionNone,
				Sentiment:   models.SentimentNeutral,
			},
		},
	}

	platformScores := scorer.CalculatePlatformScores(results)
	if platformScores["chatgpt"] != 100.0 {
		t.Errorf("chatgpt = %v, want 100.0", platformScores["chatgpt"])
	}
	if platformScores["claude"] != 0.0 {
		t.Errorf("claude = %v, want 0.0", platformScores["claude"])
	}

	if overall := scorer.CalculateOverallScore(platformScores); overall != 50.0 {
		t.Errorf("overall = %v, want 50.0", overall)
	}
}

func TestCalculateOverallScoreExcludesUnconfiguredPlatforms(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	base := map[string]float64{"chatgpt": 100.0, "claude": 0.0}
	withStray := map[string]float64{"chatgpt": 100.0, "claude": 0.0, "bogus": 80.0}

	if got, want := scorer.CalculateOverallScore(base), 50.0; got != want {
		t.Fatalf("overall = %v, want %v", got, want)
	}
	if got := scorer.CalculateOverallScore(withStray); got != 50.0 {
		t.Errorf("stray platform moved the overall score to %v", got)
	}
}

func TestCalculateOverallScoreEdgeCases(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	if got := scorer.CalculateOverallScore(map[string]float64{}); got != 0.0 {
		t.Errorf("empty map: got %v, want 0", got)
	}
	// Only unconfigured platforms: zero total weight
	if got := scorer.CalculateOverallScore(map[string]float64{"bogus": 90.0}); got != 0.0 {
		t.Errorf("zero total weight: got %v, want 0", got)
	}
}

func TestCalculateCategoryScores(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	results := []*services.ScoreResult{
		{Category: "brand", MentionResult: models.MentionResult{
			Mentioned: true, MentionType: models.MentionDirectRecommendation, Sentiment: models.SentimentPositive,
		}},
		{Category: "brand", MentionResult: models.MentionResult{
			MentionType: models.MentionNone, Sentiment: models.SentimentNeutral,
		}},
		{MentionResult: models.MentionResult{
			MentionType: models.MentionNone, Sentiment: models.SentimentNeutral,
		}},
	}

	scores := scorer.CalculateCategoryScores(results)
	if scores["brand"] != 50.0 {
		t.Errorf("brand = %v, want 50.0", scores["brand"])
	}
	if _, ok := scores["unknown"]; !ok {
		t.Error("results without a category must land in the unknown bucket")
	}
}

func TestGetScoreBreakdown(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	breakdown := scorer.GetScoreBreakdown(&models.MentionResult{
		Mentioned:   true,
		MentionType: models.MentionListedAmongTop,
		Position:    intPtr(3),
		Sentiment:   models.SentimentNegative,
	})

	if breakdown.BaseScore != 80.0 {
		t.Errorf("BaseScore = %v, want 80.0", breakdown.BaseScore)
	}
	if breakdown.PositionBonus != 5.0 {
		t.Errorf("PositionBonus = %v, want 5.0", breakdown.PositionBonus)
	}
	if breakdown.SentimentModifier != 0.5 {
		t.Errorf("SentimentModifier = %v, want 0.5", breakdown.SentimentModifier)
	}
	if breakdown.FinalScore != 42.5 {
		t.Errorf("FinalScore = %v, want 42.5", breakdown.FinalScore)
	}
}

func TestCompareToCompetitors(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	comparison := scorer.CompareToCompetitors(50.0, map[string]float64{
		"Alpha": 70.0,
		"Beta":  30.0,
		"Gamma": 50.0,
	})

	if comparison.Rank != 2 {
		t.Errorf("Rank = %d, want 2", comparison.Rank)
	}
	if comparison.TotalCompetitors != 3 {
		t.Errorf("TotalCompetitors = %d, want 3", comparison.TotalCompetitors)
	}
	if comparison.Percentile != 50.0 {
		t.Errorf("Percentile = %v, want 50.0", comparison.Percentile)
	}
	if !reflect.DeepEqual(comparison.BetterThan, []string{"Beta"}) {
		t.Errorf("BetterThan = %v, want [Beta]", comparison.BetterThan)
	}
	if !reflect.DeepEqual(comparison.WorseThan, []string{"Alpha"}) {
		t.Errorf("WorseThan = %v, want [Alpha]", comparison.WorseThan)
	}
	if comparison.ScoreGapToLeader != 20.0 {
		t.Errorf("ScoreGapToLeader = %v, want 20.0", comparison.ScoreGapToLeader)
	}
}

func TestCompareToCompetitorsEmpty(t *testing.T) {
	scorer := services.NewScorerService(scoringConfig())

	comparison := scorer.CompareToCompetitors(42.0, nil)
	if comparison.Rank != 1 || comparison.Percentile != 100.0 {
		t.Errorf("no competitors: rank %d percentile %v, want 1 and 100.0", comparison.Rank, comparison.Percentile)
	}
	if comparison.ScoreGapToLeader != 0.0 {
		t.Errorf("ScoreGapToLeader = %v, want 0.0", comparison.ScoreGapToLeader)
	}
}

func TestNewScorerServiceDefaultWeights(t *testing.T) {
	// Nil config falls back to the default mention-type weights
	scorer := services.NewScorerService(nil)

	got := scorer.ScoreSingleResult(&models.MentionResult{
		Mentioned:   true,
		MentionType: models.MentionListedAmongTop,
		Sentiment:   models.SentimentPositive,
	})
	if got != 80.0 {
		t.Errorf("default weight score = %v, want 80.0", got)
	}
}
