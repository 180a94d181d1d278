// services/report_service_test.go
package services_test

import (
	"strings"
	"testing"
	"time"

	"github.com/geo-intelligence/geo-workflows/internal/models"
	"github.com/geo-intelligence/geo-workflows/services"
)

func TestGenerateRecommendationsLowVisibility(t *testing.T) {
	report := services.NewReportService()

	analysis := &models.AggregatedAnalysis{
		TotalQueries:  40,
		TotalMentions: 4,
		MentionRate:   10.0,
		SentimentDistribution: map[models.Sentiment]int{
			models.SentimentNegative: 2,
		},
		WorstCategories: []string{"price", "comparison"},
		TopCompetitors: []models.CompetitorMention{
			{Name: "CrowdStrike", Mentions: 30},
		},
	}
	platformScores := map[string]float64{
		"chatgpt": 12.0,
		"claude":  45.0,
	}

	recommendations := report.GenerateRecommendations("SecureIT GmbH", analysis, platformScores, nil)

	if len(recommendations) == 0 {
		t.Fatal("expected recommendations for a weak profile")
	}
	if len(recommendations) > 10 {
		t.Errorf("recommendations capped at 10, got %d", len(recommendations))
	}

	joined := strings.Join(recommendations, "\n")
	wantThemes := []string{
		"CHATGPT-Optimierung",
		"Markenpräsenz",
		"Negative Erwähnungen",
		"Content-Lücken",
		"Wettbewerber",
	}
	for _, want := range wantThemes {
		if !strings.Contains(joined, want) {
			t.Errorf("missing recommendation theme %q", want)
		}
	}
	if strings.Contains(joined, "CLAUDE-Optimierung") {
		t.Error("claude is above the platform threshold and must not be flagged")
	}
}

func TestGenerateRecommendationsStrongProfileStillHasBaseline(t *testing.T) {
	report := services.NewReportService()

	analysis := &models.AggregatedAnalysis{
		TotalQueries:  40,
		TotalMentions: 36,
		MentionRate:   90.0,
		SentimentDistribution: map[models.Sentiment]int{
			models.SentimentPositive: 30,
		},
	}
	platformScores := map[string]float64{"chatgpt": 85.0, "claude": 80.0}

	recommendations := report.GenerateRecommendations("SecureIT GmbH", analysis, platformScores, nil)

	// The authority and monitoring recommendations always apply
	if len(recommendations) < 2 {
		t.Fatalf("expected at least the baseline recommendations, got %d", len(recommendations))
	}
	joined := strings.Join(recommendations, "\n")
	if !strings.Contains(joined, "GEO-Monitoring") {
		t.Error("missing the monitoring baseline recommendation")
	}
}

func TestGenerateReportHTML(t *testing.T) {
	report := services.NewReportService()

	avgPos := 2.0
	result := &models.ScanResult{
		OverallScore:   67.5,
		PlatformScores: map[string]float64{"chatgpt": 80.0, "claude": 55.0},
		Analysis: &models.AggregatedAnalysis{
			TotalQueries:  20,
			TotalMentions: 12,
			MentionRate:   60.0,
			AvgPosition:   &avgPos,
			Strengths:     []string{"Hohe Sichtbarkeit in KI-Assistenten"},
			TopCompetitors: []models.CompetitorMention{
				{Name: "CrowdStrike", Mentions: 8},
			},
		},
		Recommendations: []string{"**GEO-Monitoring etablieren**: Monatliche Scans."},
		QueryResults: []*models.QueryResult{
			{
				Query:    "Beste Anbieter?",
				Platform: "chatgpt",
				Category: "service",
				Analysis: &models.MentionResult{Mentioned: true, Sentiment: models.SentimentPositive},
			},
		},
		CompletedAt: time.Now(),
	}

	html, err := report.GenerateReportHTML(models.CompanyInput{
		Name:   "SecureIT GmbH",
		Domain: "secureit.de",
	}, result, nil)
	if err != nil {
		t.Fatalf("GenerateReportHTML failed: %v", err)
	}

	for _, want := range []string{
		"SecureIT GmbH",
		"secureit.de",
		"67.5",
		"CHATGPT",
		"CrowdStrike",
		"GEO-Monitoring",
		"Beste Anbieter?",
		"Hohe Sichtbarkeit",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report HTML missing %q", want)
		}
	}
}
