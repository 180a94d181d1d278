// services/analyzer_service_test.go
package services_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
	"github.com/geo-intelligence/geo-workflows/services"
)

func newAnalyzer() services.AnalyzerService {
	return services.NewAnalyzerService(&industry.Config{
		KnownCompetitors: []string{"CrowdStrike", "Sophos", "SecureIT GmbH"},
	})
}

func TestAnalyzeResponseNotMentioned(t *testing.T) {
	analyzer := newAnalyzer()

	result := analyzer.AnalyzeResponse("SecureIT GmbH", "secureit.de", "Beste Anbieter?", "chatgpt",
		"Es gibt viele Anbieter am Markt, zum Beispiel CrowdStrike und Sophos.")

	if result.Mentioned {
		t.Fatal("company must not be detected")
	}
	if result.MentionType != models.MentionNone {
		t.Errorf("MentionType = %q, want not_mentioned", result.MentionType)
	}
	if result.MentionCount != 0 {
		t.Errorf("MentionCount = %d, want 0", result.MentionCount)
	}
	if result.Position != nil {
		t.Errorf("Position = %v, want nil", *result.Position)
	}
	if result.Context != "" {
		t.Errorf("Context = %q, want empty", result.Context)
	}
	if result.Sentiment != models.SentimentNeutral {
		t.Errorf("Sentiment = %q, want neutral", result.Sentiment)
	}
	if len(result.CompetitorsMentioned) != 0 {
		t.Errorf("CompetitorsMentioned = %v, want empty", result.CompetitorsMentioned)
	}
}

func TestAnalyzeResponseMentionTypes(t *testing.T) {
	analyzer := newAnalyzer()

	tests := []struct {
		name     string
		response string
		wantType models.MentionType
	}{
		{
			name:     "recommendation keyword wins",
			response: "Ich empfehle SecureIT GmbH ohne Einschränkung.",
			wantType: models.MentionDirectRecommendation,
		},
		{
			name:     "numbered list in top 3",
			response: "1. SecureIT GmbH\n2. Andere Firma\n3. Dritte Firma",
			wantType: models.MentionListedAmongTop,
		},
		{
			name:     "positive phrasing without recommendation",
			response: "SecureIT GmbH ist eine solide Firma mit langer Erfahrung.",
			wantType: models.MentionPositive,
		},
		{
			name:     "plain mention",
			response: "SecureIT GmbH ist ein Unternehmen aus München.",
			wantType: models.MentionNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzer.AnalyzeResponse("SecureIT GmbH", "secureit.de", "q", "chatgpt", tt.response)
			if !result.Mentioned {
				t.Fatal("expected a mention")
			}
			if result.MentionType != tt.wantType {
				t.Errorf("MentionType = %q, want %q", result.MentionType, tt.wantType)
			}
		})
	}
}

func TestAnalyzeResponsePosition(t *testing.T) {
	analyzer := newAnalyzer()

	tests := []struct {
		name     string
		response string
		want     *int
	}{
		{"numbered list", "2. SecureIT GmbH bietet viel", intPtr(2)},
		{"rank phrase", "SecureIT GmbH liegt auf Platz 3 im Markt", intPtr(3)},
		{"no marker", "SecureIT GmbH existiert seit 2010", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzer.AnalyzeResponse("SecureIT GmbH", "", "q", "chatgpt", tt.response)
			if tt.want == nil {
				if result.Position != nil {
					t.Errorf("Position = %d, want nil", *result.Position)
				}
				return
			}
			if result.Position == nil || *result.Position != *tt.want {
				t.Errorf("Position = %v, want %d", result.Position, *tt.want)
			}
		})
	}
}

func TestAnalyzeResponseSentimentNegativeFirst(t *testing.T) {
	analyzer := newAnalyzer()

	result := analyzer.AnalyzeResponse("SecureIT GmbH", "", "q", "chatgpt",
		"SecureIT GmbH ist gut, aber der Support ist schlecht.")

	if result.Sentiment != models.SentimentNegative {
		t.Errorf("Sentiment = %q, want negative (negative keywords dominate)", result.Sentiment)
	}
}

func TestAnalyzeResponseDomainAndVariants(t *testing.T) {
	analyzer := newAnalyzer()

	t.Run("normalized domain", func(t *testing.T) {
		result := analyzer.AnalyzeResponse("SecureIT GmbH", "https://www.secureit.de", "q", "chatgpt",
			"Mehr Informationen unter secureit.de im Netz.")
		if !result.Mentioned {
			t.Error("domain mention not detected after normalization")
		}
	})

	t.Run("camel case variant", func(t *testing.T) {
		result := analyzer.AnalyzeResponse("CrowdSecure", "", "q", "chatgpt",
			"Crowd Secure wird von vielen Unternehmen eingesetzt.")
		if !result.Mentioned {
			t.Error("camelCase-split variant not detected")
		}
	})

	t.Run("hyphen variant", func(t *testing.T) {
		result := analyzer.AnalyzeResponse("Secure-IT", "", "q", "chatgpt",
			"Secure IT bietet Beratung an.")
		if !result.Mentioned {
			t.Error("hyphen-to-space variant not detected")
		}
	})
}

func TestAnalyzeResponseMentionCount(t *testing.T) {
	analyzer := newAnalyzer()

	result := analyzer.AnalyzeResponse("SecureIT", "", "q", "chatgpt",
		"SecureIT macht X. Außerdem bietet SecureIT auch Y an.")

	if result.MentionCount != 2 {
		t.Errorf("MentionCount = %d, want 2", result.MentionCount)
	}
}

func TestAnalyzeResponseCompetitorsExcludeSelf(t *testing.T) {
	analyzer := newAnalyzer()

	result := analyzer.AnalyzeResponse("SecureIT GmbH", "", "q", "chatgpt",
		"SecureIT GmbH konkurriert mit CrowdStrike und Sophos.")

	want := []string{"CrowdStrike", "Sophos"}
	if !reflect.DeepEqual(result.CompetitorsMentioned, want) {
		t.Errorf("CompetitorsMentioned = %v, want %v", result.CompetitorsMentioned, want)
	}
}

func TestAnalyzeResponseContextWindow(t *testing.T) {
	analyzer := newAnalyzer()

	response := strings.Repeat("x", 300) + " SecureIT " + strings.Repeat("y", 300)
	result := analyzer.AnalyzeResponse("SecureIT", "", "q", "chatgpt", response)

	if !strings.HasPrefix(result.Context, "...") {
		t.Errorf("clipped context must start with ellipsis, got %q", result.Context[:10])
	}
	if len(result.Context) > 400 {
		t.Errorf("context length = %d, must be capped at 400", len(result.Context))
	}
	if !strings.Contains(result.Context, "SecureIT") {
		t.Error("context must contain the mention itself")
	}
}

func TestExtractCitedSources(t *testing.T) {
	analyzer := newAnalyzer()

	sources := analyzer.ExtractCitedSources(
		"Quellen: https://example.com/report, https://example.com/report und www.test.de.")

	want := []string{"https://example.com/report", "www.test.de"}
	if !reflect.DeepEqual(sources, want) {
		t.Errorf("ExtractCitedSources = %v, want %v", sources, want)
	}

	if got := analyzer.ExtractCitedSources("Keine Links hier."); got != nil {
		t.Errorf("expected nil for linkless text, got %v", got)
	}
}

func queryResult(platform, category string, analysis *models.MentionResult) *models.QueryResult {
	return &models.QueryResult{
		Query:    "q",
		Category: category,
		Platform: platform,
		Analysis: analysis,
	}
}

func TestAggregateAnalysis(t *testing.T) {
	analyzer := newAnalyzer()

	results := []*models.QueryResult{
		queryResult("chatgpt", "service", &models.MentionResult{
			Mentioned: true, MentionType: models.MentionDirectRecommendation,
			Position: intPtr(1), Sentiment: models.SentimentPositive,
			CompetitorsMentioned: []string{"CrowdStrike", "Sophos"},
		}),
		queryResult("chatgpt", "brand", &models.MentionResult{
			Mentioned: true, MentionType: models.MentionNeutral,
			Position: intPtr(3), Sentiment: models.SentimentNegative,
			CompetitorsMentioned: []string{"CrowdStrike"},
		}),
		queryResult("claude", "service", &models.MentionResult{
			Mentioned: false, MentionType: models.MentionNone, Sentiment: models.SentimentNeutral,
		}),
		queryResult("claude", "price", nil),
	}

	analysis := analyzer.AggregateAnalysis("SecureIT GmbH", results)

	if analysis.TotalQueries != 4 {
		t.Errorf("TotalQueries = %d, want 4", analysis.TotalQueries)
	}
	if analysis.TotalMentions != 2 {
		t.Errorf("TotalMentions = %d, want 2", analysis.TotalMentions)
	}
	if analysis.MentionRate != 50.0 {
		t.Errorf("MentionRate = %v, want 50.0", analysis.MentionRate)
	}
	if analysis.AvgPosition == nil || *analysis.AvgPosition != 2.0 {
		t.Errorf("AvgPosition = %v, want 2.0", analysis.AvgPosition)
	}

	wantSentiment := map[models.Sentiment]int{
		models.SentimentPositive: 1,
		models.SentimentNegative: 1,
	}
	if !reflect.DeepEqual(analysis.SentimentDistribution, wantSentiment) {
		t.Errorf("SentimentDistribution = %v, want %v", analysis.SentimentDistribution, wantSentiment)
	}

	wantCompetitors := []models.CompetitorMention{
		{Name: "CrowdStrike", Mentions: 2},
		{Name: "Sophos", Mentions: 1},
	}
	if !reflect.DeepEqual(analysis.TopCompetitors, wantCompetitors) {
		t.Errorf("TopCompetitors = %v, want %v", analysis.TopCompetitors, wantCompetitors)
	}

	chatgpt := analysis.PlatformPerformance["chatgpt"]
	if chatgpt.MentionRate != 100.0 || chatgpt.TotalQueries != 2 || chatgpt.TotalMentions != 2 {
		t.Errorf("chatgpt performance = %+v", chatgpt)
	}
	claude := analysis.PlatformPerformance["claude"]
	if claude.MentionRate != 0.0 || claude.TotalQueries != 2 {
		t.Errorf("claude performance = %+v", claude)
	}

	// Three categories means top-3 and bottom-3 cover the same set
	if !reflect.DeepEqual(analysis.BestCategories, []string{"brand", "service", "price"}) {
		t.Errorf("BestCategories = %v", analysis.BestCategories)
	}
	if !reflect.DeepEqual(analysis.WorstCategories, []string{"brand", "service", "price"}) {
		t.Errorf("WorstCategories = %v", analysis.WorstCategories)
	}
}

func TestAggregateAnalysisSWOT(t *testing.T) {
	analyzer := newAnalyzer()

	results := []*models.QueryResult{
		queryResult("chatgpt", "service", &models.MentionResult{
			Mentioned: true, Position: intPtr(1), Sentiment: models.SentimentPositive,
		}),
		queryResult("chatgpt", "brand", &models.MentionResult{
			Mentioned: true, Position: intPtr(3), Sentiment: models.SentimentNegative,
		}),
		queryResult("claude", "service", &models.MentionResult{Mentioned: false}),
		queryResult("claude", "price", nil),
	}

	analysis := analyzer.AggregateAnalysis("SecureIT GmbH", results)

	// Mention rate 50 and avg position 2: top-3 strength only
	if !reflect.DeepEqual(analysis.Strengths, []string{"Regelmäßige Top-3-Platzierung"}) {
		t.Errorf("Strengths = %v", analysis.Strengths)
	}
	if !reflect.DeepEqual(analysis.Weaknesses, []string{"Negative Erwähnungen vorhanden"}) {
		t.Errorf("Weaknesses = %v", analysis.Weaknesses)
	}
	if len(analysis.Opportunities) != 2 {
		t.Errorf("Opportunities = %v, want 2 entries", analysis.Opportunities)
	}
}

func TestAggregateAnalysisEmpty(t *testing.T) {
	analyzer := newAnalyzer()

	analysis := analyzer.AggregateAnalysis("SecureIT GmbH", nil)

	if analysis.TotalQueries != 0 || analysis.TotalMentions != 0 {
		t.Errorf("empty input: %+v", analysis)
	}
	if analysis.MentionRate != 0.0 {
		t.Errorf("MentionRate = %v, want 0", analysis.MentionRate)
	}
	if analysis.AvgPosition != nil {
		t.Errorf("AvgPosition = %v, want nil", *analysis.AvgPosition)
	}
	if len(analysis.TopCompetitors) != 0 {
		t.Errorf("TopCompetitors = %v, want empty", analysis.TopCompetitors)
	}
}
