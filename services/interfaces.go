// services/interfaces.go
package services

import (
	"context"

	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
	"github.com/invopop/jsonschema"
)

// QueryGeneratorService produces the question set to ask LLM platforms for
// one company, honoring the industry's query configuration.
type QueryGeneratorService interface {
	GenerateQueries(company models.CompanyInput) []models.Query
	QueryVersion() string
}

// AnalyzerService detects and classifies one company's presence inside a
// single LLM response, and rolls many such results up into one analysis.
type AnalyzerService interface {
	AnalyzeResponse(companyName, companyDomain, query, platform, responseText string) *models.MentionResult
	AggregateAnalysis(companyName string, results []*models.QueryResult) *models.AggregatedAnalysis
	ExtractCitedSources(responseText string) []string
}

// ScoreResult is one platform-tagged analysis record fed into the scorer.
// Mention data may sit either inline (flat legacy payloads) or nested under
// Analysis (scan worker records); the scorer accepts both.
type ScoreResult struct {
	Platform             string `json:"platform"`
	Category             string `json:"category"`
	models.MentionResult        // flat shape
	Analysis             *models.MentionResult `json:"analysis,omitempty"`
}

// ScorerService turns classified mentions into comparable 0-100 scores.
type ScorerService interface {
	ScoreSingleResult(result *models.MentionResult) float64
	CalculatePlatformScores(results []*ScoreResult) map[string]float64
	CalculateOverallScore(platformScores map[string]float64) float64
	CalculateCategoryScores(results []*ScoreResult) map[string]float64
	GetScoreBreakdown(result *models.MentionResult) *models.ScoreBreakdown
	CompareToCompetitors(ourScore float64, competitorScores map[string]float64) *models.CompetitorComparison
}

// ReportService generates recommendations and the HTML scan report.
type ReportService interface {
	GenerateRecommendations(companyName string, analysis *models.AggregatedAnalysis, platformScores map[string]float64, cfg *industry.Config) []string
	GenerateReportHTML(company models.CompanyInput, result *models.ScanResult, cfg *industry.Config) (string, error)
}

// ContractService normalizes scan output into the stable shapes the
// frontend contract requires.
type ContractService interface {
	NormalizePlatformScores(platformScores map[string]float64) map[string]float64
	ExtractCompetitors(analysis *models.AggregatedAnalysis) []models.CompetitorMention
}

// CostService maps model names and token counts to USD costs.
type CostService interface {
	CalculateCost(model string, inputTokens, outputTokens int) float64
	EstimateTokens(text string) int
}

// LLMClientService fans one query out to every configured platform.
type LLMClientService interface {
	QueryAllPlatforms(ctx context.Context, query string, platforms map[string]industry.PlatformConfig) []*models.PlatformResponse
	QueryPlatform(ctx context.Context, platform, query, model string) *models.PlatformResponse
}

// ExtractService performs AI-assisted mention extraction as an optional
// cross-check of the heuristic analyzer.
type ExtractService interface {
	ExtractCompanyMentions(ctx context.Context, question, response, targetCompany string) (*MentionsExtractionResponse, error)
}

// AIProvider is one LLM platform backend.
type AIProvider interface {
	RunQuestion(ctx context.Context, query string) (*AIResponse, error)
	GetProviderName() string
}

// AIResponse contains the response from an AI provider.
type AIResponse struct {
	Response     string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// Structured output types for AI-assisted extraction.
type MentionsExtractionResponse struct {
	TargetCompany *CompanyExtract  `json:"target_company"`
	Competitors   []CompanyExtract `json:"competitors"`
}

type CompanyExtract struct {
	Name          string `json:"name"`
	Rank          int    `json:"rank"`
	MentionedText string `json:"mentioned_text"`
	TextSentiment string `json:"text_sentiment"`
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
