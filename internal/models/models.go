// internal/models/models.go
package models

import "time"

// MentionType classifies how prominently a company appears in an answer.
type MentionType string

const (
	MentionDirectRecommendation MentionType = "direct_recommendation"
	MentionListedAmongTop       MentionType = "listed_among_top"
	MentionPositive             MentionType = "mentioned_positively"
	MentionNeutral              MentionType = "mentioned_neutrally"
	MentionNone                 MentionType = "not_mentioned"
)

// Sentiment of a mention context.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// CompanyInput identifies the company a scan is run for.
type CompanyInput struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Query is a single generated question tagged with category and intent.
type Query struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Intent   string `json:"intent"`
}

// MentionResult is the analysis of one LLM response for one company.
// When Mentioned is false the remaining fields are canonical: type
// not_mentioned, count 0, nil position, empty context.
type MentionResult struct {
	Mentioned            bool        `json:"mentioned"`
	MentionType          MentionType `json:"mention_type"`
	MentionCount         int         `json:"mention_count"`
	Position             *int        `json:"position"`
	Context              string      `json:"context"`
	Sentiment            Sentiment   `json:"sentiment"`
	CompetitorsMentioned []string    `json:"competitors_mentioned"`
	CitedSources         []string    `json:"cited_sources,omitempty"`
}

// PlatformResponse is the uniform result of one platform call, successful
// or not. The analyzer is only ever fed successful responses.
type PlatformResponse struct {
	Platform     string  `json:"platform"`
	Query        string  `json:"query"`
	Model        string  `json:"model"`
	ResponseText string  `json:"response_text"`
	Success      bool    `json:"success"`
	Error        string  `json:"error,omitempty"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
	LatencyMS    int     `json:"latency_ms"`
}

// QueryResult ties one analyzed platform response back to the query that
// produced it. This is the per-{query,platform} record handed to scoring
// and aggregation.
type QueryResult struct {
	Query    string         `json:"query"`
	Category string         `json:"category"`
	Intent   string         `json:"intent"`
	Platform string         `json:"platform"`
	Model    string         `json:"model"`
	Analysis *MentionResult `json:"analysis"`
}

// CompetitorMention is one entry of the aggregated competitor ranking.
type CompetitorMention struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
}

// PlatformPerformance is the per-platform slice of an aggregated analysis.
type PlatformPerformance struct {
	MentionRate   float64 `json:"mention_rate"`
	TotalQueries  int     `json:"total_queries"`
	TotalMentions int     `json:"total_mentions"`
}

// AggregatedAnalysis rolls up all per-response results of one scan.
type AggregatedAnalysis struct {
	TotalQueries          int                            `json:"total_queries"`
	TotalMentions         int                            `json:"total_mentions"`
	MentionRate           float64                        `json:"mention_rate"`
	AvgPosition           *float64                       `json:"avg_position"`
	SentimentDistribution map[Sentiment]int              `json:"sentiment_distribution"`
	Strengths             []string                       `json:"strengths"`
	Weaknesses            []string                       `json:"weaknesses"`
	Opportunities         []string                       `json:"opportunities"`
	TopCompetitors        []CompetitorMention            `json:"top_competitors"`
	BestCategories        []string                       `json:"best_categories"`
	WorstCategories       []string                       `json:"worst_categories"`
	PlatformPerformance   map[string]PlatformPerformance `json:"platform_performance"`
	CitedSources          []string                       `json:"cited_sources,omitempty"`
}

// ScoreBreakdown explains how a single result's score was computed.
type ScoreBreakdown struct {
	BaseScore         float64     `json:"base_score"`
	PositionBonus     float64     `json:"position_bonus"`
	SentimentModifier float64     `json:"sentiment_modifier"`
	FinalScore        float64     `json:"final_score"`
	MentionType       MentionType `json:"mention_type"`
	Position          *int        `json:"position"`
	Sentiment         Sentiment   `json:"sentiment"`
}

// CompetitorComparison ranks our overall score against named competitors.
type CompetitorComparison struct {
	Rank             int      `json:"rank"`
	TotalCompetitors int      `json:"total_competitors"`
	Percentile       float64  `json:"percentile"`
	BetterThan       []string `json:"better_than"`
	WorseThan        []string `json:"worse_than"`
	ScoreGapToLeader float64  `json:"score_gap_to_leader"`
}

// ScanResult is everything a completed scan produces, handed to the store
// and the report generator.
type ScanResult struct {
	QueryResults    []*QueryResult      `json:"query_results"`
	Analysis        *AggregatedAnalysis `json:"analysis"`
	PlatformScores  map[string]float64  `json:"platform_scores"`
	OverallScore    float64             `json:"overall_score"`
	Recommendations []string            `json:"recommendations"`
	ReportHTML      string              `json:"report_html,omitempty"`
	TotalCost       float64             `json:"total_cost"`
	CompletedAt     time.Time           `json:"completed_at"`
}
