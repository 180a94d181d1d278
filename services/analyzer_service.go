// services/analyzer_service.go
package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
	"mvdan.cc/xurls/v2"
)

type analyzerService struct {
	knownCompetitors []string
	urlPattern       *regexp.Regexp
}

// Fallback competitor list used when the industry config does not supply
// known_competitors.
var defaultCompetitors = []string{
	"CrowdStrike", "Palo Alto Networks", "Fortinet", "Check Point",
	"Cisco", "SentinelOne", "Trend Micro", "Sophos", "McAfee",
	"Symantec", "FireEye", "Proofpoint", "Zscaler", "Okta",
	"Tenable", "Rapid7", "Qualys", "Carbon Black", "Cylance",
}

// NewAnalyzerService creates an analyzer. cfg may be nil; the fallback
// competitor list is used in that case.
func NewAnalyzerService(cfg *industry.Config) AnalyzerService {
	competitors := defaultCompetitors
	if cfg != nil && len(cfg.KnownCompetitors) > 0 {
		competitors = cfg.KnownCompetitors
	}
	return &analyzerService{
		knownCompetitors: competitors,
		urlPattern:       xurls.Relaxed(),
	}
}

const (
	contextWindow  = 200
	maxContextLen  = 400
	topCompetitors = 10
)

var recommendationKeywords = []string{
	"empfehle", "empfehlenswert", "empfohlen", "führend", "top", "beste",
	"hervorragend", "ausgezeichnet", "ideal", "perfekt", "sollten sie",
	"rate ich", "beste wahl", "first choice", "recommend", "leading",
}

var positiveMentionKeywords = []string{
	"gut", "sehr gut", "stark", "solide", "zuverlässig", "bewährt",
	"erfolgreich", "innovativ", "leistungsstark", "effektiv",
	"good", "great", "strong", "reliable", "effective",
}

var negativeSentimentKeywords = []string{
	"schlecht", "schwach", "mangelhaft", "unzureichend", "problematisch",
	"kritisch", "negativ", "nachteil", "nicht empfehlenswert",
	"bad", "poor", "weak", "problematic", "issues", "problems",
}

var positiveSentimentKeywords = []string{
	"empfehle", "gut", "sehr gut", "beste", "führend", "hervorragend",
	"ausgezeichnet", "stark", "innovativ", "zuverlässig", "erfolgreich",
	"recommend", "great", "excellent", "best", "leading", "strong",
}

var (
	camelBoundaryPattern = regexp.MustCompile(`([a-z])([A-Z])`)
	listMarkerPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`\d+\.\s`),
		regexp.MustCompile(`[•\-\*]\s`),
		regexp.MustCompile(`\n\s*\d+\)`),
	}
	positionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\.\s`),
		regexp.MustCompile(`\n\s*(\d+)\)`),
	}
	rankPhrasePattern = regexp.MustCompile(`(?:platz|rang|position)\s+(\d+)`)
)

type rawMention struct {
	offset     int
	sourceType string // name, domain, variant
	context    string
}

// AnalyzeResponse inspects one LLM response for mentions of the company
// and classifies the earliest one.
func (s *analyzerService) AnalyzeResponse(companyName, companyDomain, query, platform, responseText string) *models.MentionResult {
	cleanDomain := normalizeDomain(companyDomain)

	mentions := s.findMentions(companyName, cleanDomain, responseText)
	if len(mentions) == 0 {
		return &models.MentionResult{
			Mentioned:            false,
			MentionType:          models.MentionNone,
			MentionCount:         0,
			Position:             nil,
			Context:              "",
			Sentiment:            models.SentimentNeutral,
			CompetitorsMentioned: []string{},
		}
	}

	// The earliest mention is the authoritative one.
	best := mentions[0]

	mentionType := s.determineMentionType(best.context)
	position := extractPosition(best.context)
	sentiment := analyzeSentiment(best.context)
	competitors := s.extractCompetitors(responseText, companyName)

	context := best.context
	if len(context) > maxContextLen {
		context = context[:maxContextLen]
	}

	return &models.MentionResult{
		Mentioned:            true,
		MentionType:          mentionType,
		MentionCount:         len(mentions),
		Position:             position,
		Context:              context,
		Sentiment:            sentiment,
		CompetitorsMentioned: competitors,
		CitedSources:         s.ExtractCitedSources(responseText),
	}
}

func normalizeDomain(domain string) string {
	domain = strings.ReplaceAll(domain, "www.", "")
	domain = strings.ReplaceAll(domain, "https://", "")
	domain = strings.ReplaceAll(domain, "http://", "")
	return domain
}

// findMentions scans for the company name, its normalized domain and its
// name variants, deduplicated by character offset (first-seen type wins)
// and sorted ascending.
func (s *analyzerService) findMentions(companyName, cleanDomain, responseText string) []rawMention {
	var mentions []rawMention

	scan := func(needle, sourceType string) {
		if needle == "" {
			return
		}
		pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(needle))
		if err != nil {
			return
		}
		for _, loc := range pattern.FindAllStringIndex(responseText, -1) {
			mentions = append(mentions, rawMention{
				offset:     loc[0],
				sourceType: sourceType,
				context:    extractContext(responseText, loc[0]),
			})
		}
	}

	scan(companyName, "name")
	scan(cleanDomain, "domain")
	for _, variant := range generateNameVariants(companyName) {
		scan(variant, "variant")
	}

	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].offset < mentions[j].offset
	})

	seen := make(map[int]bool)
	unique := make([]rawMention, 0, len(mentions))
	for _, m := range mentions {
		if seen[m.offset] {
			continue
		}
		seen[m.offset] = true
		unique = append(unique, m)
	}

	return unique
}

// extractContext cuts a ±200 character window around the mention, with
// ellipses marking clipped edges.
func extractContext(text string, offset int) string {
	start := offset - contextWindow
	if start < 0 {
		start = 0
	}
	end := offset + contextWindow
	if end > len(text) {
		end = len(text)
	}

	context := text[start:end]
	if start > 0 {
		context = "..." + context
	}
	if end < len(text) {
		context = context + "..."
	}

	return strings.TrimSpace(context)
}

// generateNameVariants derives spellings an LLM might use instead of the
// canonical name: camelCase split ("CrowdStrike" -> "Crowd Strike") and
// hyphen/space swaps.
func generateNameVariants(companyName string) []string {
	var variants []string

	spaced := camelBoundaryPattern.ReplaceAllString(companyName, "$1 $2")
	if spaced != companyName {
		variants = append(variants, spaced)
	}

	if strings.Contains(companyName, "-") {
		variants = append(variants, strings.ReplaceAll(companyName, "-", " "))
	} else if strings.Contains(companyName, " ") {
		variants = append(variants, strings.ReplaceAll(companyName, " ", "-"))
	}

	return variants
}

// determineMentionType classifies the mention from its local context.
// Recommendation keywords dominate, then top-3 list placement, then
// positive phrasing.
func (s *analyzerService) determineMentionType(context string) models.MentionType {
	contextLower := strings.ToLower(context)

	for _, keyword := range recommendationKeywords {
		if strings.Contains(contextLower, keyword) {
			return models.MentionDirectRecommendation
		}
	}

	for _, pattern := range listMarkerPatterns {
		if pattern.MatchString(context) {
			if position := extractPosition(context); position != nil && *position <= 3 {
				return models.MentionListedAmongTop
			}
		}
	}

	for _, keyword := range positiveMentionKeywords {
		if strings.Contains(contextLower, keyword) {
			return models.MentionPositive
		}
	}

	return models.MentionNeutral
}

// extractPosition finds a numbered-list marker or an explicit
// "Platz/Rang/Position N" phrase in the context. The first numeric
// capture wins; nil if no marker is present.
func extractPosition(context string) *int {
	for _, pattern := range positionPatterns {
		if match := pattern.FindStringSubmatch(context); match != nil {
			if n, err := strconv.Atoi(match[1]); err == nil {
				return &n
			}
		}
	}

	if match := rankPhrasePattern.FindStringSubmatch(strings.ToLower(context)); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			return &n
		}
	}

	return nil
}

// analyzeSentiment checks negative keywords before positive ones; absence
// of signal is neutral.
func analyzeSentiment(context string) models.Sentiment {
	contextLower := strings.ToLower(context)

	for _, keyword := range negativeSentimentKeywords {
		if strings.Contains(contextLower, keyword) {
			return models.SentimentNegative
		}
	}

	for _, keyword := range positiveSentimentKeywords {
		if strings.Contains(contextLower, keyword) {
			return models.SentimentPositive
		}
	}

	return models.SentimentNeutral
}

// extractCompetitors scans the full response for known competitor names,
// excluding the target company itself.
func (s *analyzerService) extractCompetitors(responseText, companyName string) []string {
	mentioned := []string{}

	for _, competitor := range s.knownCompetitors {
		if strings.EqualFold(competitor, companyName) {
			continue
		}
		pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(competitor))
		if err != nil {
			continue
		}
		if pattern.MatchString(responseText) {
			mentioned = append(mentioned, competitor)
		}
	}

	return mentioned
}

// ExtractCitedSources pulls the URLs an answer cites, deduplicated in
// order of first appearance.
func (s *analyzerService) ExtractCitedSources(responseText string) []string {
	matches := s.urlPattern.FindAllString(responseText, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var sources []string
	for _, url := range matches {
		url = strings.TrimRight(url, ".,)")
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		sources = append(sources, url)
	}

	return sources
}

// AggregateAnalysis rolls all per-response results of one scan up into
// rates, rankings, per-group performance and SWOT bullets.
func (s *analyzerService) AggregateAnalysis(companyName string, results []*models.QueryResult) *models.AggregatedAnalysis {
	totalQueries := len(results)
	totalMentions := 0
	for _, r := range results {
		if r.Analysis != nil && r.Analysis.Mentioned {
			totalMentions++
		}
	}

	mentionRate := 0.0
	if totalQueries > 0 {
		mentionRate = float64(totalMentions) / float64(totalQueries) * 100
	}

	var avgPosition *float64
	var positionSum, positionCount int
	for _, r := range results {
		if r.Analysis != nil && r.Analysis.Position != nil {
			positionSum += *r.Analysis.Position
			positionCount++
		}
	}
	if positionCount > 0 {
		avg := round2(float64(positionSum) / float64(positionCount))
		avgPosition = &avg
	}

	sentimentCounts := make(map[models.Sentiment]int)
	for _, r := range results {
		if r.Analysis != nil && r.Analysis.Mentioned {
			sentiment := r.Analysis.Sentiment
			if sentiment == "" {
				sentiment = models.SentimentNeutral
			}
			sentimentCounts[sentiment]++
		}
	}

	topComp := s.rankCompetitors(results)
	best, worst := s.analyzeCategoryPerformance(results)
	platformPerf := s.analyzePlatformPerformance(results)
	strengths, weaknesses, opportunities := s.generateSWOT(mentionRate, avgPosition, sentimentCounts, worst)

	return &models.AggregatedAnalysis{
		TotalQueries:          totalQueries,
		TotalMentions:         totalMentions,
		MentionRate:           round2(mentionRate),
		AvgPosition:           avgPosition,
		SentimentDistribution: sentimentCounts,
		Strengths:             strengths,
		Weaknesses:            weaknesses,
		Opportunities:         opportunities,
		TopCompetitors:        topComp,
		BestCategories:        best,
		WorstCategories:       worst,
		PlatformPerformance:   platformPerf,
		CitedSources:          s.aggregateCitedSources(results),
	}
}

// rankCompetitors sums competitor mentions across all results, top 10 by
// count, ties kept in first-seen order.
func (s *analyzerService) rankCompetitors(results []*models.QueryResult) []models.CompetitorMention {
	counts := make(map[string]int)
	var order []string

	for _, r := range results {
		if r.Analysis == nil {
			continue
		}
		for _, competitor := range r.Analysis.CompetitorsMentioned {
			if _, ok := counts[competitor]; !ok {
				order = append(order, competitor)
			}
			counts[competitor]++
		}
	}

	ranked := make([]models.CompetitorMention, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, models.CompetitorMention{Name: name, Mentions: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Mentions > ranked[j].Mentions
	})

	if len(ranked) > topCompetitors {
		ranked = ranked[:topCompetitors]
	}
	return ranked
}

type groupStats struct {
	total     int
	mentioned int
}

// analyzeCategoryPerformance returns the top-3 and bottom-3 categories of
// one mention-rate sort. With fewer than six categories the two lists can
// overlap; that behavior is intentional.
func (s *analyzerService) analyzeCategoryPerformance(results []*models.QueryResult) (best, worst []string) {
	stats := make(map[string]*groupStats)
	for _, r := range results {
		category := r.Category
		if category == "" {
			category = "unknown"
		}
		if stats[category] == nil {
			stats[category] = &groupStats{}
		}
		stats[category].total++
		if r.Analysis != nil && r.Analysis.Mentioned {
			stats[category].mentioned++
		}
	}

	type categoryRate struct {
		name string
		rate float64
	}
	var rates []categoryRate
	for name, st := range stats {
		rate := 0.0
		if st.total > 0 {
			rate = float64(st.mentioned) / float64(st.total) * 100
		}
		rates = append(rates, categoryRate{name: name, rate: rate})
	}
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].rate != rates[j].rate {
			return rates[i].rate > rates[j].rate
		}
		return rates[i].name < rates[j].name
	})

	for i, r := range rates {
		if i < 3 {
			best = append(best, r.name)
		}
	}
	start := len(rates) - 3
	if start < 0 {
		start = 0
	}
	for _, r := range rates[start:] {
		worst = append(worst, r.name)
	}

	return best, worst
}

func (s *analyzerService) analyzePlatformPerformance(results []*models.QueryResult) map[string]models.PlatformPerformance {
	stats := make(map[string]*groupStats)
	for _, r := range results {
		platform := r.Platform
		if platform == "" {
			platform = "unknown"
		}
		if stats[platform] == nil {
			stats[platform] = &groupStats{}
		}
		stats[platform].total++
		if r.Analysis != nil && r.Analysis.Mentioned {
			stats[platform].mentioned++
		}
	}

	performance := make(map[string]models.PlatformPerformance, len(stats))
	for platform, st := range stats {
		rate := 0.0
		if st.total > 0 {
			rate = float64(st.mentioned) / float64(st.total) * 100
		}
		performance[platform] = models.PlatformPerformance{
			MentionRate:   round2(rate),
			TotalQueries:  st.total,
			TotalMentions: st.mentioned,
		}
	}

	return performance
}

func (s *analyzerService) aggregateCitedSources(results []*models.QueryResult) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, r := range results {
		if r.Analysis == nil {
			continue
		}
		for _, url := range r.Analysis.CitedSources {
			if seen[url] {
				continue
			}
			seen[url] = true
			sources = append(sources, url)
		}
	}
	return sources
}

// generateSWOT derives strength/weakness/opportunity bullets from fixed
// thresholds on the aggregate numbers.
func (s *analyzerService) generateSWOT(mentionRate float64, avgPosition *float64, sentimentCounts map[models.Sentiment]int, worstCategories []string) (strengths, weaknesses, opportunities []string) {
	if mentionRate > 50 {
		strengths = append(strengths, "Hohe Sichtbarkeit in KI-Assistenten")
	}
	if avgPosition != nil && *avgPosition <= 2 {
		strengths = append(strengths, "Regelmäßige Top-3-Platzierung")
	}
	if sentimentCounts[models.SentimentPositive] > sentimentCounts[models.SentimentNegative] {
		strengths = append(strengths, "Überwiegend positive Erwähnungen")
	}

	if mentionRate < 30 {
		weaknesses = append(weaknesses, "Geringe Sichtbarkeit in KI-Assistenten")
	}
	if avgPosition != nil && *avgPosition > 5 {
		weaknesses = append(weaknesses, "Selten in Top-Empfehlungen")
	}
	if sentimentCounts[models.SentimentNegative] > 0 {
		weaknesses = append(weaknesses, "Negative Erwähnungen vorhanden")
	}

	if len(worstCategories) > 0 {
		opportunities = append(opportunities, fmt.Sprintf("Verbesserungspotenzial in Kategorien: %s", strings.Join(worstCategories, ", ")))
	}
	if mentionRate < 70 {
		opportunities = append(opportunities, "Ausbau der Content-Präsenz auf autoritativen Quellen")
	}

	return strengths, weaknesses, opportunities
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
