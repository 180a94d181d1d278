// services/report_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
)

type reportService struct {
	tmpl *template.Template
}

func NewReportService() ReportService {
	return &reportService{
		tmpl: template.Must(template.New("report").Funcs(template.FuncMap{
			"upper": strings.ToUpper,
			// Accepts both float64 and the optional *float64 fields.
			"score1": func(v any) string {
				switch x := v.(type) {
				case float64:
					return fmt.Sprintf("%.1f", x)
				case *float64:
					if x == nil {
						return ""
					}
					return fmt.Sprintf("%.1f", *x)
				}
				return ""
			},
		}).Parse(reportTemplate)),
	}
}

// GenerateRecommendations derives up to 10 actionable recommendations from
// the aggregated analysis and the platform scores.
func (s *reportService) GenerateRecommendations(companyName string, analysis *models.AggregatedAnalysis, platformScores map[string]float64, cfg *industry.Config) []string {
	var recommendations []string

	mentionRate := 0.0
	var avgPosition *float64
	var worstCategories []string
	var topCompetitors []models.CompetitorMention
	negativeCount := 0
	totalMentions := 0
	if analysis != nil {
		mentionRate = analysis.MentionRate
		avgPosition = analysis.AvgPosition
		worstCategories = analysis.WorstCategories
		topCompetitors = analysis.TopCompetitors
		negativeCount = analysis.SentimentDistribution[models.SentimentNegative]
		totalMentions = analysis.TotalMentions
	}

	for _, platform := range sortedPlatforms(platformScores) {
		if score := platformScores[platform]; score < 30 {
			recommendations = append(recommendations, fmt.Sprintf(
				"**%s-Optimierung**: Ihre Sichtbarkeit auf %s ist mit %.1f/100 Punkten sehr gering. "+
					"Erstellen Sie hochwertige Inhalte auf autoritativen Quellen, die häufig von %s zitiert werden.",
				strings.ToUpper(platform), platform, score, platform))
		}
	}

	if mentionRate < 30 {
		recommendations = append(recommendations, fmt.Sprintf(
			"**Markenpräsenz aufbauen**: Ihr Markenname '%s' wird in nur %.1f%% der Fälle von KI-Assistenten erkannt. "+
				"Fokussieren Sie sich auf Gastbeiträge, Branchenverzeichnisse, autoritative Backlinks und strukturierte Daten.",
			companyName, mentionRate))
	}

	if avgPosition != nil && *avgPosition > 3 {
		recommendations = append(recommendations, fmt.Sprintf(
			"**Top-3-Platzierung anstreben**: Sie werden durchschnittlich auf Position %.1f erwähnt. "+
				"Veröffentlichen Sie Thought-Leadership-Content und sammeln Sie Kundenbewertungen auf relevanten Plattformen.",
			*avgPosition))
	} else if avgPosition == nil && mentionRate > 0 {
		recommendations = append(recommendations,
			"**Ranking-Position verbessern**: Sie werden erwähnt, aber selten in Listen gerankt. "+
				"Erstellen Sie Vergleichsinhalte und positionieren Sie sich aktiv gegen Wettbewerber.")
	}

	if negativeCount > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"**Negative Erwähnungen adressieren**: Es wurden %d negative Erwähnungen gefunden. "+
				"Analysieren Sie Ihre Online-Bewertungen und reagieren Sie professionell auf Kritik.",
			negativeCount))
	}

	if len(worstCategories) > 0 {
		limit := len(worstCategories)
		if limit > 3 {
			limit = 3
		}
		recommendations = append(recommendations, fmt.Sprintf(
			"**Content-Lücken schließen**: Schwache Performance in Kategorien: %s. "+
				"Erstellen Sie gezielten Content wie Blog-Posts, How-to-Guides und Video-Formate zu diesen Bereichen.",
			strings.Join(worstCategories[:limit], ", ")))
	}

	if len(topCompetitors) > 0 {
		leader := topCompetitors[0]
		if leader.Mentions > totalMentions*2 {
			recommendations = append(recommendations, fmt.Sprintf(
				"**Wettbewerber-Differenzierung**: %s wird %dx erwähnt (vs. Ihre %dx). "+
					"Analysieren Sie deren Content-Strategie und differenzieren Sie sich durch Nischen-Expertise.",
				leader.Name, leader.Mentions, totalMentions))
		}
	}

	if mentionRate > 0 && mentionRate < 70 {
		recommendations = append(recommendations,
			"**Technische GEO-Optimierung**: Pflegen Sie LinkedIn-, Crunchbase- und Knowledge-Graph-Einträge "+
				"und implementieren Sie strukturierte Daten (JSON-LD).")
	}

	if mentionRate < 50 {
		recommendations = append(recommendations,
			"**Content-Marketing intensivieren**: Regelmäßige Blog-Posts, Whitepapers, Webinare und "+
				"zitierfähige Original-Research stärken Ihre GEO-Sichtbarkeit.")
	}

	recommendations = append(recommendations,
		"**Autorität aufbauen**: KI-Modelle bevorzugen autoritäre Quellen. Publizieren Sie in Fachzeitschriften, "+
			"sprechen Sie auf Konferenzen und bieten Sie Expert-Quotes für Journalisten an.")

	recommendations = append(recommendations,
		"**GEO-Monitoring etablieren**: Führen Sie monatliche Scans durch, tracken Sie Veränderungen in "+
			"Platform-Scores und passen Sie Ihre Strategie basierend auf Daten an.")

	if len(recommendations) > 10 {
		recommendations = recommendations[:10]
	}
	return recommendations
}

func sortedPlatforms(platformScores map[string]float64) []string {
	platforms := make([]string, 0, len(platformScores))
	for platform := range platformScores {
		platforms = append(platforms, platform)
	}
	// Stable recommendation order
	sort.Strings(platforms)
	return platforms
}

type reportData struct {
	CompanyName     string
	CompanyDomain   string
	GeneratedAt     string
	OverallScore    float64
	ScoreColor      string
	PlatformScores  map[string]float64
	Analysis        *models.AggregatedAnalysis
	Recommendations []string
	QueryResults    []*models.QueryResult
}

// GenerateReportHTML renders the scan report.
func (s *reportService) GenerateReportHTML(company models.CompanyInput, result *models.ScanResult, cfg *industry.Config) (string, error) {
	queryResults := result.QueryResults
	if len(queryResults) > 50 {
		// Full result sets blow the report up; the stored scan keeps everything.
		queryResults = queryResults[:50]
	}

	data := reportData{
		CompanyName:     company.Name,
		CompanyDomain:   company.Domain,
		GeneratedAt:     time.Now().Format("02.01.2006 15:04"),
		OverallScore:    result.OverallScore,
		ScoreColor:      scoreColor(result.OverallScore),
		PlatformScores:  result.PlatformScores,
		Analysis:        result.Analysis,
		Recommendations: result.Recommendations,
		QueryResults:    queryResults,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func scoreColor(score float64) string {
	switch {
	case score >= 80:
		return "#28a745"
	case score >= 60:
		return "#ffc107"
	case score >= 40:
		return "#fd7e14"
	default:
		return "#dc3545"
	}
}

const reportTemplate = `<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="UTF-8">
<title>GEO Intelligence Report - {{.CompanyName}}</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; color: #333; background: #f5f7fa; padding: 20px; }
.container { max-width: 1100px; margin: 0 auto; background: white; border-radius: 12px; overflow: hidden; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 40px; text-align: center; }
.score-section { padding: 40px; text-align: center; border-bottom: 1px solid #e0e0e0; }
.overall-score { display: inline-flex; flex-direction: column; align-items: center; justify-content: center; width: 180px; height: 180px; border-radius: 50%; background: {{.ScoreColor}}; color: white; }
.overall-score .number { font-size: 3.5em; font-weight: bold; }
.section { margin: 30px 40px; }
.section h2 { color: #667eea; border-bottom: 2px solid #667eea; padding-bottom: 8px; }
.platform-card { display: inline-block; background: #f8f9fa; border-left: 4px solid #667eea; border-radius: 8px; padding: 16px; margin: 8px; min-width: 200px; }
.recommendation { background: #f0f7ff; border-left: 4px solid #667eea; padding: 12px 16px; margin-bottom: 12px; border-radius: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { text-align: left; padding: 10px; border-bottom: 1px solid #e0e0e0; }
th { background: #f8f9fa; color: #667eea; }
.competitor { display: flex; justify-content: space-between; background: #f8f9fa; padding: 8px 12px; margin-bottom: 6px; border-radius: 4px; }
.footer { background: #f8f9fa; padding: 20px 40px; text-align: center; color: #666; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>{{.CompanyName}}</h1>
<p>GEO Intelligence Report - {{.CompanyDomain}}</p>
<p>Erstellt am {{.GeneratedAt}}</p>
</div>
<div class="score-section">
<div class="overall-score"><div class="number">{{score1 .OverallScore}}</div><div>/ 100</div></div>
<p>Gesamtsichtbarkeit in KI-Assistenten</p>
</div>
<div class="section">
<h2>Plattform-Performance</h2>
{{range $platform, $score := .PlatformScores}}
<div class="platform-card"><h3>{{upper $platform}}</h3><div style="font-size:1.8em;font-weight:bold;color:#667eea;">{{score1 $score}}</div></div>
{{end}}
</div>
{{with .Analysis}}
<div class="section">
<h2>Wichtige Kennzahlen</h2>
<p>Gesamt-Queries: {{.TotalQueries}} &middot; Erwähnungen: {{.TotalMentions}} &middot; Erwähnungsrate: {{score1 .MentionRate}}%{{if .AvgPosition}} &middot; &Oslash; Position: {{score1 .AvgPosition}}{{end}}</p>
</div>
<div class="section">
<h2>Stärken &amp; Schwächen</h2>
<h3 style="color:#28a745;">Stärken</h3>
<ul>{{range .Strengths}}<li>{{.}}</li>{{else}}<li>Noch keine signifikanten Stärken identifiziert</li>{{end}}</ul>
<h3 style="color:#dc3545;">Schwächen</h3>
<ul>{{range .Weaknesses}}<li>{{.}}</li>{{else}}<li>Keine kritischen Schwächen gefunden</li>{{end}}</ul>
</div>
<div class="section">
<h2>Top Wettbewerber</h2>
{{range .TopCompetitors}}<div class="competitor"><span>{{.Name}}</span><span>{{.Mentions}} Erwähnungen</span></div>{{else}}<p>Keine Wettbewerber in den Ergebnissen erwähnt.</p>{{end}}
</div>
{{end}}
<div class="section">
<h2>Handlungsempfehlungen</h2>
{{range $i, $rec := .Recommendations}}<div class="recommendation">{{$rec}}</div>{{end}}
</div>
<div class="section">
<h2>Detaillierte Query-Ergebnisse</h2>
<table>
<thead><tr><th>Query</th><th>Plattform</th><th>Kategorie</th><th>Erwähnt</th><th>Position</th><th>Sentiment</th></tr></thead>
<tbody>
{{range .QueryResults}}<tr><td>{{.Query}}</td><td>{{upper .Platform}}</td><td>{{.Category}}</td><td>{{if .Analysis}}{{if .Analysis.Mentioned}}Ja{{else}}Nein{{end}}{{else}}-{{end}}</td><td>{{if .Analysis}}{{with .Analysis.Position}}{{.}}{{else}}-{{end}}{{else}}-{{end}}</td><td>{{if .Analysis}}{{.Analysis.Sentiment}}{{else}}-{{end}}</td></tr>
{{end}}
</tbody>
</table>
</div>
<div class="footer">
<p>Generiert von GEO Intelligence Engine</p>
</div>
</div>
</body>
</html>
`
