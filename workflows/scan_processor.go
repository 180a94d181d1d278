// workflows/scan_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/geo-intelligence/geo-workflows/internal/config"
	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
	"github.com/geo-intelligence/geo-workflows/internal/store"
	"github.com/geo-intelligence/geo-workflows/services"
)

// ScanProcessor runs the full visibility scan pipeline as a durable
// workflow: query generation, platform fan-out, analysis, scoring,
// report generation and persistence.
type ScanProcessor struct {
	repos           *store.RepositoryManager
	llmClient       services.LLMClientService
	reportService   services.ReportService
	contractService services.ContractService
	extractService  services.ExtractService
	client          inngestgo.Client
	cfg             *config.Config
}

func NewScanProcessor(
	repos *store.RepositoryManager,
	llmClient services.LLMClientService,
	reportService services.ReportService,
	contractService services.ContractService,
	extractService services.ExtractService,
	cfg *config.Config,
) *ScanProcessor {
	return &ScanProcessor{
		repos:           repos,
		llmClient:       llmClient,
		reportService:   reportService,
		contractService: contractService,
		extractService:  extractService,
		cfg:             cfg,
	}
}

func (p *ScanProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// ScanContext is the output of the first step, carried through the rest
// of the pipeline.
type ScanContext struct {
	ScanID     uuid.UUID           `json:"scan_id"`
	Company    models.CompanyInput `json:"company"`
	IndustryID string              `json:"industry_id"`
}

type queryBatch struct {
	Queries      []models.Query `json:"queries"`
	QueryVersion string         `json:"query_version"`
}

type matrixOutput struct {
	QueryResults []*models.QueryResult `json:"query_results"`
	// Raw response texts, index-aligned with QueryResults. Needed by the
	// AI-extraction cross-check, not persisted.
	Responses []string `json:"responses"`
	TotalCost float64  `json:"total_cost"`
}

type scoredOutput struct {
	Analysis       *models.AggregatedAnalysis `json:"analysis"`
	PlatformScores map[string]float64         `json:"platform_scores"`
	OverallScore   float64                    `json:"overall_score"`
}

func (p *ScanProcessor) ProcessScan() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-scan",
			Name:    "Process Scan - Full GEO Visibility Pipeline",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("scan.process", nil),
		func(ctx context.Context, input inngestgo.Input[ScanProcessEvent]) (any, error) {
			scanID := input.Event.Data.ScanID
			fmt.Printf("[ProcessScan] Starting visibility pipeline for scan: %s\n", scanID)

			// Step 1: Load scan and company, mark scan running
			scanCtx, err := step.Run(ctx, "load-scan-and-company", func(ctx context.Context) (*ScanContext, error) {
				id, err := uuid.Parse(scanID)
				if err != nil {
					return nil, fmt.Errorf("invalid scan ID: %w", err)
				}

				scan, err := p.repos.ScanRepo.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				if scan == nil {
					return nil, fmt.Errorf("scan %s not found", scanID)
				}

				company, err := p.repos.CompanyRepo.GetByID(ctx, scan.CompanyID)
				if err != nil {
					return nil, err
				}
				if company == nil {
					return nil, fmt.Errorf("company %s not found", scan.CompanyID)
				}

				if err := p.repos.ScanRepo.MarkRunning(ctx, id); err != nil {
					return nil, err
				}

				fmt.Printf("[ProcessScan] Loaded company %s (%s), industry %s\n",
					company.Name, company.Domain, company.IndustryID)

				return &ScanContext{
					ScanID: id,
					Company: models.CompanyInput{
						Name:        company.Name,
						Domain:      company.Domain,
						Description: company.Description,
						Location:    company.Location,
					},
					IndustryID: company.IndustryID,
				}, nil
			})
			if err != nil {
				p.failScan(ctx, scanID, err)
				return nil, fmt.Errorf("step load-scan-and-company failed: %w", err)
			}

			industryCfg, err := industry.Load(scanCtx.IndustryID, p.cfg.IndustryConfigDir)
			if err != nil {
				p.failScan(ctx, scanID, err)
				return nil, fmt.Errorf("failed to load industry config: %w", err)
			}
			analyzer := services.NewAnalyzerService(industryCfg)

			// Step 2: Generate queries
			batch, err := step.Run(ctx, "generate-queries", func(ctx context.Context) (*queryBatch, error) {
				generator := services.NewQueryGeneratorService(industryCfg, nil)
				queries := generator.GenerateQueries(scanCtx.Company)
				fmt.Printf("[ProcessScan] Generated %d queries\n", len(queries))
				return &queryBatch{
					Queries:      queries,
					QueryVersion: generator.QueryVersion(),
				}, nil
			})
			if err != nil {
				p.failScan(ctx, scanID, err)
				return nil, fmt.Errorf("step generate-queries failed: %w", err)
			}

			// Step 3: Query all platforms and analyze every response
			matrix, err := step.Run(ctx, "run-platform-matrix", func(ctx context.Context) (*matrixOutput, error) {
				output := &matrixOutput{}

				for _, query := range batch.Queries {
					responses := p.llmClient.QueryAllPlatforms(ctx, query.Query, industryCfg.Platforms)

					for _, response := range responses {
						output.TotalCost += response.Cost

						analysis := analyzer.AnalyzeResponse(
							scanCtx.Company.Name,
							scanCtx.Company.Domain,
							query.Query,
							response.Platform,
							response.ResponseText,
						)

						output.QueryResults = append(output.QueryResults, &models.QueryResult{
							Query:    query.Query,
							Category: query.Category,
							Intent:   query.Intent,
							Platform: response.Platform,
							Model:    response.Model,
							Analysis: analysis,
						})
						output.Responses = append(output.Responses, response.ResponseText)
					}
				}

				fmt.Printf("[ProcessScan] Collected %d query results (cost: $%.4f)\n",
					len(output.QueryResults), output.TotalCost)
				return output, nil
			})
			if err != nil {
				p.failScan(ctx, scanID, err)
				return nil, fmt.Errorf("step run-platform-matrix failed: %w", err)
			}

			// Optional: AI-assisted extraction cross-check on a sample of
			// mentioned results. Disagreements are only logged.
			if p.cfg.EnableAIExtraction && p.extractService != nil {
				_, err = step.Run(ctx, "ai-extraction-cross-check", func(ctx context.Context) (any, error) {
					checked := 0
					disagreements := 0
					for i, result := range matrix.QueryResults {
						if checked >= 5 {
							break
						}
						if result.Analysis == nil || !result.Analysis.Mentioned || matrix.Responses[i] == "" {
							continue
						}
						extraction, err := p.extractService.ExtractCompanyMentions(
							ctx, result.Query, matrix.Responses[i], scanCtx.Company.Name)
						if err != nil {
							fmt.Printf("[ProcessScan] Extraction cross-check failed for %s: %v\n", result.Platform, err)
							continue
						}
						checked++
						if extraction.TargetCompany == nil {
							disagreements++
							fmt.Printf("[ProcessScan] Cross-check disagreement on %s/%q: heuristic found a mention, extraction did not\n",
								result.Platform, result.Query)
						}
					}
					return map[string]any{"checked": checked, "disagreements": disagreements}, nil
				})
				if err != nil {
					fmt.Printf("[ProcessScan] Extraction cross-check step failed: %v\n", err)
				}
			}

			// Step 4: Aggregate and score
			scored, err := step.Run(ctx, "aggregate-and-score", func(ctx context.Context) (*scoredOutput, error) {
				analysis := analyzer.AggregateAnalysis(scanCtx.Company.Name, matrix.QueryResults)

				scorer := services.NewScorerService(industryCfg)
				scoreResults := make([]*services.ScoreResult, 0, len(matrix.QueryResults))
				for _, result := range matrix.QueryResults {
					scoreResults = append(scoreResults, &services.ScoreResult{
						Platform: result.Platform,
						Category: result.Category,
						Analysis: result.Analysis,
					})
				}

				platformScores := scorer.CalculatePlatformScores(scoreResults)
				overallScore := scorer.CalculateOverallScore(platformScores)
				platformScores = p.contractService.NormalizePlatformScores(platformScores)

				fmt.Printf("[ProcessScan] Overall score: %.2f (mention rate: %.1f%%)\n",
					overallScore, analysis.MentionRate)

				return &scoredOutput{
					Analysis:       analysis,
					PlatformScores: platformScores,
					OverallScore:   overallScore,
				}, nil
			})
			if err != nil {
				p.failScan(ctx, scanID, err)
				return nil, fmt.Errorf("step aggregate-and-score failed: %w", err)
			}

			// Step 5: Build recommendations and the HTML report
			scanResult, err := step.Run(ctx, "build-report", func(ctx context.Context) (*models.ScanResult, error) {
				recommendations := p.reportService.GenerateRecommendations(
					scanCtx.Company.Name, scored.Analysis, scored.PlatformScores, industryCfg)

				result := &models.ScanResult{
					QueryResults:    matrix.QueryResults,
					Analysis:        scored.Analysis,
					PlatformScores:  scored.PlatformScores,
					OverallScore:    scored.OverallScore,
					Recommendations: recommendations,
					TotalCost:       matrix.TotalCost,
					CompletedAt:     time.Now().UTC(),
				}

				html, err := p.reportService.GenerateReportHTML(scanCtx.Company, result, industryCfg)
				if err != nil {
					return nil, err
				}
				result.ReportHTML = html
				return result, nil
			})
			if err != nil {
				p.failScan(ctx, scanID, err)
				return nil, fmt.Errorf("step build-report failed: %w", err)
			}

			// Step 6: Persist the completed scan
			_, err = step.Run(ctx, "persist-scan", func(ctx context.Context) (any, error) {
				if err := p.repos.ScanRepo.SaveResult(ctx, scanCtx.ScanID, batch.QueryVersion, scanResult); err != nil {
					return nil, err
				}
				return map[string]any{"scan_id": scanID, "status": store.ScanStatusCompleted}, nil
			})
			if err != nil {
				p.failScan(ctx, scanID, err)
				return nil, fmt.Errorf("step persist-scan failed: %w", err)
			}

			fmt.Printf("[ProcessScan] COMPLETED scan %s for %s (score %.2f)\n",
				scanID, scanCtx.Company.Name, scanResult.OverallScore)

			return map[string]any{
				"scan_id":       scanID,
				"company":       scanCtx.Company.Name,
				"overall_score": scanResult.OverallScore,
				"total_cost":    scanResult.TotalCost,
				"completed_at":  scanResult.CompletedAt,
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create ProcessScan function: %w", err))
	}
	return fn
}

// failScan records the failure on the scan row. Best effort, the workflow
// error is what gets surfaced.
func (p *ScanProcessor) failScan(ctx context.Context, scanID string, cause error) {
	id, err := uuid.Parse(scanID)
	if err != nil {
		return
	}
	if err := p.repos.ScanRepo.MarkFailed(ctx, id, cause.Error()); err != nil {
		fmt.Printf("[ProcessScan] Failed to mark scan %s failed: %v\n", scanID, err)
	}
}

// Event types
type ScanProcessEvent struct {
	ScanID      string `json:"scan_id"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}
