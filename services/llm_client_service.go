// services/llm_client_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/geo-intelligence/geo-workflows/internal/config"
	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
)

// batchTimeout caps one fan-out across all platforms.
const batchTimeout = 60 * time.Second

type llmClientService struct {
	cfg         *config.Config
	costService CostService

	mu        sync.Mutex
	providers map[string]AIProvider
	limiters  map[string]*rate.Limiter
}

func NewLLMClientService(cfg *config.Config, costService CostService) LLMClientService {
	return &llmClientService{
		cfg:         cfg,
		costService: costService,
		providers:   make(map[string]AIProvider),
		limiters:    make(map[string]*rate.Limiter),
	}
}

// QueryAllPlatforms fans one query out to every configured platform in
// parallel. Platforms without an API key are skipped. Failures never abort
// the batch; they come back as unsuccessful PlatformResponse records.
func (s *llmClientService) QueryAllPlatforms(ctx context.Context, query string, platforms map[string]industry.PlatformConfig) []*models.PlatformResponse {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	names := make([]string, 0, len(platforms))
	for name := range platforms {
		if !s.hasAPIKey(name) {
			fmt.Printf("[QueryAllPlatforms] Skipping %s: no API key configured\n", name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]*models.PlatformResponse, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, platform string) {
			defer wg.Done()
			results[i] = s.QueryPlatform(ctx, platform, query, platforms[platform].Model)
		}(i, name)
	}
	wg.Wait()

	return results
}

// QueryPlatform sends one query to one platform and always returns a
// response record, successful or not.
func (s *llmClientService) QueryPlatform(ctx context.Context, platform, query, model string) *models.PlatformResponse {
	start := time.Now()

	response := &models.PlatformResponse{
		Platform: platform,
		Query:    query,
		Model:    model,
	}

	provider, err := s.providerFor(platform, model)
	if err != nil {
		response.Error = err.Error()
		response.LatencyMS = int(time.Since(start).Milliseconds())
		return response
	}

	if err := s.limiterFor(platform).Wait(ctx); err != nil {
		response.Error = fmt.Sprintf("rate limit wait aborted: %v", err)
		response.LatencyMS = int(time.Since(start).Milliseconds())
		return response
	}

	aiResponse, err := s.runWithRetry(ctx, provider, query)
	response.LatencyMS = int(time.Since(start).Milliseconds())

	if err != nil {
		fmt.Printf("[QueryPlatform] %s query failed: %v\n", platform, err)
		response.Error = err.Error()
		return response
	}

	response.Success = true
	response.ResponseText = aiResponse.Response
	response.InputTokens = aiResponse.InputTokens
	response.OutputTokens = aiResponse.OutputTokens
	response.Cost = aiResponse.Cost
	return response
}

// runWithRetry retries transient provider failures with exponential backoff.
func (s *llmClientService) runWithRetry(ctx context.Context, provider AIProvider, query string) (*AIResponse, error) {
	var aiResponse *AIResponse

	operation := func() error {
		var err error
		aiResponse, err = provider.RunQuestion(ctx, query)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return aiResponse, nil
}

func (s *llmClientService) providerFor(platform, model string) (AIProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := platform + "/" + model
	if provider, ok := s.providers[key]; ok {
		return provider, nil
	}

	var provider AIProvider
	switch platform {
	case "chatgpt":
		provider = NewOpenAIProvider(s.cfg, model, s.costService)
	case "claude":
		provider = NewAnthropicProvider(s.cfg, model, s.costService)
	case "gemini":
		provider = NewGeminiProvider(s.cfg, model, s.costService)
	case "perplexity":
		provider = NewPerplexityProvider(s.cfg, model, s.costService)
	default:
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}

	s.providers[key] = provider
	return provider, nil
}

func (s *llmClientService) limiterFor(platform string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[platform]
	if !ok {
		// Conservative per-platform ceiling, bursts allowed for fan-out
		limiter = rate.NewLimiter(rate.Limit(5), 10)
		s.limiters[platform] = limiter
	}
	return limiter
}

func (s *llmClientService) hasAPIKey(platform string) bool {
	switch platform {
	case "chatgpt":
		return s.cfg.OpenAIAPIKey != ""
	case "claude":
		return s.cfg.AnthropicAPIKey != ""
	case "gemini":
		return s.cfg.GoogleAPIKey != ""
	case "perplexity":
		return s.cfg.PerplexityAPIKey != ""
	}
	return false
}
