// services/query_generator_service.go
package services

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
)

type queryGeneratorService struct {
	cfg *industry.Config
	rng *rand.Rand
}

// NewQueryGeneratorService creates a generator for one industry config.
// rng may be nil, in which case a time-seeded source is used; tests inject
// a fixed seed instead.
func NewQueryGeneratorService(cfg *industry.Config, rng *rand.Rand) QueryGeneratorService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &queryGeneratorService{
		cfg: cfg,
		rng: rng,
	}
}

// QueryVersion returns the version of the curated query set.
func (s *queryGeneratorService) QueryVersion() string {
	if s.cfg.Queries.Version == "" {
		return "unknown"
	}
	return s.cfg.Queries.Version
}

// GenerateQueries produces the concrete query list for one company. The
// active config shape decides the strategy: curated lists are returned
// deterministically, categorized templates are expanded with randomized
// placeholder values under the configured budget.
func (s *queryGeneratorService) GenerateQueries(company models.CompanyInput) []models.Query {
	switch s.cfg.Shape() {
	case industry.ShapeCurated:
		return s.generateCurated(company)
	case industry.ShapeTemplated:
		return s.generateTemplated(company)
	default:
		return []models.Query{}
	}
}

// generateCurated copies generic queries verbatim and substitutes the
// company name into brand templates. No randomness, no reordering.
func (s *queryGeneratorService) generateCurated(company models.CompanyInput) []models.Query {
	queries := []models.Query{}

	for _, q := range s.cfg.Queries.Generic {
		category := q.Category
		if category == "" {
			category = "general"
		}
		queries = append(queries, models.Query{
			Query:    q.Query,
			Category: category,
			Intent:   q.Intent,
		})
	}

	for _, q := range s.cfg.Queries.Brand {
		category := q.Category
		if category == "" {
			category = "brand"
		}
		queries = append(queries, models.Query{
			Query:    strings.ReplaceAll(q.Query, "{company_name}", company.Name),
			Category: category,
			Intent:   q.Intent,
		})
	}

	return queries
}

// Fixed German prefixes used to synthesize backfill variations when a
// category falls short of its target.
var backfillPrefixes = []string{
	"Welche",
	"Was sind die besten",
	"Empfehlung für",
	"Vergleich von",
	"Wie finde ich",
}

// Fallback placeholder values for empty pools.
var poolDefaults = map[string]string{
	"service":         "IT-Sicherheit",
	"threat":          "Ransomware",
	"region":          "Deutschland",
	"competitor":      "CrowdStrike",
	"industry_term":   "Cybersecurity",
	"target_audience": "Mittelstand",
}

var categoryIntents = map[string]string{
	"brand":      "Direkte Markenbewertung",
	"service":    "Suche nach Lösungsanbietern",
	"problem":    "Problemlösungs-orientierte Suche",
	"comparison": "Vergleichs- und Auswahlsuche",
	"local":      "Regionale Anbietersuche",
}

func (s *queryGeneratorService) generateTemplated(company models.CompanyInput) []models.Query {
	budgets := s.allocateBudget()

	// Category order is fixed so dedup behavior is stable across the
	// per-category loops; the final shuffle removes the ordering again.
	names := make([]string, 0, len(s.cfg.Queries.Categories))
	for name := range s.cfg.Queries.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]bool)
	var all []models.Query

	for _, name := range names {
		category := s.cfg.Queries.Categories[name]
		target := budgets[name]
		if target <= 0 || len(category.Templates) == 0 {
			continue
		}

		generated := s.generateForCategory(name, category, target, company, seen)
		if len(generated) < target {
			generated = append(generated, s.backfillCategory(name, generated, target-len(generated), seen)...)
		}
		all = append(all, generated...)
	}

	// Interleave brand/service/etc. queries
	s.rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	return all
}

// allocateBudget scales category counts to the global total using the
// Largest Remainder Method. Without a total, raw counts are used as-is.
func (s *queryGeneratorService) allocateBudget() map[string]int {
	categories := s.cfg.Queries.Categories
	budgets := make(map[string]int, len(categories))

	if s.cfg.Queries.Total == nil {
		for name, c := range categories {
			budgets[name] = c.Count
		}
		return budgets
	}

	total := *s.cfg.Queries.Total
	rawSum := 0
	for _, c := range categories {
		rawSum += c.Count
	}
	if total <= 0 || rawSum == 0 {
		for name := range categories {
			budgets[name] = 0
		}
		return budgets
	}

	type allocation struct {
		name      string
		remainder float64
	}
	var allocations []allocation

	assigned := 0
	for name, c := range categories {
		scaled := float64(c.Count) * float64(total) / float64(rawSum)
		floor := int(math.Floor(scaled))
		budgets[name] = floor
		assigned += floor
		allocations = append(allocations, allocation{name: name, remainder: scaled - float64(floor)})
	}

	// Hand the leftover units to the largest fractional remainders, ties
	// broken by category name, wrapping around if needed.
	sort.Slice(allocations, func(i, j int) bool {
		if allocations[i].remainder != allocations[j].remainder {
			return allocations[i].remainder > allocations[j].remainder
		}
		return allocations[i].name < allocations[j].name
	})

	for i := 0; assigned < total; i++ {
		budgets[allocations[i%len(allocations)].name]++
		assigned++
	}

	return budgets
}

func (s *queryGeneratorService) generateForCategory(name string, category industry.CategoryConfig, target int, company models.CompanyInput, seen map[string]bool) []models.Query {
	var generated []models.Query
	maxAttempts := 3 * target

	for attempt := 0; attempt < maxAttempts && len(generated) < target; attempt++ {
		template := category.Templates[s.rng.Intn(len(category.Templates))]

		text, err := s.fillTemplate(template, company)
		if err != nil {
			// Malformed placeholder; skip the candidate, not the category.
			continue
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		generated = append(generated, models.Query{
			Query:    text,
			Category: name,
			Intent:   intentFor(name),
		})
	}

	return generated
}

// backfillCategory synthesizes variations of already-generated queries when
// the template pool could not fill the category's budget.
func (s *queryGeneratorService) backfillCategory(name string, generated []models.Query, shortfall int, seen map[string]bool) []models.Query {
	if len(generated) == 0 {
		return nil
	}

	var filled []models.Query
	maxAttempts := 10
	if shortfall*10 > maxAttempts {
		maxAttempts = shortfall * 10
	}

	for attempt := 0; attempt < maxAttempts && len(filled) < shortfall; attempt++ {
		base := generated[s.rng.Intn(len(generated))]
		prefix := backfillPrefixes[s.rng.Intn(len(backfillPrefixes))]
		text := prefix + " " + base.Query
		if seen[text] {
			continue
		}
		seen[text] = true
		filled = append(filled, models.Query{
			Query:    text,
			Category: name,
			Intent:   base.Intent,
		})
	}

	return filled
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// fillTemplate substitutes every {placeholder} in the template from the
// company fields and a random draw per value pool. An unknown placeholder
// makes the whole candidate invalid.
func (s *queryGeneratorService) fillTemplate(template string, company models.CompanyInput) (string, error) {
	location := company.Location
	if location == "" {
		location = "DACH"
	}

	values := map[string]string{
		"company_name":    company.Name,
		"company_domain":  company.Domain,
		"location":        location,
		"service":         s.pickFromPool(s.cfg.Services, "service"),
		"threat":          s.pickFromPool(s.cfg.Threats, "threat"),
		"region":          s.pickFromPool(s.cfg.Regions, "region"),
		"competitor":      s.pickFromPool(s.cfg.Competitors, "competitor"),
		"industry_term":   s.pickFromPool(s.cfg.IndustryTerms, "industry_term"),
		"target_audience": s.pickFromPool(s.cfg.TargetAudiences, "target_audience"),
	}

	var missing string
	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := values[key]
		if !ok {
			missing = key
			return match
		}
		return value
	})
	if missing != "" {
		return "", fmt.Errorf("unknown placeholder %q in template", missing)
	}

	return result, nil
}

func (s *queryGeneratorService) pickFromPool(pool []string, key string) string {
	if len(pool) == 0 {
		return poolDefaults[key]
	}
	return pool[s.rng.Intn(len(pool))]
}

func intentFor(category string) string {
	if intent, ok := categoryIntents[category]; ok {
		return intent
	}
	return "Informationssuche zu " + category
}
