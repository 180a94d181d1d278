// cmd/scan_preview/main.go
//
// Operator tool: prints the query set a scan would run for a company
// without calling any LLM platform. Useful for tuning industry configs.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/models"
	"github.com/geo-intelligence/geo-workflows/services"
)

func main() {
	var (
		name       = flag.String("name", "", "company name (required)")
		domain     = flag.String("domain", "", "company domain")
		location   = flag.String("location", "", "company location")
		industryID = flag.String("industry", "", "industry config ID (required)")
		configDir  = flag.String("config-dir", "./industries", "industry config directory")
		seed       = flag.Int64("seed", 0, "random seed for templated generation (0 = time-based)")
	)
	flag.Parse()

	if *name == "" || *industryID == "" {
		flag.Usage()
		log.Fatal("both -name and -industry are required")
	}

	cfg, err := industry.Load(*industryID, *configDir)
	if err != nil {
		log.Fatalf("Failed to load industry config: %v", err)
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	generator := services.NewQueryGeneratorService(cfg, rng)
	queries := generator.GenerateQueries(models.CompanyInput{
		Name:     *name,
		Domain:   *domain,
		Location: *location,
	})

	fmt.Printf("Industry: %s (%s)\n", cfg.Name, cfg.ID)
	fmt.Printf("Query version: %s\n", generator.QueryVersion())
	fmt.Printf("Queries: %d\n\n", len(queries))

	byCategory := make(map[string][]models.Query)
	order := []string{}
	for _, query := range queries {
		if _, ok := byCategory[query.Category]; !ok {
			order = append(order, query.Category)
		}
		byCategory[query.Category] = append(byCategory[query.Category], query)
	}

	for _, category := range order {
		fmt.Printf("[%s] (%d)\n", category, len(byCategory[category]))
		for _, query := range byCategory[category] {
			fmt.Printf("  - %s  (intent: %s)\n", query.Query, query.Intent)
		}
		fmt.Println()
	}

	fmt.Printf("Configured platforms:\n")
	for platform, platformCfg := range cfg.Platforms {
		fmt.Printf("  %-12s weight=%.2f model=%s\n", platform, platformCfg.Weight, platformCfg.Model)
	}
}
