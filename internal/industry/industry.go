// internal/industry/industry.go
package industry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// QueryShape identifies which query-generation format an industry config
// carries. Exactly one shape may be active per config.
type QueryShape string

const (
	ShapeCurated   QueryShape = "curated"
	ShapeTemplated QueryShape = "templated"
	ShapeEmpty     QueryShape = "empty"
)

// Config is a parsed industry YAML file. It drives query generation,
// platform selection and scoring weights for every scan in that industry.
type Config struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`

	Platforms map[string]PlatformConfig `yaml:"platforms"`
	Scoring   ScoringConfig             `yaml:"scoring"`
	Queries   QueryConfig               `yaml:"queries"`

	// Value pools for templated query generation.
	Services        []string `yaml:"services"`
	Threats         []string `yaml:"threats"`
	Regions         []string `yaml:"regions"`
	Competitors     []string `yaml:"competitors"`
	IndustryTerms   []string `yaml:"industry_terms"`
	TargetAudiences []string `yaml:"target_audiences"`

	// Known competitor names for mention extraction.
	KnownCompetitors []string `yaml:"known_competitors"`
}

// PlatformConfig selects the model and scoring weight for one platform.
type PlatformConfig struct {
	Weight float64 `yaml:"weight"`
	Model  string  `yaml:"model"`
}

// ScoringConfig holds the per-mention-type base weights.
type ScoringConfig struct {
	MentionTypes map[string]float64 `yaml:"mention_types"`
}

// QueryConfig holds either the curated two-list format or the
// categorized-template format. Both present is a configuration error.
type QueryConfig struct {
	Version    string                    `yaml:"version"`
	Generic    []CuratedQuery            `yaml:"generic"`
	Brand      []CuratedQuery            `yaml:"brand"`
	Categories map[string]CategoryConfig `yaml:"categories"`
	// Total is the optional global query budget. Nil means each category's
	// raw count is used as-is.
	Total *int `yaml:"total"`
}

// CuratedQuery is one entry of the curated generic/brand lists.
type CuratedQuery struct {
	Query    string `yaml:"query"`
	Category string `yaml:"category"`
	Intent   string `yaml:"intent"`
}

// CategoryConfig is one category of the templated format.
type CategoryConfig struct {
	Count     int      `yaml:"count"`
	Templates []string `yaml:"templates"`
}

// Shape reports which query format the config carries.
func (c *Config) Shape() QueryShape {
	curated := len(c.Queries.Generic) > 0 || len(c.Queries.Brand) > 0
	templated := len(c.Queries.Categories) > 0

	switch {
	case curated && !templated:
		return ShapeCurated
	case templated && !curated:
		return ShapeTemplated
	case curated && templated:
		// Unreachable after Validate; treated as curated for safety.
		return ShapeCurated
	default:
		return ShapeEmpty
	}
}

// Validate rejects configs that carry both query formats at once. Shape
// detection is the de facto contract between the two formats; an ambiguous
// config has no defined meaning.
func (c *Config) Validate() error {
	curated := len(c.Queries.Generic) > 0 || len(c.Queries.Brand) > 0
	templated := len(c.Queries.Categories) > 0
	if curated && templated {
		return fmt.Errorf("industry %q: ambiguous query config: both curated (generic/brand) and templated (categories) formats present", c.ID)
	}
	return nil
}

// Load reads and validates one industry config from configDir.
func Load(industryID, configDir string) (*Config, error) {
	path := filepath.Join(configDir, industryID+".yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read industry config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse industry config %s: %w", path, err)
	}
	if cfg.ID == "" {
		cfg.ID = industryID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// List returns every industry config in configDir, skipping unreadable or
// ambiguous files.
func List(configDir string) ([]*Config, error) {
	entries, err := os.ReadDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read industry config dir %s: %w", configDir, err)
	}

	var configs []*Config
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".yaml")]
		cfg, err := Load(id, configDir)
		if err != nil {
			fmt.Printf("[industry.List] Skipping %s: %v\n", entry.Name(), err)
			continue
		}
		configs = append(configs, cfg)
	}

	return configs, nil
}
