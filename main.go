// main.go
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/inngest/inngestgo"
	"github.com/joho/godotenv"

	"github.com/geo-intelligence/geo-workflows/internal/config"
	"github.com/geo-intelligence/geo-workflows/internal/industry"
	"github.com/geo-intelligence/geo-workflows/internal/store"
	"github.com/geo-intelligence/geo-workflows/services"
	"github.com/geo-intelligence/geo-workflows/workflows"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Industry config dir: %s", cfg.IndustryConfigDir)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	} else {
		log.Printf("OpenAI API key loaded (length: %d)", len(cfg.OpenAIAPIKey))
	}
	if cfg.AnthropicAPIKey == "" {
		log.Printf("WARNING: Anthropic API key not loaded!")
	} else {
		log.Printf("Anthropic API key loaded (length: %d)", len(cfg.AnthropicAPIKey))
	}

	industries, err := industry.List(cfg.IndustryConfigDir)
	if err != nil {
		log.Fatalf("Failed to read industry configs: %v", err)
	}
	industryIDs := make([]string, 0, len(industries))
	for _, ind := range industries {
		industryIDs = append(industryIDs, ind.ID)
	}
	log.Printf("Loaded %d industry configs: %v", len(industryIDs), industryIDs)

	repos, err := store.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repos.Close()
	log.Printf("Successfully connected to database")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	// Initialize services
	costService := services.NewCostService()
	llmClient := services.NewLLMClientService(cfg, costService)
	reportService := services.NewReportService()
	contractService := services.NewContractService()
	extractService := services.NewExtractService(cfg)

	// Create Inngest client
	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "geo-workflows",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	log.Printf("Initializing ScanProcessor workflow...")
	scanProcessor := workflows.NewScanProcessor(repos, llmClient, reportService, contractService, extractService, cfg)
	scanProcessor.SetClient(client)
	scanProcessor.ProcessScan()

	log.Printf("All processors initialized and functions registered")

	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)

	// Root endpoint for ALB health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"geo-workflows","status":"running"}`))
	})

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := repos.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("/test/trigger-scan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			ScanID string `json:"scan_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ScanID == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"scan_id is required"}`))
			return
		}
		evt := inngestgo.Event{
			Name: "scan.process",
			Data: map[string]interface{}{"scan_id": payload.ScanID, "triggered_by": "manual_test"},
		}
		result, err := client.Send(r.Context(), evt)
		if err != nil {
			log.Printf("Failed to send scan event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf(`{"error":"Failed to send event: %v"}`, err)))
			return
		}
		log.Printf("Scan event sent successfully: %+v", result)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf(`{"status":"success","scan_id":"%s","event_id":"%s"}`, payload.ScanID, result)))
	})

	port := cfg.Port
	log.Printf("Starting GEO Workflows service on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
