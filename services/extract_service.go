// services/extract_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/geo-intelligence/geo-workflows/internal/config"
)

type extractService struct {
	cfg          *config.Config
	openAIClient *openai.Client
	costService  CostService
}

func NewExtractService(cfg *config.Config) ExtractService {
	fmt.Printf("[NewExtractService] Creating service with OpenAI key (length: %d)\n", len(cfg.OpenAIAPIKey))

	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	return &extractService{
		cfg:          cfg,
		openAIClient: &client,
		costService:  NewCostService(),
	}
}

// ExtractResponse represents the structured output from OpenAI
type ExtractResponse struct {
	TargetCompany *CompanyExtract  `json:"target_company" jsonschema_description:"The target company if mentioned in the response, null if not mentioned"`
	Competitors   []CompanyExtract `json:"competitors" jsonschema_description:"List of competitor companies or vendors mentioned"`
}

// Generate the JSON schema at initialization time
var ExtractResponseSchema = GenerateSchema[ExtractResponse]()

// ExtractCompanyMentions runs an AI-assisted extraction pass over one
// platform response, used as a cross-check of the heuristic analyzer.
func (s *extractService) ExtractCompanyMentions(ctx context.Context, question, response, targetCompany string) (*MentionsExtractionResponse, error) {
	prompt := s.buildExtractionPrompt(question, response, targetCompany)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "company_extraction",
		Description: openai.String("Extract mentions of companies from AI response"),
		Schema:      ExtractResponseSchema,
		Strict:      openai.Bool(true),
	}

	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert industry analyst. Extract company mentions accurately and comprehensively."),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel("gpt-4.1-mini"),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	var extractedData ExtractResponse
	if err := json.Unmarshal([]byte(chatResponse.Choices[0].Message.Content), &extractedData); err != nil {
		// Should never happen with structured outputs
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	result := &MentionsExtractionResponse{
		TargetCompany: extractedData.TargetCompany,
		Competitors:   extractedData.Competitors,
	}
	if result.Competitors == nil {
		result.Competitors = []CompanyExtract{}
	}
	return result, nil
}

func (s *extractService) buildExtractionPrompt(question, response, targetCompany string) string {
	return fmt.Sprintf(`Analyze the following AI assistant response and extract company mentions.

Target company: %s

Original question: %s

AI response:
%s

Extract:
1. Whether the target company is mentioned, at which list rank (0 if unranked), the exact text where it appears, and the sentiment of that text (positive, neutral or negative).
2. Every competitor company mentioned, with the same fields.

Only extract companies actually named in the response.`, targetCompany, question, response)
}
