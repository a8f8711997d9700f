package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"rescueradar/models"
	"rescueradar/utils"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultAIModel     = "llama-3.1-8b-instant"

	analysisTemperature = 0.1
	analysisMaxTokens   = 1024

	analysisSystemPrompt = "You are an expert animal welfare analyst who provides structured, actionable assessments of animal cruelty reports. Always respond with valid JSON."
)

// ChatCompleter is the subset of the OpenAI-compatible client the analyzer uses
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client ChatCompleter
	model  string
}

// NewAIService builds an analyzer against Groq's OpenAI-compatible endpoint.
// An empty apiKey yields a disabled analyzer.
func NewAIService(apiKey, baseURL, model string) *AIService {
	if model == "" {
		model = DefaultAIModel
	}
	if apiKey == "" {
		return &AIService{model: model}
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return NewAIServiceWithClient(openai.NewClientWithConfig(cfg), model)
}

func NewAIServiceWithClient(client ChatCompleter, model string) *AIService {
	if model == "" {
		model = DefaultAIModel
	}
	return &AIService{client: client, model: model}
}

func (s *AIService) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *AIService) Model() string {
	return s.model
}

// Analyze classifies a report. Malformed model output degrades to the fallback
// analysis (fallback=true); only transport or provider failures return an error.
func (s *AIService) Analyze(ctx context.Context, req models.AnalysisRequest) (analysis *models.AIAnalysis, fallback bool, err error) {
	if !s.Enabled() {
		return nil, false, utils.NewNotConfiguredError("AI analysis")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildAnalysisPrompt(req)},
		},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			logrus.WithFields(logrus.Fields{
				"status": apiErr.HTTPStatusCode,
				"type":   apiErr.Type,
			}).Errorf("AI provider rejected request: %s", apiErr.Message)
		}
		return nil, false, utils.NewExternalServiceError("groq", "Failed to analyze report", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	analysis, err = ParseAnalysis(content)
	if err != nil {
		logrus.Warnf("Failed to parse AI response, using fallback: %v", err)
		return models.FallbackAnalysis(), true, nil
	}

	logrus.WithFields(logrus.Fields{
		"location": req.Location,
		"severity": analysis.Severity,
		"urgency":  analysis.UrgencyLevel,
	}).Info("AI analysis completed")

	return analysis, false, nil
}

// BuildAnalysisPrompt renders the user prompt asking for the fixed JSON schema
func BuildAnalysisPrompt(req models.AnalysisRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert animal welfare analyst. Analyze the following animal cruelty report and provide a structured assessment:\n\n")
	fmt.Fprintf(&b, "Report Description: %q\n", req.Description)
	fmt.Fprintf(&b, "Location: %q\n", req.Location)
	if req.AnimalType != "" {
		fmt.Fprintf(&b, "Animal Type: %s\n", req.AnimalType)
	}
	if req.SituationType != "" {
		fmt.Fprintf(&b, "Situation Type: %s\n", req.SituationType)
	}
	if req.ImageURL != "" {
		b.WriteString("Image Available: Yes\n")
	} else {
		b.WriteString("Image Available: No\n")
	}

	b.WriteString(`
Please analyze this report and provide a JSON response with the following structure:
{
  "severity": "low|medium|high|critical",
  "category": "physical_abuse|neglect|abandonment|hoarding|fighting|other",
  "urgency_level": 1-10,
  "recommended_actions": ["action1", "action2", "action3"],
  "confidence_score": 0.0-1.0,
  "requires_immediate_intervention": true/false,
  "estimated_animal_count": number,
  "risk_factors": ["factor1", "factor2"],
  "next_steps": ["step1", "step2", "step3"]
}

Be thorough in your analysis and prioritize animal safety.`)

	return b.String()
}

// ParseAnalysis extracts and checks the JSON object in a model response.
// Surrounding prose and markdown fences are ignored.
func ParseAnalysis(content string) (*models.AIAnalysis, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in response")
	}

	var analysis models.AIAnalysis
	if err := json.Unmarshal([]byte(content[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("invalid analysis JSON: %w", err)
	}

	if err := NormalizeAnalysis(&analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// NormalizeAnalysis lower-cases the enum fields, checks their ranges and fills
// empty lists. It reports the first field that is out of range.
func NormalizeAnalysis(analysis *models.AIAnalysis) error {
	analysis.Severity = strings.ToLower(strings.TrimSpace(analysis.Severity))
	analysis.Category = strings.ToLower(strings.TrimSpace(analysis.Category))

	switch {
	case !contains(models.Severities, analysis.Severity):
		return fmt.Errorf("unknown severity %q", analysis.Severity)
	case !contains(models.AnalysisCategories, analysis.Category):
		return fmt.Errorf("unknown category %q", analysis.Category)
	case analysis.UrgencyLevel < 1 || analysis.UrgencyLevel > 10:
		return fmt.Errorf("urgency_level %d out of range", analysis.UrgencyLevel)
	case analysis.ConfidenceScore < 0 || analysis.ConfidenceScore > 1:
		return fmt.Errorf("confidence_score %v out of range", analysis.ConfidenceScore)
	}

	if analysis.EstimatedAnimalCount < 1 {
		analysis.EstimatedAnimalCount = 1
	}
	if analysis.RecommendedActions == nil {
		analysis.RecommendedActions = []string{}
	}
	if analysis.RiskFactors == nil {
		analysis.RiskFactors = []string{}
	}
	if analysis.NextSteps == nil {
		analysis.NextSteps = []string{}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
