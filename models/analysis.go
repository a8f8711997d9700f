package models

import "time"

var (
	Severities         = []string{"low", "medium", "high", "critical"}
	AnalysisCategories = []string{"physical_abuse", "neglect", "abandonment", "hoarding", "fighting", "other"}
)

// AIAnalysis is the structured assessment returned by the language model.
type AIAnalysis struct {
	Severity                      string   `json:"severity" bson:"severity"`
	Category                      string   `json:"category" bson:"category"`
	UrgencyLevel                  int      `json:"urgency_level" bson:"urgency_level"`
	RecommendedActions            []string `json:"recommended_actions" bson:"recommended_actions"`
	ConfidenceScore               float64  `json:"confidence_score" bson:"confidence_score"`
	RequiresImmediateIntervention bool     `json:"requires_immediate_intervention" bson:"requires_immediate_intervention"`
	EstimatedAnimalCount          int      `json:"estimated_animal_count" bson:"estimated_animal_count"`
	RiskFactors                   []string `json:"risk_factors" bson:"risk_factors"`
	NextSteps                     []string `json:"next_steps" bson:"next_steps"`
}

// FallbackAnalysis returns the neutral assessment used when model output is unusable.
func FallbackAnalysis() *AIAnalysis {
	return &AIAnalysis{
		Severity:                      "medium",
		Category:                      "other",
		UrgencyLevel:                  5,
		RecommendedActions:            []string{"Contact local authorities", "Document evidence", "Send to animal rescue"},
		ConfidenceScore:               0.5,
		RequiresImmediateIntervention: false,
		EstimatedAnimalCount:          1,
		RiskFactors:                   []string{"Unknown situation"},
		NextSteps:                     []string{"Investigate further", "Contact authorities"},
	}
}

type AnalysisRequest struct {
	Description   string `json:"description" validate:"required"`
	Location      string `json:"location" validate:"required"`
	ImageURL      string `json:"image_url,omitempty"`
	AnimalType    string `json:"animal_type,omitempty"`
	SituationType string `json:"situation_type,omitempty"`
}

type AnalysisResponse struct {
	Success     bool        `json:"success"`
	Analysis    *AIAnalysis `json:"analysis"`
	AIModel     string      `json:"ai_model"`
	Fallback    bool        `json:"fallback"`
	ProcessedAt time.Time   `json:"processed_at"`
}
