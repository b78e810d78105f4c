package ai

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrOracleUnavailable covers transport failures, non-2xx replies and timeouts.
	ErrOracleUnavailable = errors.New("scoring oracle unavailable")
	// ErrMalformedResponse indicates the oracle produced no text or text that is not JSON.
	ErrMalformedResponse = errors.New("scoring oracle returned malformed response")
	// ErrInvalidOracleResponse indicates the JSON does not match the scoring contract.
	ErrInvalidOracleResponse = errors.New("invalid AI response structure")
)

// StudentContext is the wire form of the student's circumstances.
type StudentContext struct {
	GradeLevel          string `json:"grade_level"`
	SchoolType          string `json:"school_type"`
	GeographicContext   string `json:"geographic_context"`
	ResourceConstraints string `json:"resource_constraints"`
}

// ActivityPayload is the wire form of a single activity.
type ActivityPayload struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	DurationMonths     int      `json:"duration_months"`
	HoursPerWeek       float64  `json:"hours_per_week"`
	LeadershipRole     string   `json:"leadership_role"`
	InitiativeLevel    string   `json:"initiative_level"`
	MeasurableOutcomes string   `json:"measurable_outcomes"`
	EvidenceLinks      []string `json:"evidence_links"`
}

// ProfilePayload is the document sent to the oracle as the user message.
type ProfilePayload struct {
	StudentContext StudentContext    `json:"student_context"`
	Activities     []ActivityPayload `json:"activities"`
	CounselorNotes *string           `json:"counselor_notes"`
}

// Scores are the five 0-100 numbers produced by the oracle.
type Scores struct {
	LeadershipImpact      float64 `json:"leadership_impact"`
	ExecutionDepth        float64 `json:"execution_depth"`
	GrowthTrajectory      float64 `json:"growth_trajectory"`
	ContextAdjustedImpact float64 `json:"context_adjusted_impact"`
	FinalProfileiqScore   float64 `json:"final_profileiq_score"`
}

// ScoreExplanations justifies the four non-final scores.
type ScoreExplanations struct {
	LeadershipImpact      string `json:"leadership_impact"`
	ExecutionDepth        string `json:"execution_depth"`
	GrowthTrajectory      string `json:"growth_trajectory"`
	ContextAdjustedImpact string `json:"context_adjusted_impact"`
}

// GuidanceRecommendation is one suggested next step.
type GuidanceRecommendation struct {
	Area                string `json:"area"`
	Suggestion          string `json:"suggestion"`
	ExpectedScoreImpact string `json:"expected_score_impact"`
}

// ScoringResponse is the oracle output after it passed validation.
type ScoringResponse struct {
	Scores                  Scores                   `json:"scores"`
	ScoreExplanations       ScoreExplanations        `json:"score_explanations"`
	Strengths               []string                 `json:"strengths"`
	ImprovementAreas        []string                 `json:"improvement_areas"`
	GuidanceRecommendations []GuidanceRecommendation `json:"guidance_recommendations"`
	CommonAppSummary        []string                 `json:"common_app_summary"`
}

// EvaluationResult carries the untrusted oracle output along with call metadata.
type EvaluationResult struct {
	Raw          any
	Model        string
	ResponseTime time.Duration
}

// Evaluator describes an LLM capable of scoring a student profile.
type Evaluator interface {
	Evaluate(ctx context.Context, payload ProfilePayload) (EvaluationResult, error)
}
