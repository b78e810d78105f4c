package dto

import (
	"time"

	"github.com/noah-isme/profileiq-api/internal/models"
)

// EvaluationResponse is the full view of a stored evaluation.
type EvaluationResponse struct {
	ID                      uint                            `json:"id"`
	UserID                  uint                            `json:"userId"`
	StudentContext          models.StudentContext           `json:"studentContext"`
	ActivitySnapshot        []models.ActivitySnapshot       `json:"activitySnapshot"`
	Scores                  models.EvaluationScores         `json:"scores"`
	ScoreExplanations       models.ScoreExplanations        `json:"scoreExplanations"`
	Strengths               []string                        `json:"strengths"`
	ImprovementAreas        []string                        `json:"improvementAreas"`
	GuidanceRecommendations []models.GuidanceRecommendation `json:"guidanceRecommendations"`
	CommonAppSummary        []string                        `json:"commonAppSummary"`
	CounselorNoteIDs        []uint                          `json:"counselorNoteIds"`
	AIModel                 string                          `json:"aiModel"`
	AIResponseTimeMs        int64                           `json:"aiResponseTimeMs"`
	CreatedAt               time.Time                       `json:"createdAt"`
}

// NewEvaluationResponse converts the model into its API representation.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:                      model.ID,
		UserID:                  model.UserID,
		StudentContext:          model.StudentContext.Data(),
		ActivitySnapshot:        nonNil([]models.ActivitySnapshot(model.ActivitySnapshot)),
		Scores:                  model.Scores,
		ScoreExplanations:       model.ScoreExplanations.Data(),
		Strengths:               nonNil([]string(model.Strengths)),
		ImprovementAreas:        nonNil([]string(model.ImprovementAreas)),
		GuidanceRecommendations: nonNil([]models.GuidanceRecommendation(model.GuidanceRecommendations)),
		CommonAppSummary:        nonNil([]string(model.CommonAppSummary)),
		CounselorNoteIDs:        nonNil([]uint(model.CounselorNoteIDs)),
		AIModel:                 model.AIModel,
		AIResponseTimeMs:        model.AIResponseTimeMs,
		CreatedAt:               model.CreatedAt,
	}
}

// NewEvaluationResponseSlice converts all evaluations in order.
func NewEvaluationResponseSlice(items []models.Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewEvaluationResponse(item))
	}
	return responses
}

// EvaluationSummary is the history list entry.
type EvaluationSummary struct {
	ID        uint                    `json:"id"`
	Scores    models.EvaluationScores `json:"scores"`
	CreatedAt time.Time               `json:"createdAt"`
}

// EvaluationListResponse wraps the history list.
type EvaluationListResponse struct {
	Evaluations []EvaluationSummary `json:"evaluations"`
}

// NewEvaluationListResponse keeps the given order.
func NewEvaluationListResponse(items []models.Evaluation) EvaluationListResponse {
	summaries := make([]EvaluationSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, EvaluationSummary{ID: item.ID, Scores: item.Scores, CreatedAt: item.CreatedAt})
	}
	return EvaluationListResponse{Evaluations: summaries}
}

// EvaluationExport is the view reused in application essays.
type EvaluationExport struct {
	StudentName    string                    `json:"studentName"`
	EvaluationDate time.Time                 `json:"evaluationDate"`
	ProfileiqScore float64                   `json:"profileiqScore"`
	Summary        []string                  `json:"summary"`
	Activities     []models.ActivitySnapshot `json:"activities"`
	Strengths      []string                  `json:"strengths"`
}

// NewEvaluationExport derives the export view. An empty name becomes "Unknown".
func NewEvaluationExport(model models.Evaluation, studentName string) EvaluationExport {
	if studentName == "" {
		studentName = "Unknown"
	}
	return EvaluationExport{
		StudentName:    studentName,
		EvaluationDate: model.CreatedAt,
		ProfileiqScore: model.Scores.FinalProfileiqScore,
		Summary:        nonNil([]string(model.CommonAppSummary)),
		Activities:     nonNil([]models.ActivitySnapshot(model.ActivitySnapshot)),
		Strengths:      nonNil([]string(model.Strengths)),
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
