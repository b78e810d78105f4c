package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrEvaluationImmutable is returned when something tries to change a stored evaluation.
var ErrEvaluationImmutable = errors.New("evaluations are immutable")

// StudentContext is the profile copy frozen into an evaluation.
type StudentContext struct {
	GradeLevel          string `json:"gradeLevel"`
	SchoolType          string `json:"schoolType"`
	GeographicContext   string `json:"geographicContext"`
	ResourceConstraints string `json:"resourceConstraints,omitempty"`
}

// ActivitySnapshot is an activity summary frozen into an evaluation.
type ActivitySnapshot struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	DurationMonths     int      `json:"durationMonths"`
	HoursPerWeek       float64  `json:"hoursPerWeek"`
	LeadershipRole     string   `json:"leadershipRole"`
	InitiativeLevel    string   `json:"initiativeLevel"`
	MeasurableOutcomes string   `json:"measurableOutcomes,omitempty"`
	EvidenceLinks      []string `json:"evidenceLinks,omitempty"`
}

// EvaluationScores holds the five 0-100 scores.
type EvaluationScores struct {
	LeadershipImpact      float64 `gorm:"not null" json:"leadershipImpact"`
	ExecutionDepth        float64 `gorm:"not null" json:"executionDepth"`
	GrowthTrajectory      float64 `gorm:"not null" json:"growthTrajectory"`
	ContextAdjustedImpact float64 `gorm:"not null" json:"contextAdjustedImpact"`
	FinalProfileiqScore   float64 `gorm:"not null" json:"finalProfileiqScore"`
}

// ScoreExplanations justifies each non-final score.
type ScoreExplanations struct {
	LeadershipImpact      string `json:"leadershipImpact"`
	ExecutionDepth        string `json:"executionDepth"`
	GrowthTrajectory      string `json:"growthTrajectory"`
	ContextAdjustedImpact string `json:"contextAdjustedImpact"`
}

// GuidanceRecommendation is a suggested next step for the student.
type GuidanceRecommendation struct {
	Area                string `json:"area"`
	Suggestion          string `json:"suggestion"`
	ExpectedScoreImpact string `json:"expectedScoreImpact"`
}

// Evaluation is an append-only, point-in-time scoring record.
type Evaluation struct {
	ID                      uint                                        `gorm:"primaryKey" json:"id"`
	UserID                  uint                                        `gorm:"not null;index:idx_evaluation_user_created" json:"userId"`
	StudentContext          datatypes.JSONType[StudentContext]          `gorm:"not null" json:"studentContext"`
	ActivitySnapshot        datatypes.JSONSlice[ActivitySnapshot]       `json:"activitySnapshot"`
	Scores                  EvaluationScores                            `gorm:"embedded;embeddedPrefix:score_" json:"scores"`
	ScoreExplanations       datatypes.JSONType[ScoreExplanations]       `gorm:"not null" json:"scoreExplanations"`
	Strengths               datatypes.JSONSlice[string]                 `json:"strengths"`
	ImprovementAreas        datatypes.JSONSlice[string]                 `json:"improvementAreas"`
	GuidanceRecommendations datatypes.JSONSlice[GuidanceRecommendation] `json:"guidanceRecommendations"`
	CommonAppSummary        datatypes.JSONSlice[string]                 `json:"commonAppSummary"`
	CounselorNoteIDs        datatypes.JSONSlice[uint]                   `json:"counselorNoteIds,omitempty"`
	AIModel                 string                                      `gorm:"size:128;not null" json:"aiModel"`
	AIResponseTimeMs        int64                                       `gorm:"not null" json:"aiResponseTimeMs"`
	CreatedAt               time.Time                                   `gorm:"index:idx_evaluation_user_created" json:"createdAt"`
}

// BeforeUpdate blocks every update of a stored evaluation.
func (e *Evaluation) BeforeUpdate(tx *gorm.DB) error {
	return ErrEvaluationImmutable
}

// BeforeDelete blocks deletion of a stored evaluation.
func (e *Evaluation) BeforeDelete(tx *gorm.DB) error {
	return ErrEvaluationImmutable
}
