package service

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/pkg/ai"
)

// TransformEvaluation maps a validated oracle response onto an unsaved
// evaluation. Callers set the owner, note ids and creation time.
func TransformEvaluation(resp ai.ScoringResponse, profile models.StudentProfile, activities []models.Activity, model string, latency time.Duration, now time.Time) models.Evaluation {
	snapshot := make([]models.ActivitySnapshot, 0, len(activities))
	for _, activity := range activities {
		var links []string
		if len(activity.EvidenceLinks) > 0 {
			links = make([]string, len(activity.EvidenceLinks))
			copy(links, activity.EvidenceLinks)
		}

		snapshot = append(snapshot, models.ActivitySnapshot{
			Title:              activity.Title,
			Description:        activity.Description,
			Category:           activity.Category,
			DurationMonths:     DurationMonths(activity.StartDate, activity.EndDate, now),
			HoursPerWeek:       activity.HoursPerWeek,
			LeadershipRole:     activity.LeadershipRole,
			InitiativeLevel:    activity.InitiativeLevel,
			MeasurableOutcomes: activity.MeasurableOutcomes,
			EvidenceLinks:      links,
		})
	}

	guidance := make([]models.GuidanceRecommendation, 0, len(resp.GuidanceRecommendations))
	for _, rec := range resp.GuidanceRecommendations {
		guidance = append(guidance, models.GuidanceRecommendation{
			Area:                rec.Area,
			Suggestion:          rec.Suggestion,
			ExpectedScoreImpact: rec.ExpectedScoreImpact,
		})
	}

	return models.Evaluation{
		StudentContext: datatypes.NewJSONType(models.StudentContext{
			GradeLevel:          profile.GradeLevel,
			SchoolType:          profile.SchoolType,
			GeographicContext:   profile.GeographicContext,
			ResourceConstraints: profile.ResourceConstraints,
		}),
		ActivitySnapshot: snapshot,
		Scores: models.EvaluationScores{
			LeadershipImpact:      resp.Scores.LeadershipImpact,
			ExecutionDepth:        resp.Scores.ExecutionDepth,
			GrowthTrajectory:      resp.Scores.GrowthTrajectory,
			ContextAdjustedImpact: resp.Scores.ContextAdjustedImpact,
			FinalProfileiqScore:   resp.Scores.FinalProfileiqScore,
		},
		ScoreExplanations: datatypes.NewJSONType(models.ScoreExplanations{
			LeadershipImpact:      resp.ScoreExplanations.LeadershipImpact,
			ExecutionDepth:        resp.ScoreExplanations.ExecutionDepth,
			GrowthTrajectory:      resp.ScoreExplanations.GrowthTrajectory,
			ContextAdjustedImpact: resp.ScoreExplanations.ContextAdjustedImpact,
		}),
		Strengths:               copyStrings(resp.Strengths),
		ImprovementAreas:        copyStrings(resp.ImprovementAreas),
		GuidanceRecommendations: guidance,
		CommonAppSummary:        copyStrings(resp.CommonAppSummary),
		AIModel:                 model,
		AIResponseTimeMs:        latency.Milliseconds(),
	}
}

func copyStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
