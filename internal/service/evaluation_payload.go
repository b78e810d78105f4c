package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/pkg/ai"
)

const (
	approximateMonth          = 30 * 24 * time.Hour
	defaultResourceConstraint = "None specified"
	defaultMeasurableOutcomes = "Not specified"
)

// DurationMonths measures an activity in 30-day months, rounded, never below one.
// Ongoing activities are measured up to now.
func DurationMonths(start time.Time, end *time.Time, now time.Time) int {
	stop := now
	if end != nil {
		stop = *end
	}

	months := int(math.Round(float64(stop.Sub(start)) / float64(approximateMonth)))
	if months < 1 {
		return 1
	}
	return months
}

// BuildEvaluationPayload normalises the profile, active activities and notes
// into the oracle payload. Notes are expected newest first.
func BuildEvaluationPayload(profile models.StudentProfile, activities []models.Activity, notes []models.CounselorNote, now time.Time) ai.ProfilePayload {
	resourceConstraints := profile.ResourceConstraints
	if strings.TrimSpace(resourceConstraints) == "" {
		resourceConstraints = defaultResourceConstraint
	}

	items := make([]ai.ActivityPayload, 0, len(activities))
	for _, activity := range activities {
		outcomes := activity.MeasurableOutcomes
		if strings.TrimSpace(outcomes) == "" {
			outcomes = defaultMeasurableOutcomes
		}

		links := make([]string, len(activity.EvidenceLinks))
		copy(links, activity.EvidenceLinks)

		items = append(items, ai.ActivityPayload{
			Title:              activity.Title,
			Description:        activity.Description,
			DurationMonths:     DurationMonths(activity.StartDate, activity.EndDate, now),
			HoursPerWeek:       activity.HoursPerWeek,
			LeadershipRole:     activity.LeadershipRole,
			InitiativeLevel:    activity.InitiativeLevel,
			MeasurableOutcomes: outcomes,
			EvidenceLinks:      links,
		})
	}

	return ai.ProfilePayload{
		StudentContext: ai.StudentContext{
			GradeLevel:          profile.GradeLevel,
			SchoolType:          profile.SchoolType,
			GeographicContext:   profile.GeographicContext,
			ResourceConstraints: resourceConstraints,
		},
		Activities:     items,
		CounselorNotes: formatCounselorNotes(notes),
	}
}

func formatCounselorNotes(notes []models.CounselorNote) *string {
	if len(notes) == 0 {
		return nil
	}

	lines := make([]string, 0, len(notes))
	for _, note := range notes {
		lines = append(lines, fmt.Sprintf("[%s] %s", note.Category, note.Content))
	}

	joined := strings.Join(lines, "\n")
	return &joined
}
