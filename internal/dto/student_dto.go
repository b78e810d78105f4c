package dto

import (
	"time"

	"github.com/noah-isme/profileiq-api/internal/models"
)

// ProfileResponse combines the user's name with the student profile fields.
type ProfileResponse struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	GradeLevel          string `json:"gradeLevel"`
	SchoolType          string `json:"schoolType"`
	SchoolName          string `json:"schoolName,omitempty"`
	GeographicContext   string `json:"geographicContext"`
	ResourceConstraints string `json:"resourceConstraints,omitempty"`
	Complete            bool   `json:"complete"`
}

// NewProfileResponse builds the profile view. A missing profile yields blank fields.
func NewProfileResponse(user models.User) ProfileResponse {
	response := ProfileResponse{FirstName: user.FirstName, LastName: user.LastName}
	if user.Profile != nil {
		response.GradeLevel = user.Profile.GradeLevel
		response.SchoolType = user.Profile.SchoolType
		response.SchoolName = user.Profile.SchoolName
		response.GeographicContext = user.Profile.GeographicContext
		response.ResourceConstraints = user.Profile.ResourceConstraints
		response.Complete = user.Profile.IsComplete()
	}
	return response
}

// ProfileUpdateRequest is a partial update of the caller's profile.
type ProfileUpdateRequest struct {
	FirstName           *string `json:"firstName" validate:"omitempty,min=1,max=120"`
	LastName            *string `json:"lastName" validate:"omitempty,min=1,max=120"`
	GradeLevel          *string `json:"gradeLevel" validate:"omitempty,max=32"`
	SchoolType          *string `json:"schoolType" validate:"omitempty,max=64"`
	SchoolName          *string `json:"schoolName" validate:"omitempty,max=255"`
	GeographicContext   *string `json:"geographicContext" validate:"omitempty,max=64"`
	ResourceConstraints *string `json:"resourceConstraints" validate:"omitempty,max=2000"`
}

// StudentSummaryResponse powers the student dashboard.
type StudentSummaryResponse struct {
	Profile            ProfileResponse    `json:"profile"`
	ActivityCount      int64              `json:"activityCount"`
	RecentActivities   []ActivityResponse `json:"recentActivities"`
	LatestScore        *float64           `json:"latestScore"`
	EvaluationCount    int64              `json:"evaluationCount"`
	LastEvaluationDate *time.Time         `json:"lastEvaluationDate"`
}
