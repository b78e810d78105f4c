package dto

import (
	"time"

	"github.com/noah-isme/profileiq-api/internal/models"
)

// ActivityCreateRequest is the body of POST /activities.
type ActivityCreateRequest struct {
	Title              string   `json:"title" validate:"required,min=1,max=200"`
	Description        string   `json:"description" validate:"required,min=1,max=2000"`
	Category           string   `json:"category" validate:"required,oneof=club volunteer work research personal_project arts athletics other"`
	StartDate          *Date    `json:"startDate" validate:"required"`
	EndDate            *Date    `json:"endDate"`
	HoursPerWeek       *float64 `json:"hoursPerWeek" validate:"required,gte=0,lte=168"`
	LeadershipRole     string   `json:"leadershipRole" validate:"required,oneof=founder president officer member none"`
	InitiativeLevel    string   `json:"initiativeLevel" validate:"required,oneof=self-started co-led participant"`
	MeasurableOutcomes string   `json:"measurableOutcomes" validate:"omitempty,max=1000"`
	EvidenceLinks      []string `json:"evidenceLinks" validate:"omitempty,max=5,dive,url"`
}

// ActivityUpdateRequest is the body of PUT /activities/:id. Omitted fields are
// kept; "endDate": null marks the activity as ongoing.
type ActivityUpdateRequest struct {
	Title              *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Description        *string      `json:"description" validate:"omitempty,min=1,max=2000"`
	Category           *string      `json:"category" validate:"omitempty,oneof=club volunteer work research personal_project arts athletics other"`
	StartDate          *Date        `json:"startDate"`
	EndDate            OptionalDate `json:"endDate"`
	HoursPerWeek       *float64     `json:"hoursPerWeek" validate:"omitempty,gte=0,lte=168"`
	LeadershipRole     *string      `json:"leadershipRole" validate:"omitempty,oneof=founder president officer member none"`
	InitiativeLevel    *string      `json:"initiativeLevel" validate:"omitempty,oneof=self-started co-led participant"`
	MeasurableOutcomes *string      `json:"measurableOutcomes" validate:"omitempty,max=1000"`
	EvidenceLinks      []string     `json:"evidenceLinks" validate:"omitempty,max=5,dive,url"`
}

// ActivityResponse is the API representation of an activity.
type ActivityResponse struct {
	ID                 uint       `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	HoursPerWeek       float64    `json:"hoursPerWeek"`
	LeadershipRole     string     `json:"leadershipRole"`
	InitiativeLevel    string     `json:"initiativeLevel"`
	MeasurableOutcomes string     `json:"measurableOutcomes,omitempty"`
	EvidenceLinks      []string   `json:"evidenceLinks"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// NewActivityResponse converts the model into its API representation.
func NewActivityResponse(model models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:                 model.ID,
		Title:              model.Title,
		Description:        model.Description,
		Category:           model.Category,
		StartDate:          model.StartDate,
		EndDate:            model.EndDate,
		HoursPerWeek:       model.HoursPerWeek,
		LeadershipRole:     model.LeadershipRole,
		InitiativeLevel:    model.InitiativeLevel,
		MeasurableOutcomes: model.MeasurableOutcomes,
		EvidenceLinks:      nonNil([]string(model.EvidenceLinks)),
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewActivityResponseSlice converts a list of activities.
func NewActivityResponseSlice(items []models.Activity) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewActivityResponse(item))
	}
	return responses
}
