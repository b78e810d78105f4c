package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity categories.
const (
	ActivityCategoryClub            = "club"
	ActivityCategoryVolunteer       = "volunteer"
	ActivityCategoryWork            = "work"
	ActivityCategoryResearch        = "research"
	ActivityCategoryPersonalProject = "personal_project"
	ActivityCategoryArts            = "arts"
	ActivityCategoryAthletics       = "athletics"
	ActivityCategoryOther           = "other"
)

// Leadership roles.
const (
	LeadershipFounder   = "founder"
	LeadershipPresident = "president"
	LeadershipOfficer   = "officer"
	LeadershipMember    = "member"
	LeadershipNone      = "none"
)

// Initiative levels.
const (
	InitiativeSelfStarted = "self-started"
	InitiativeCoLed       = "co-led"
	InitiativeParticipant = "participant"
)

// Activity is an extracurricular entry logged by a student. Deleting an
// activity only clears IsActive so historical evaluations stay valid.
type Activity struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	UserID             uint                        `gorm:"not null;index:idx_activity_user_active" json:"userId"`
	Title              string                      `gorm:"size:200;not null" json:"title"`
	Description        string                      `gorm:"type:text;not null" json:"description"`
	Category           string                      `gorm:"size:32;not null" json:"category"`
	StartDate          time.Time                   `gorm:"not null;index" json:"startDate"`
	EndDate            *time.Time                  `json:"endDate,omitempty"`
	HoursPerWeek       float64                     `gorm:"not null" json:"hoursPerWeek"`
	LeadershipRole     string                      `gorm:"size:32;not null" json:"leadershipRole"`
	InitiativeLevel    string                      `gorm:"size:32;not null" json:"initiativeLevel"`
	MeasurableOutcomes string                      `gorm:"type:text" json:"measurableOutcomes,omitempty"`
	EvidenceLinks      datatypes.JSONSlice[string] `json:"evidenceLinks,omitempty"`
	IsActive           bool                        `gorm:"not null;default:true;index:idx_activity_user_active" json:"isActive"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}
