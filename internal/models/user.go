package models

import (
	"strings"
	"time"
)

// User roles.
const (
	RoleStudent   = "student"
	RoleCounselor = "counselor"
)

// User is an account that is either a student or a counselor.
type User struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	Email               string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName           string          `gorm:"size:120" json:"firstName"`
	LastName            string          `gorm:"size:120" json:"lastName"`
	Role                string          `gorm:"size:32;not null;index" json:"role"`
	AssignedCounselorID *uint           `gorm:"index" json:"assignedCounselorId,omitempty"`
	Profile             *StudentProfile `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"profile,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// FullName joins the first and last names.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// IsAssignedTo reports whether the user is a student assigned to the counselor.
func (u User) IsAssignedTo(counselorID uint) bool {
	return counselorID != 0 && u.AssignedCounselorID != nil && *u.AssignedCounselorID == counselorID
}

// StudentProfile holds the context used to adjust evaluation scores.
type StudentProfile struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	UserID              uint      `gorm:"uniqueIndex;not null" json:"-"`
	GradeLevel          string    `gorm:"size:32" json:"gradeLevel"`
	SchoolType          string    `gorm:"size:64" json:"schoolType"`
	SchoolName          string    `gorm:"size:255" json:"schoolName,omitempty"`
	GeographicContext   string    `gorm:"size:64" json:"geographicContext"`
	ResourceConstraints string    `gorm:"type:text" json:"resourceConstraints,omitempty"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}

// IsComplete reports whether the profile carries every field an evaluation needs.
func (p *StudentProfile) IsComplete() bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.GradeLevel) != "" &&
		strings.TrimSpace(p.SchoolType) != "" &&
		strings.TrimSpace(p.GeographicContext) != ""
}
