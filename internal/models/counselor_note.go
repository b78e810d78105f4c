package models

import "time"

// Counselor note categories.
const (
	NoteCategoryGeneral        = "general"
	NoteCategoryStrength       = "strength"
	NoteCategoryConcern        = "concern"
	NoteCategoryRecommendation = "recommendation"
)

// CounselorNote is free text a counselor attaches to an assigned student.
type CounselorNote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CounselorID uint      `gorm:"not null" json:"counselorId"`
	StudentID   uint      `gorm:"not null;index" json:"studentId"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Category    string    `gorm:"size:32;not null" json:"category"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
