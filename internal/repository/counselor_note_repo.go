package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/models"
)

// CounselorNoteRepository reads counselor notes. Notes are written by another service.
type CounselorNoteRepository interface {
	ListByStudent(ctx context.Context, studentID uint) ([]models.CounselorNote, error)
}

type counselorNoteRepository struct {
	db *gorm.DB
}

// NewCounselorNoteRepository constructs a counselor note repository.
func NewCounselorNoteRepository(db *gorm.DB) CounselorNoteRepository {
	return &counselorNoteRepository{db: db}
}

// ListByStudent returns the notes newest first.
func (r *counselorNoteRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.CounselorNote, error) {
	var notes []models.CounselorNote
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}
