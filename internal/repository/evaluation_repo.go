package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/models"
)

// EvaluationRepository stores evaluations. Rows are immutable once created.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, id uint) (models.Evaluation, error)
	Latest(ctx context.Context, userID uint) (models.Evaluation, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Evaluation, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository constructs an evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).First(&evaluation, id).Error; err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) Latest(ctx context.Context, userID uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		First(&evaluation).Error
	if err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

// ListByUser returns evaluations newest first.
func (r *evaluationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&evaluations).Error
	if err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *evaluationRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Evaluation{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
