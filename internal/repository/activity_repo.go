package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/models"
)

// ActivityRepository persists student activities. Reads only ever return active rows.
type ActivityRepository interface {
	ListActive(ctx context.Context, userID uint, limit int) ([]models.Activity, error)
	CountActive(ctx context.Context, userID uint) (int64, error)
	GetActive(ctx context.Context, id, userID uint) (models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	SoftDelete(ctx context.Context, id, userID uint) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs an activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) active(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("user_id = ? AND is_active = ?", userID, true)
}

func (r *activityRepository) ListActive(ctx context.Context, userID uint, limit int) ([]models.Activity, error) {
	query := r.active(ctx, userID).Order("start_date DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var activities []models.Activity
	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}

	return activities, nil
}

func (r *activityRepository) CountActive(ctx context.Context, userID uint) (int64, error) {
	var total int64
	if err := r.active(ctx, userID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *activityRepository) GetActive(ctx context.Context, id, userID uint) (models.Activity, error) {
	var activity models.Activity
	if err := r.active(ctx, userID).Where("id = ?", id).First(&activity).Error; err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	activity.IsActive = true
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) Update(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

// SoftDelete returns gorm.ErrRecordNotFound when no active row matched.
func (r *activityRepository) SoftDelete(ctx context.Context, id, userID uint) error {
	result := r.active(ctx, userID).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
