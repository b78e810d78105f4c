package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/models"
)

// UserRepository provides access to users and student profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	ListAssignedStudents(ctx context.Context, counselorID uint) ([]models.User, error)
	GetProfile(ctx context.Context, userID uint) (*models.StudentProfile, error)
	SaveProfile(ctx context.Context, profile *models.StudentProfile) error
	UpdateName(ctx context.Context, userID uint, firstName, lastName string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) ListAssignedStudents(ctx context.Context, counselorID uint) ([]models.User, error) {
	var students []models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("role = ? AND assigned_counselor_id = ?", models.RoleStudent, counselorID).
		Order("last_name ASC").
		Order("first_name ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

// GetProfile returns nil without error when the student has no profile yet.
func (r *userRepository) GetProfile(ctx context.Context, userID uint) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

func (r *userRepository) SaveProfile(ctx context.Context, profile *models.StudentProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *userRepository) UpdateName(ctx context.Context, userID uint, firstName, lastName string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"first_name": firstName, "last_name": lastName}).Error
}
