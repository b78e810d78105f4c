package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/internal/repository"
)

var (
	// ErrActivityNotFound is returned for missing, foreign or soft-deleted activities.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrActivityDateRange indicates an end date before the start date.
	ErrActivityDateRange = errors.New("end date must not be before start date")
	// ErrActivityContentEmpty indicates a text field became empty after sanitisation.
	ErrActivityContentEmpty = errors.New("title and description must contain text")
)

// ActivityService manages a student's extracurricular activities.
type ActivityService interface {
	List(ctx context.Context, studentID uint) ([]dto.ActivityResponse, error)
	Get(ctx context.Context, studentID, id uint) (dto.ActivityResponse, error)
	Create(ctx context.Context, studentID uint, req dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	Update(ctx context.Context, studentID, id uint, req dto.ActivityUpdateRequest) (dto.ActivityResponse, error)
	Delete(ctx context.Context, studentID, id uint) error
}

type activityService struct {
	repo      repository.ActivityRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	audit     AuditRecorder
	summary   *SummaryCache
	logger    zerolog.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityRepository, validate *validator.Validate, audit AuditRecorder, summary *SummaryCache, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		audit:     audit,
		summary:   summary,
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) List(ctx context.Context, studentID uint) ([]dto.ActivityResponse, error) {
	items, err := s.repo.ListActive(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityResponseSlice(items), nil
}

func (s *activityService) Get(ctx context.Context, studentID, id uint) (dto.ActivityResponse, error) {
	activity, err := s.load(ctx, studentID, id)
	if err != nil {
		return dto.ActivityResponse{}, err
	}
	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Create(ctx context.Context, studentID uint, req dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}
	startDate := req.StartDate.UTC()
	if req.EndDate != nil && req.EndDate.Before(startDate) {
		return dto.ActivityResponse{}, ErrActivityDateRange
	}

	activity := models.Activity{
		UserID:             studentID,
		Title:              plainText(s.sanitizer, req.Title),
		Description:        plainText(s.sanitizer, req.Description),
		Category:           req.Category,
		StartDate:          startDate,
		EndDate:            req.EndDate.UTCPtr(),
		HoursPerWeek:       *req.HoursPerWeek,
		LeadershipRole:     req.LeadershipRole,
		InitiativeLevel:    req.InitiativeLevel,
		MeasurableOutcomes: plainText(s.sanitizer, req.MeasurableOutcomes),
		EvidenceLinks:      req.EvidenceLinks,
	}
	if activity.Title == "" || activity.Description == "" {
		return dto.ActivityResponse{}, ErrActivityContentEmpty
	}

	if err := s.repo.Create(ctx, &activity); err != nil {
		s.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to create activity")
		return dto.ActivityResponse{}, err
	}

	s.changed(ctx, studentID, models.AuditActionActivityCreated, activity)
	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Update(ctx context.Context, studentID, id uint, req dto.ActivityUpdateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}

	activity, err := s.load(ctx, studentID, id)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if req.Title != nil {
		activity.Title = plainText(s.sanitizer, *req.Title)
	}
	if req.Description != nil {
		activity.Description = plainText(s.sanitizer, *req.Description)
	}
	if req.Category != nil {
		activity.Category = *req.Category
	}
	if req.StartDate != nil {
		activity.StartDate = req.StartDate.UTC()
	}
	if req.EndDate.Set {
		activity.EndDate = req.EndDate.Value.UTCPtr()
	}
	if req.HoursPerWeek != nil {
		activity.HoursPerWeek = *req.HoursPerWeek
	}
	if req.LeadershipRole != nil {
		activity.LeadershipRole = *req.LeadershipRole
	}
	if req.InitiativeLevel != nil {
		activity.InitiativeLevel = *req.InitiativeLevel
	}
	if req.MeasurableOutcomes != nil {
		activity.MeasurableOutcomes = plainText(s.sanitizer, *req.MeasurableOutcomes)
	}
	if req.EvidenceLinks != nil {
		activity.EvidenceLinks = req.EvidenceLinks
	}

	if activity.Title == "" || activity.Description == "" {
		return dto.ActivityResponse{}, ErrActivityContentEmpty
	}
	if activity.EndDate != nil && activity.EndDate.Before(activity.StartDate) {
		return dto.ActivityResponse{}, ErrActivityDateRange
	}

	if err := s.repo.Update(ctx, &activity); err != nil {
		s.logger.Error().Err(err).Uint("activity_id", id).Msg("failed to update activity")
		return dto.ActivityResponse{}, err
	}

	s.changed(ctx, studentID, models.AuditActionActivityUpdated, activity)
	return dto.NewActivityResponse(activity), nil
}

// Delete only deactivates the activity; stored evaluations keep their snapshot.
func (s *activityService) Delete(ctx context.Context, studentID, id uint) error {
	if err := s.repo.SoftDelete(ctx, id, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("deactivate activity: %w", err)
	}

	s.changed(ctx, studentID, models.AuditActionActivityDeleted, models.Activity{ID: id})
	return nil
}

func (s *activityService) load(ctx context.Context, studentID, id uint) (models.Activity, error) {
	activity, err := s.repo.GetActive(ctx, id, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Activity{}, ErrActivityNotFound
		}
		return models.Activity{}, err
	}
	return activity, nil
}

func (s *activityService) changed(ctx context.Context, studentID uint, action string, activity models.Activity) {
	metadata := map[string]interface{}{}
	if activity.Title != "" {
		metadata["title"] = activity.Title
		metadata["category"] = activity.Category
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    studentID,
		ActorRole:  models.RoleStudent,
		Action:     action,
		EntityType: "activity",
		EntityID:   uintPtr(activity.ID),
		Metadata:   metadata,
	})
	s.summary.Invalidate(ctx, studentID)
}
