package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/internal/repository"
)

// ErrStudentNotFound is returned when the student account does not exist.
var ErrStudentNotFound = errors.New("student not found")

const recentActivityLimit = 5

// ProfileService serves the student's own profile and dashboard summary.
type ProfileService interface {
	Get(ctx context.Context, studentID uint) (dto.ProfileResponse, error)
	Update(ctx context.Context, studentID uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	Summary(ctx context.Context, studentID uint) (dto.StudentSummaryResponse, error)
}

type profileService struct {
	users       repository.UserRepository
	activities  repository.ActivityRepository
	evaluations repository.EvaluationRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	audit       AuditRecorder
	summary     *SummaryCache
	logger      zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, activities repository.ActivityRepository, evaluations repository.EvaluationRepository, validate *validator.Validate, audit AuditRecorder, summary *SummaryCache, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:       users,
		activities:  activities,
		evaluations: evaluations,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		audit:       audit,
		summary:     summary,
		logger:      logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, studentID uint) (dto.ProfileResponse, error) {
	user, err := s.student(ctx, studentID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(user), nil
}

func (s *profileService) Update(ctx context.Context, studentID uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	user, err := s.student(ctx, studentID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	if req.FirstName != nil || req.LastName != nil {
		if req.FirstName != nil {
			user.FirstName = plainText(s.sanitizer, *req.FirstName)
		}
		if req.LastName != nil {
			user.LastName = plainText(s.sanitizer, *req.LastName)
		}
		if err := s.users.UpdateName(ctx, studentID, user.FirstName, user.LastName); err != nil {
			return dto.ProfileResponse{}, fmt.Errorf("update name: %w", err)
		}
	}

	profile := user.Profile
	if profile == nil {
		profile = &models.StudentProfile{UserID: studentID}
	}
	assign := func(target *string, value *string) {
		if value != nil {
			*target = plainText(s.sanitizer, *value)
		}
	}
	assign(&profile.GradeLevel, req.GradeLevel)
	assign(&profile.SchoolType, req.SchoolType)
	assign(&profile.SchoolName, req.SchoolName)
	assign(&profile.GeographicContext, req.GeographicContext)
	assign(&profile.ResourceConstraints, req.ResourceConstraints)

	if err := s.users.SaveProfile(ctx, profile); err != nil {
		s.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to save profile")
		return dto.ProfileResponse{}, err
	}
	user.Profile = profile

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    studentID,
		ActorRole:  models.RoleStudent,
		Action:     models.AuditActionProfileUpdated,
		EntityType: "student_profile",
		EntityID:   uintPtr(profile.ID),
		Metadata:   map[string]interface{}{"complete": profile.IsComplete()},
	})
	s.summary.Invalidate(ctx, studentID)

	return dto.NewProfileResponse(user), nil
}

func (s *profileService) Summary(ctx context.Context, studentID uint) (dto.StudentSummaryResponse, error) {
	if cached, ok := s.summary.Get(ctx, studentID); ok {
		return cached, nil
	}

	user, err := s.student(ctx, studentID)
	if err != nil {
		return dto.StudentSummaryResponse{}, err
	}

	var (
		recent          []models.Activity
		activityCount   int64
		evaluationCount int64
		latest          *models.Evaluation
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		items, err := s.activities.ListActive(groupCtx, studentID, recentActivityLimit)
		recent = items
		return err
	})
	group.Go(func() error {
		total, err := s.activities.CountActive(groupCtx, studentID)
		activityCount = total
		return err
	})
	group.Go(func() error {
		total, err := s.evaluations.CountByUser(groupCtx, studentID)
		evaluationCount = total
		return err
	})
	group.Go(func() error {
		evaluation, err := s.evaluations.Latest(groupCtx, studentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		latest = &evaluation
		return nil
	})
	if err := group.Wait(); err != nil {
		return dto.StudentSummaryResponse{}, err
	}

	summary := dto.StudentSummaryResponse{
		Profile:          dto.NewProfileResponse(user),
		ActivityCount:    activityCount,
		RecentActivities: dto.NewActivityResponseSlice(recent),
		EvaluationCount:  evaluationCount,
	}
	if latest != nil {
		score := latest.Scores.FinalProfileiqScore
		created := latest.CreatedAt
		summary.LatestScore = &score
		summary.LastEvaluationDate = &created
	}

	s.summary.Set(ctx, studentID, summary)
	return summary, nil
}

func (s *profileService) student(ctx context.Context, studentID uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrStudentNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
