package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/internal/repository"
)

// ErrStudentNotAssigned is returned when a counselor asks for a student they do not counsel.
var ErrStudentNotAssigned = errors.New("not assigned to this student")

// CounselorService exposes the read-only counselor views.
type CounselorService interface {
	ListStudents(ctx context.Context, counselorID uint) ([]dto.AssignedStudentResponse, error)
	StudentDetail(ctx context.Context, counselorID, studentID uint) (dto.StudentDetailResponse, error)
}

type counselorService struct {
	users       repository.UserRepository
	activities  repository.ActivityRepository
	evaluations repository.EvaluationRepository
	notes       repository.CounselorNoteRepository
	logger      zerolog.Logger
}

// NewCounselorService constructs the counselor service.
func NewCounselorService(users repository.UserRepository, activities repository.ActivityRepository, evaluations repository.EvaluationRepository, notes repository.CounselorNoteRepository, logger zerolog.Logger) CounselorService {
	return &counselorService{
		users:       users,
		activities:  activities,
		evaluations: evaluations,
		notes:       notes,
		logger:      logger.With().Str("component", "counselor_service").Logger(),
	}
}

func (s *counselorService) ListStudents(ctx context.Context, counselorID uint) ([]dto.AssignedStudentResponse, error) {
	students, err := s.users.ListAssignedStudents(ctx, counselorID)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.AssignedStudentResponse, len(students))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for idx, student := range students {
		idx, student := idx, student
		group.Go(func() error {
			row := dto.AssignedStudentResponse{
				ID:      student.ID,
				Email:   student.Email,
				Profile: dto.NewProfileResponse(student),
			}

			count, err := s.activities.CountActive(groupCtx, student.ID)
			if err != nil {
				return err
			}
			row.ActivityCount = count

			latest, err := s.evaluations.Latest(groupCtx, student.ID)
			switch {
			case err == nil:
				score := latest.Scores.FinalProfileiqScore
				created := latest.CreatedAt
				row.LatestScore = &score
				row.LastEvaluationDate = &created
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			rows[idx] = row
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

func (s *counselorService) StudentDetail(ctx context.Context, counselorID, studentID uint) (dto.StudentDetailResponse, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentDetailResponse{}, ErrStudentNotFound
		}
		return dto.StudentDetailResponse{}, err
	}
	if student.Role != models.RoleStudent {
		return dto.StudentDetailResponse{}, ErrStudentNotFound
	}
	if !student.IsAssignedTo(counselorID) {
		s.logger.Warn().Uint("counselor_id", counselorID).Uint("student_id", studentID).Msg("counselor requested unassigned student")
		return dto.StudentDetailResponse{}, ErrStudentNotAssigned
	}

	var (
		activities  []models.Activity
		evaluations []models.Evaluation
		notes       []models.CounselorNote
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		items, err := s.activities.ListActive(groupCtx, studentID, 0)
		activities = items
		return err
	})
	group.Go(func() error {
		items, err := s.evaluations.ListByUser(groupCtx, studentID)
		evaluations = items
		return err
	})
	group.Go(func() error {
		items, err := s.notes.ListByStudent(groupCtx, studentID)
		notes = items
		return err
	})
	if err := group.Wait(); err != nil {
		return dto.StudentDetailResponse{}, err
	}

	return dto.StudentDetailResponse{
		Student: dto.StudentIdentity{
			ID:      student.ID,
			Email:   student.Email,
			Profile: dto.NewProfileResponse(student),
		},
		Activities:  dto.NewActivityResponseSlice(activities),
		Evaluations: dto.NewEvaluationResponseSlice(evaluations),
		Notes:       dto.NewCounselorNoteResponseSlice(notes),
	}, nil
}
