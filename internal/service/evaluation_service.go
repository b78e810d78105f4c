package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/internal/observability"
	"github.com/noah-isme/profileiq-api/internal/repository"
	"github.com/noah-isme/profileiq-api/pkg/ai"
)

var (
	// ErrProfileRequired indicates the student has no complete profile yet.
	ErrProfileRequired = errors.New("complete your profile before evaluation")
	// ErrActivitiesRequired indicates the student has no active activity.
	ErrActivitiesRequired = errors.New("add at least one activity before evaluation")
	// ErrEvaluationNotFound is returned when the evaluation does not exist.
	ErrEvaluationNotFound = errors.New("evaluation not found")
	// ErrEvaluationForbidden is returned to callers that neither own the evaluation nor counsel its owner.
	ErrEvaluationForbidden = errors.New("access denied")
)

// EvaluationStage names a step of the evaluation pipeline.
type EvaluationStage string

// Pipeline stages. The last six are terminal.
const (
	StageIdle                          EvaluationStage = "Idle"
	StageProfileChecked                EvaluationStage = "ProfileChecked"
	StageActivitiesLoaded              EvaluationStage = "ActivitiesLoaded"
	StagePayloadBuilt                  EvaluationStage = "PayloadBuilt"
	StageOracleCalled                  EvaluationStage = "OracleCalled"
	StageValidated                     EvaluationStage = "Validated"
	StagePersisted                     EvaluationStage = "Persisted"
	StageRejectedNoProfile             EvaluationStage = "RejectedNoProfile"
	StageRejectedNoActivities          EvaluationStage = "RejectedNoActivities"
	StageFailedOracleCall              EvaluationStage = "FailedOracleCall"
	StageRejectedInvalidOracleResponse EvaluationStage = "RejectedInvalidOracleResponse"
	StageFailedLoad                    EvaluationStage = "FailedLoad"
	StageFailedPersist                 EvaluationStage = "FailedPersist"
)

// EvaluationService runs the scoring pipeline and serves stored evaluations.
type EvaluationService interface {
	Trigger(ctx context.Context, studentID uint) (dto.EvaluationResponse, error)
	List(ctx context.Context, studentID uint) (dto.EvaluationListResponse, error)
	Latest(ctx context.Context, studentID uint) (dto.EvaluationResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.EvaluationResponse, error)
	Export(ctx context.Context, actor Actor, id uint) (dto.EvaluationExport, error)
}

// EvaluationDependencies groups the collaborators of the evaluation service.
type EvaluationDependencies struct {
	Users       repository.UserRepository
	Activities  repository.ActivityRepository
	Notes       repository.CounselorNoteRepository
	Evaluations repository.EvaluationRepository
	Evaluator   ai.Evaluator
	Validator   *ai.ResponseValidator
	Audit       AuditRecorder
	Summary     *SummaryCache
	Publisher   EventPublisher
}

type evaluationService struct {
	users       repository.UserRepository
	activities  repository.ActivityRepository
	notes       repository.CounselorNoteRepository
	evaluations repository.EvaluationRepository
	evaluator   ai.Evaluator
	validator   *ai.ResponseValidator
	audit       AuditRecorder
	summary     *SummaryCache
	publisher   EventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEvaluationService wires the evaluation pipeline.
func NewEvaluationService(deps EvaluationDependencies, logger zerolog.Logger) EvaluationService {
	validator := deps.Validator
	if validator == nil {
		validator = ai.MustResponseValidator()
	}

	return &evaluationService{
		users:       deps.Users,
		activities:  deps.Activities,
		notes:       deps.Notes,
		evaluations: deps.Evaluations,
		evaluator:   deps.Evaluator,
		validator:   validator,
		audit:       deps.Audit,
		summary:     deps.Summary,
		publisher:   deps.Publisher,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		now:         time.Now,
	}
}

func (s *evaluationService) Trigger(ctx context.Context, studentID uint) (dto.EvaluationResponse, error) {
	run := s.newRun(studentID)

	profile, err := s.users.GetProfile(ctx, studentID)
	if err != nil {
		return dto.EvaluationResponse{}, run.fail(StageFailedLoad, fmt.Errorf("load profile: %w", err))
	}
	if !profile.IsComplete() {
		return dto.EvaluationResponse{}, run.fail(StageRejectedNoProfile, ErrProfileRequired)
	}
	run.advance(StageProfileChecked)

	var (
		activities []models.Activity
		notes      []models.CounselorNote
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		items, err := s.activities.ListActive(groupCtx, studentID, 0)
		if err != nil {
			return fmt.Errorf("load activities: %w", err)
		}
		activities = items
		return nil
	})
	group.Go(func() error {
		items, err := s.notes.ListByStudent(groupCtx, studentID)
		if err != nil {
			return fmt.Errorf("load counselor notes: %w", err)
		}
		notes = items
		return nil
	})
	if err := group.Wait(); err != nil {
		return dto.EvaluationResponse{}, run.fail(StageFailedLoad, err)
	}
	if len(activities) == 0 {
		return dto.EvaluationResponse{}, run.fail(StageRejectedNoActivities, ErrActivitiesRequired)
	}
	run.advance(StageActivitiesLoaded)

	now := s.now().UTC()
	payload := BuildEvaluationPayload(*profile, activities, notes, now)
	run.advance(StagePayloadBuilt)

	result, err := s.evaluator.Evaluate(ctx, payload)
	if err != nil {
		return dto.EvaluationResponse{}, run.fail(StageFailedOracleCall, err)
	}
	run.advance(StageOracleCalled)

	scoring, err := s.validator.Validate(result.Raw)
	if err != nil {
		return dto.EvaluationResponse{}, run.fail(StageRejectedInvalidOracleResponse, err)
	}
	run.advance(StageValidated)

	evaluation := TransformEvaluation(scoring, *profile, activities, result.Model, result.ResponseTime, now)
	evaluation.UserID = studentID
	evaluation.CounselorNoteIDs = noteIDs(notes)
	evaluation.CreatedAt = now

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		return dto.EvaluationResponse{}, run.fail(StageFailedPersist, fmt.Errorf("persist evaluation: %w", err))
	}
	run.finish(evaluation)

	s.afterPersist(ctx, evaluation)

	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) afterPersist(ctx context.Context, evaluation models.Evaluation) {
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    evaluation.UserID,
		ActorRole:  models.RoleStudent,
		Action:     models.AuditActionEvaluationCreated,
		EntityType: "evaluation",
		EntityID:   uintPtr(evaluation.ID),
		Metadata: map[string]interface{}{
			"final_profileiq_score": evaluation.Scores.FinalProfileiqScore,
			"ai_model":              evaluation.AIModel,
			"activity_count":        len(evaluation.ActivitySnapshot),
		},
	})

	s.summary.Invalidate(ctx, evaluation.UserID)

	if s.publisher != nil {
		event := EvaluationCreatedEvent{
			EvaluationID:        evaluation.ID,
			StudentID:           evaluation.UserID,
			FinalProfileiqScore: evaluation.Scores.FinalProfileiqScore,
			AIModel:             evaluation.AIModel,
			CreatedAt:           evaluation.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, SubjectEvaluationCreated, event); err != nil {
			s.logger.Warn().Err(err).Uint("evaluation_id", evaluation.ID).Msg("failed to publish evaluation event")
		}
	}
}

func (s *evaluationService) List(ctx context.Context, studentID uint) (dto.EvaluationListResponse, error) {
	items, err := s.evaluations.ListByUser(ctx, studentID)
	if err != nil {
		return dto.EvaluationListResponse{}, err
	}
	return dto.NewEvaluationListResponse(items), nil
}

func (s *evaluationService) Latest(ctx context.Context, studentID uint) (dto.EvaluationResponse, error) {
	evaluation, err := s.evaluations.Latest(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}
	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) Get(ctx context.Context, actor Actor, id uint) (dto.EvaluationResponse, error) {
	evaluation, _, err := s.authorized(ctx, actor, id)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) Export(ctx context.Context, actor Actor, id uint) (dto.EvaluationExport, error) {
	evaluation, owner, err := s.authorized(ctx, actor, id)
	if err != nil {
		return dto.EvaluationExport{}, err
	}
	return dto.NewEvaluationExport(evaluation, owner.FullName()), nil
}

// authorized loads the evaluation and its owner, allowing the owner and the owner's counselor.
func (s *evaluationService) authorized(ctx context.Context, actor Actor, id uint) (models.Evaluation, models.User, error) {
	evaluation, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evaluation{}, models.User{}, ErrEvaluationNotFound
		}
		return models.Evaluation{}, models.User{}, err
	}

	owner, err := s.users.GetByID(ctx, evaluation.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Evaluation{}, models.User{}, err
	}

	isOwner := actor.ID == evaluation.UserID
	isCounselor := actor.Role == models.RoleCounselor && owner.IsAssignedTo(actor.ID)
	if !isOwner && !isCounselor {
		return models.Evaluation{}, models.User{}, ErrEvaluationForbidden
	}

	return evaluation, owner, nil
}

func noteIDs(notes []models.CounselorNote) []uint {
	ids := make([]uint, 0, len(notes))
	for _, note := range notes {
		ids = append(ids, note.ID)
	}
	return ids
}

// evaluationRun tracks one trigger through the pipeline stages.
type evaluationRun struct {
	studentID uint
	stage     EvaluationStage
	started   time.Time
	logger    zerolog.Logger
}

func (s *evaluationService) newRun(studentID uint) *evaluationRun {
	return &evaluationRun{
		studentID: studentID,
		stage:     StageIdle,
		started:   time.Now(),
		logger:    s.logger.With().Uint("student_id", studentID).Logger(),
	}
}

func (r *evaluationRun) advance(stage EvaluationStage) {
	r.logger.Debug().Str("from", string(r.stage)).Str("to", string(stage)).Msg("evaluation stage")
	r.stage = stage
}

func (r *evaluationRun) fail(stage EvaluationStage, err error) error {
	observability.EvaluationOutcomes().WithLabelValues(string(stage)).Inc()

	level := zerolog.WarnLevel
	if stage == StageFailedLoad || stage == StageFailedPersist {
		level = zerolog.ErrorLevel
	}
	r.logger.WithLevel(level).Err(err).
		Str("last_stage", string(r.stage)).
		Str("outcome", string(stage)).
		Dur("elapsed", time.Since(r.started)).
		Msg("evaluation not created")

	r.stage = stage
	return err
}

func (r *evaluationRun) finish(evaluation models.Evaluation) {
	r.stage = StagePersisted
	observability.EvaluationOutcomes().WithLabelValues(string(StagePersisted)).Inc()
	r.logger.Info().
		Uint("evaluation_id", evaluation.ID).
		Float64("final_profileiq_score", evaluation.Scores.FinalProfileiqScore).
		Str("ai_model", evaluation.AIModel).
		Int64("ai_response_time_ms", evaluation.AIResponseTimeMs).
		Dur("elapsed", time.Since(r.started)).
		Msg("evaluation created")
}
