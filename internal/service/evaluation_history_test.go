package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/internal/repository"
	"github.com/noah-isme/profileiq-api/pkg/ai"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.Activity{},
		&models.CounselorNote{},
		&models.Evaluation{},
		&models.AuditLog{},
	))
	return db
}

func TestSoftDeletedActivityKeepsHistoricalEvaluation(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()

	student := models.User{Email: "ana@example.com", FirstName: "Ana", LastName: "Reyes", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&models.StudentProfile{
		UserID: student.ID, GradeLevel: "11", SchoolType: "public", GeographicContext: "rural",
	}).Error)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	users := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	audit := NewAuditService(repository.NewAuditLogRepository(db), zerolog.Nop())
	summary := NewSummaryCache(client, time.Minute, zerolog.Nop())
	activities := NewActivityService(activityRepo, validator.New(), audit, summary, zerolog.Nop())

	evaluator := &stubEvaluator{result: ai.EvaluationResult{
		Raw:          oracleDocument(t, validOracleJSON),
		Model:        ai.DefaultGeminiModel,
		ResponseTime: time.Second,
	}}
	evaluations := NewEvaluationService(EvaluationDependencies{
		Users:       users,
		Activities:  activityRepo,
		Notes:       repository.NewCounselorNoteRepository(db),
		Evaluations: evaluationRepo,
		Evaluator:   evaluator,
		Audit:       audit,
		Summary:     summary,
		Publisher:   NewNATSPublisher(nil),
	}, zerolog.Nop())

	hours := 5.0
	kept, err := activities.Create(ctx, student.ID, dto.ActivityCreateRequest{
		Title: "Tutoring circle", Description: "Weekly peer tutoring", Category: models.ActivityCategoryVolunteer,
		StartDate: dto.DateOf(date(2023, 1, 1)), EndDate: dto.DateOf(date(2023, 7, 1)), HoursPerWeek: &hours,
		LeadershipRole: models.LeadershipFounder, InitiativeLevel: models.InitiativeSelfStarted,
	})
	require.NoError(t, err)
	removed, err := activities.Create(ctx, student.ID, dto.ActivityCreateRequest{
		Title: "Robotics", Description: "Build season", Category: models.ActivityCategoryClub,
		StartDate: dto.DateOf(date(2023, 9, 1)), HoursPerWeek: &hours,
		LeadershipRole: models.LeadershipMember, InitiativeLevel: models.InitiativeParticipant,
	})
	require.NoError(t, err)

	first, err := evaluations.Trigger(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, first.ActivitySnapshot, 2)

	require.NoError(t, activities.Delete(ctx, student.ID, removed.ID))

	stored, err := evaluationRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, stored.ActivitySnapshot, 2, "stored snapshot is unaffected by the soft delete")
	titles := []string{stored.ActivitySnapshot[0].Title, stored.ActivitySnapshot[1].Title}
	require.ElementsMatch(t, []string{"Tutoring circle", "Robotics"}, titles)

	second, err := evaluations.Trigger(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, second.ActivitySnapshot, 1)
	require.Equal(t, kept.Title, second.ActivitySnapshot[0].Title)
	require.Len(t, evaluator.payloads[1].Activities, 1)

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionEvaluationCreated).Count(&auditCount).Error)
	require.Equal(t, int64(2), auditCount)
}
