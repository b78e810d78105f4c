package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/internal/repository"
)

func strPtr(v string) *string { return &v }

func TestProfileServiceUpdateIsPartial(t *testing.T) {
	db := setupServiceTestDB(t)
	student := models.User{Email: "ana@example.com", FirstName: "Ana", LastName: "Reyes", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	audit := &stubAudit{}
	svc := NewProfileService(
		repository.NewUserRepository(db),
		repository.NewActivityRepository(db),
		repository.NewEvaluationRepository(db),
		validator.New(),
		audit,
		nil,
		zerolog.Nop(),
	)
	ctx := context.Background()

	profile, err := svc.Get(ctx, student.ID)
	require.NoError(t, err)
	require.False(t, profile.Complete)

	profile, err = svc.Update(ctx, student.ID, dto.ProfileUpdateRequest{
		GradeLevel:        strPtr("11"),
		SchoolType:        strPtr("public"),
		GeographicContext: strPtr("<i>rural</i>"),
	})
	require.NoError(t, err)
	require.True(t, profile.Complete)
	require.Equal(t, "rural", profile.GeographicContext)
	require.Equal(t, "Ana", profile.FirstName)

	profile, err = svc.Update(ctx, student.ID, dto.ProfileUpdateRequest{
		FirstName:           strPtr("Anabel"),
		ResourceConstraints: strPtr("Cares for siblings after school"),
	})
	require.NoError(t, err)
	require.Equal(t, "Anabel", profile.FirstName)
	require.Equal(t, "Reyes", profile.LastName)
	require.Equal(t, "11", profile.GradeLevel, "omitted fields keep their value")
	require.Equal(t, "Cares for siblings after school", profile.ResourceConstraints)

	var count int64
	require.NoError(t, db.Model(&models.StudentProfile{}).Where("user_id = ?", student.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
	require.Len(t, audit.entries, 2)

	_, err = svc.Get(ctx, 999)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestProfileServiceSummaryCachesAndInvalidates(t *testing.T) {
	db := setupServiceTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	student := models.User{Email: "ana@example.com", FirstName: "Ana", LastName: "Reyes", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&models.StudentProfile{
		UserID: student.ID, GradeLevel: "11", SchoolType: "public", GeographicContext: "rural",
	}).Error)

	for i := 0; i < 7; i++ {
		require.NoError(t, db.Create(&models.Activity{
			UserID: student.ID, Title: "Activity", Description: "d", Category: models.ActivityCategoryOther,
			StartDate: date(2023, time.Month(i+1), 1), LeadershipRole: models.LeadershipNone,
			InitiativeLevel: models.InitiativeParticipant, IsActive: true,
		}).Error)
	}
	evaluatedAt := date(2024, 1, 5)
	require.NoError(t, db.Create(&models.Evaluation{
		UserID: student.ID, AIModel: "gemini-2.5-flash-lite", CreatedAt: evaluatedAt,
		Scores: models.EvaluationScores{FinalProfileiqScore: 68},
	}).Error)

	cache := NewSummaryCache(client, time.Minute, zerolog.Nop())
	activityRepo := repository.NewActivityRepository(db)
	svc := NewProfileService(repository.NewUserRepository(db), activityRepo, repository.NewEvaluationRepository(db), validator.New(), nil, cache, zerolog.Nop())
	ctx := context.Background()

	summary, err := svc.Summary(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), summary.ActivityCount)
	require.Len(t, summary.RecentActivities, recentActivityLimit)
	require.Equal(t, date(2023, 7, 1), summary.RecentActivities[0].StartDate.UTC())
	require.NotNil(t, summary.LatestScore)
	require.Equal(t, 68.0, *summary.LatestScore)
	require.Equal(t, int64(1), summary.EvaluationCount)
	require.True(t, summary.Profile.Complete)
	require.True(t, mr.Exists(summaryCacheKey(student.ID)))

	require.NoError(t, db.Model(&models.Activity{}).Where("user_id = ?", student.ID).Update("is_active", false).Error)

	cached, err := svc.Summary(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), cached.ActivityCount, "served from cache")

	cache.Invalidate(ctx, student.ID)
	require.False(t, mr.Exists(summaryCacheKey(student.ID)))

	fresh, err := svc.Summary(ctx, student.ID)
	require.NoError(t, err)
	require.Zero(t, fresh.ActivityCount)
	require.Empty(t, fresh.RecentActivities)
}

func TestProfileServiceSummaryWithoutEvaluations(t *testing.T) {
	db := setupServiceTestDB(t)
	student := models.User{Email: "sam@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	svc := NewProfileService(repository.NewUserRepository(db), repository.NewActivityRepository(db), repository.NewEvaluationRepository(db), validator.New(), nil, nil, zerolog.Nop())

	summary, err := svc.Summary(context.Background(), student.ID)
	require.NoError(t, err)
	require.Nil(t, summary.LatestScore)
	require.Nil(t, summary.LastEvaluationDate)
	require.Zero(t, summary.EvaluationCount)
	require.False(t, summary.Profile.Complete)
}
