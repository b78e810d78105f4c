package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/pkg/ai"
)

type evaluationFixture struct {
	users       *stubUserRepo
	activities  *stubActivityRepo
	notes       *stubNoteRepo
	evaluations *stubEvaluationRepo
	evaluator   *stubEvaluator
	audit       *stubAudit
	publisher   *stubPublisher
	service     *evaluationService
}

const (
	studentID   uint = 10
	counselorID uint = 20
)

func newEvaluationFixture(t *testing.T, evaluator ai.Evaluator) *evaluationFixture {
	t.Helper()
	assigned := counselorID

	fx := &evaluationFixture{
		users: &stubUserRepo{
			users: map[uint]models.User{
				studentID:   {ID: studentID, FirstName: "Ana", LastName: "Reyes", Role: models.RoleStudent, AssignedCounselorID: &assigned},
				counselorID: {ID: counselorID, FirstName: "Cole", LastName: "Ng", Role: models.RoleCounselor},
			},
			profiles: map[uint]*models.StudentProfile{
				studentID: {UserID: studentID, GradeLevel: "11", SchoolType: "public", GeographicContext: "rural"},
			},
		},
		activities:  &stubActivityRepo{},
		notes:       &stubNoteRepo{},
		evaluations: &stubEvaluationRepo{},
		evaluator: &stubEvaluator{result: ai.EvaluationResult{
			Raw:          oracleDocument(t, validOracleJSON),
			Model:        ai.DefaultGeminiModel,
			ResponseTime: 1200 * time.Millisecond,
		}},
		audit:     &stubAudit{},
		publisher: &stubPublisher{},
	}

	if evaluator == nil {
		evaluator = fx.evaluator
	}

	svc := NewEvaluationService(EvaluationDependencies{
		Users:       fx.users,
		Activities:  fx.activities,
		Notes:       fx.notes,
		Evaluations: fx.evaluations,
		Evaluator:   evaluator,
		Audit:       fx.audit,
		Publisher:   fx.publisher,
	}, zerolog.Nop()).(*evaluationService)
	svc.now = func() time.Time { return date(2024, 1, 1) }
	fx.service = svc

	return fx
}

func (fx *evaluationFixture) addActivity(start time.Time, end *time.Time) {
	fx.activities.items = append(fx.activities.items, models.Activity{
		ID: uint(len(fx.activities.items) + 1), UserID: studentID,
		Title: "Tutoring circle", Description: "Weekly peer tutoring", Category: models.ActivityCategoryVolunteer,
		StartDate: start, EndDate: end, HoursPerWeek: 4,
		LeadershipRole: models.LeadershipFounder, InitiativeLevel: models.InitiativeSelfStarted,
		IsActive: true,
	})
}

func TestEvaluationTriggerPersistsValidatedEvaluation(t *testing.T) {
	fx := newEvaluationFixture(t, nil)
	end := date(2023, 7, 1)
	fx.addActivity(date(2023, 1, 1), &end)

	resp, err := fx.service.Trigger(context.Background(), studentID)
	require.NoError(t, err)

	require.Equal(t, 1, fx.evaluator.calls)
	payload := fx.evaluator.payloads[0]
	require.Equal(t, 6, payload.Activities[0].DurationMonths)
	require.Equal(t, "None specified", payload.StudentContext.ResourceConstraints)
	require.Nil(t, payload.CounselorNotes)

	require.Len(t, fx.evaluations.created, 1)
	stored := fx.evaluations.created[0]
	require.Equal(t, studentID, stored.UserID)
	require.Equal(t, 6, stored.ActivitySnapshot[0].DurationMonths)
	require.Equal(t, date(2024, 1, 1), stored.CreatedAt)
	require.Empty(t, stored.CounselorNoteIDs)

	require.Equal(t, stored.ID, resp.ID)
	require.Equal(t, 71.0, resp.Scores.FinalProfileiqScore)
	require.Equal(t, ai.DefaultGeminiModel, resp.AIModel)
	require.Equal(t, int64(1200), resp.AIResponseTimeMs)

	require.Len(t, fx.audit.entries, 1)
	require.Equal(t, models.AuditActionEvaluationCreated, fx.audit.entries[0].Action)
	require.Len(t, fx.publisher.events, 1)
	require.Equal(t, SubjectEvaluationCreated, fx.publisher.events[0].subject)
}

func TestEvaluationTriggerRecordsConsideredNotes(t *testing.T) {
	fx := newEvaluationFixture(t, nil)
	fx.addActivity(date(2023, 1, 1), nil)
	fx.notes.notes = []models.CounselorNote{
		{ID: 5, StudentID: studentID, Category: models.NoteCategoryRecommendation, Content: "Apply for the county grant"},
		{ID: 2, StudentID: studentID, Category: models.NoteCategoryGeneral, Content: "Met in September"},
	}

	_, err := fx.service.Trigger(context.Background(), studentID)
	require.NoError(t, err)

	require.Equal(t, "[recommendation] Apply for the county grant\n[general] Met in September", *fx.evaluator.payloads[0].CounselorNotes)
	require.Equal(t, []uint{5, 2}, []uint(fx.evaluations.created[0].CounselorNoteIDs))
}

func TestEvaluationTriggerPreconditions(t *testing.T) {
	t.Run("no activities", func(t *testing.T) {
		fx := newEvaluationFixture(t, nil)
		fx.activities.items = append(fx.activities.items, models.Activity{ID: 1, UserID: studentID, IsActive: false, StartDate: date(2023, 1, 1)})

		_, err := fx.service.Trigger(context.Background(), studentID)
		require.ErrorIs(t, err, ErrActivitiesRequired)
		require.Zero(t, fx.evaluator.calls)
		require.Empty(t, fx.evaluations.created)
	})

	t.Run("no profile", func(t *testing.T) {
		fx := newEvaluationFixture(t, nil)
		fx.addActivity(date(2023, 1, 1), nil)
		delete(fx.users.profiles, studentID)

		_, err := fx.service.Trigger(context.Background(), studentID)
		require.ErrorIs(t, err, ErrProfileRequired)
		require.Zero(t, fx.evaluator.calls)
	})

	t.Run("incomplete profile", func(t *testing.T) {
		fx := newEvaluationFixture(t, nil)
		fx.addActivity(date(2023, 1, 1), nil)
		fx.users.profiles[studentID].GeographicContext = "  "

		_, err := fx.service.Trigger(context.Background(), studentID)
		require.ErrorIs(t, err, ErrProfileRequired)
		require.Empty(t, fx.evaluations.created)
	})
}

func TestEvaluationTriggerRejectsInvalidOracleOutput(t *testing.T) {
	mutations := map[string]func(doc map[string]any){
		"score above range":   func(doc map[string]any) { doc["scores"].(map[string]any)["final_profileiq_score"] = 150.0 },
		"score below range":   func(doc map[string]any) { doc["scores"].(map[string]any)["leadership_impact"] = -1.0 },
		"missing guidance":    func(doc map[string]any) { delete(doc, "guidance_recommendations") },
		"missing explanation": func(doc map[string]any) { delete(doc["score_explanations"].(map[string]any), "execution_depth") },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			fx := newEvaluationFixture(t, nil)
			fx.addActivity(date(2023, 1, 1), nil)
			doc := oracleDocument(t, validOracleJSON)
			mutate(doc)
			fx.evaluator.result.Raw = doc

			_, err := fx.service.Trigger(context.Background(), studentID)
			require.ErrorIs(t, err, ai.ErrInvalidOracleResponse)
			require.Empty(t, fx.evaluations.created)
			require.Empty(t, fx.audit.entries)
			require.Empty(t, fx.publisher.events)
		})
	}
}

func TestEvaluationTriggerPropagatesOracleFailures(t *testing.T) {
	for _, cause := range []error{ai.ErrOracleUnavailable, ai.ErrMalformedResponse} {
		fx := newEvaluationFixture(t, nil)
		fx.addActivity(date(2023, 1, 1), nil)
		fx.evaluator.err = fmt.Errorf("gemini evaluate: %w", cause)

		_, err := fx.service.Trigger(context.Background(), studentID)
		require.ErrorIs(t, err, cause)
		require.Empty(t, fx.evaluations.created)
	}
}

func TestEvaluationTriggerSideEffectsAreBestEffort(t *testing.T) {
	fx := newEvaluationFixture(t, nil)
	fx.addActivity(date(2023, 1, 1), nil)
	fx.audit.err = errors.New("audit table locked")
	fx.publisher.err = errors.New("nats: connection closed")

	resp, err := fx.service.Trigger(context.Background(), studentID)
	require.NoError(t, err)
	require.NotZero(t, resp.ID)
}

func TestEvaluationTriggerPersistFailureReturnsError(t *testing.T) {
	fx := newEvaluationFixture(t, nil)
	fx.addActivity(date(2023, 1, 1), nil)
	fx.evaluations.err = errors.New("disk full")

	_, err := fx.service.Trigger(context.Background(), studentID)
	require.Error(t, err)
	require.Empty(t, fx.publisher.events)
}

func TestEvaluationTriggerAcceptsFencedOracleReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		reply := fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`,
			"Here is the evaluation:\n```json\n"+validOracleJSON+"\n```")
		_, _ = w.Write([]byte(reply))
	}))
	defer server.Close()

	gemini, err := ai.NewGeminiEvaluator(ai.Config{APIKey: "test", BaseURL: server.URL})
	require.NoError(t, err)

	fx := newEvaluationFixture(t, gemini)
	fx.addActivity(date(2023, 1, 1), nil)

	resp, err := fx.service.Trigger(context.Background(), studentID)
	require.NoError(t, err)
	require.Equal(t, 71.0, resp.Scores.FinalProfileiqScore)
	require.Equal(t, ai.DefaultGeminiModel, resp.AIModel)
	require.Len(t, fx.evaluations.created, 1)
}

func TestEvaluationAccessControl(t *testing.T) {
	fx := newEvaluationFixture(t, nil)
	fx.addActivity(date(2023, 1, 1), nil)
	created, err := fx.service.Trigger(context.Background(), studentID)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = fx.service.Get(ctx, Actor{ID: studentID, Role: models.RoleStudent}, created.ID)
	require.NoError(t, err)

	_, err = fx.service.Get(ctx, Actor{ID: counselorID, Role: models.RoleCounselor}, created.ID)
	require.NoError(t, err)

	_, err = fx.service.Get(ctx, Actor{ID: 99, Role: models.RoleCounselor}, created.ID)
	require.ErrorIs(t, err, ErrEvaluationForbidden)

	_, err = fx.service.Get(ctx, Actor{ID: 11, Role: models.RoleStudent}, created.ID)
	require.ErrorIs(t, err, ErrEvaluationForbidden)

	_, err = fx.service.Get(ctx, Actor{ID: studentID, Role: models.RoleStudent}, 404)
	require.ErrorIs(t, err, ErrEvaluationNotFound)

	export, err := fx.service.Export(ctx, Actor{ID: counselorID, Role: models.RoleCounselor}, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ana Reyes", export.StudentName)
	require.Equal(t, 71.0, export.ProfileiqScore)
	require.Len(t, export.Summary, 3)
	require.Len(t, export.Activities, 1)
	require.Equal(t, []string{"Initiative", "Persistence"}, export.Strengths)
}

func TestEvaluationLatestAndList(t *testing.T) {
	fx := newEvaluationFixture(t, nil)
	ctx := context.Background()

	_, err := fx.service.Latest(ctx, studentID)
	require.ErrorIs(t, err, ErrEvaluationNotFound)

	fx.addActivity(date(2023, 1, 1), nil)
	_, err = fx.service.Trigger(ctx, studentID)
	require.NoError(t, err)
	second, err := fx.service.Trigger(ctx, studentID)
	require.NoError(t, err)

	latest, err := fx.service.Latest(ctx, studentID)
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)

	list, err := fx.service.List(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, list.Evaluations, 2)
	require.Equal(t, second.ID, list.Evaluations[0].ID)
}
