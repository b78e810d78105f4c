package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/profileiq-api/internal/models"
	"github.com/noah-isme/profileiq-api/internal/repository"
	"github.com/noah-isme/profileiq-api/pkg/ai"
)

const validOracleJSON = `{
  "scores": {
    "leadership_impact": 72,
    "execution_depth": 65,
    "growth_trajectory": 70,
    "context_adjusted_impact": 78,
    "final_profileiq_score": 71
  },
  "score_explanations": {
    "leadership_impact": "Founded and ran the program.",
    "execution_depth": "Six months of weekly work.",
    "growth_trajectory": "Expanded from one school to two.",
    "context_adjusted_impact": "Achieved with few local resources."
  },
  "strengths": ["Initiative", "Persistence"],
  "improvement_areas": ["Document outcomes"],
  "guidance_recommendations": [
    {"area": "Impact", "suggestion": "Track tutoring hours.", "expected_score_impact": "+4"}
  ],
  "common_app_summary": ["Founded a tutoring circle.", "Recruited six volunteers.", "Tutored 30 peers."]
}`

func oracleDocument(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

type stubUserRepo struct {
	users    map[uint]models.User
	profiles map[uint]*models.StudentProfile
	err      error
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	user.Profile = s.profiles[id]
	return user, nil
}

func (s *stubUserRepo) ListAssignedStudents(ctx context.Context, counselorID uint) ([]models.User, error) {
	var out []models.User
	for _, user := range s.users {
		if user.IsAssignedTo(counselorID) {
			user.Profile = s.profiles[user.ID]
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubUserRepo) GetProfile(ctx context.Context, userID uint) (*models.StudentProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles[userID], nil
}

func (s *stubUserRepo) SaveProfile(ctx context.Context, profile *models.StudentProfile) error {
	if s.profiles == nil {
		s.profiles = map[uint]*models.StudentProfile{}
	}
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *stubUserRepo) UpdateName(ctx context.Context, userID uint, firstName, lastName string) error {
	user := s.users[userID]
	user.FirstName, user.LastName = firstName, lastName
	s.users[userID] = user
	return nil
}

type stubActivityRepo struct {
	items []models.Activity
	err   error
}

func (s *stubActivityRepo) ListActive(ctx context.Context, userID uint, limit int) ([]models.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Activity
	for _, item := range s.items {
		if item.UserID == userID && item.IsActive {
			out = append(out, item)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubActivityRepo) CountActive(ctx context.Context, userID uint) (int64, error) {
	items, err := s.ListActive(ctx, userID, 0)
	return int64(len(items)), err
}

func (s *stubActivityRepo) GetActive(ctx context.Context, id, userID uint) (models.Activity, error) {
	for _, item := range s.items {
		if item.ID == id && item.UserID == userID && item.IsActive {
			return item, nil
		}
	}
	return models.Activity{}, gorm.ErrRecordNotFound
}

func (s *stubActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	activity.ID = uint(len(s.items) + 1)
	activity.IsActive = true
	s.items = append(s.items, *activity)
	return nil
}

func (s *stubActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	for idx := range s.items {
		if s.items[idx].ID == activity.ID {
			s.items[idx] = *activity
		}
	}
	return nil
}

func (s *stubActivityRepo) SoftDelete(ctx context.Context, id, userID uint) error {
	for idx := range s.items {
		if s.items[idx].ID == id && s.items[idx].UserID == userID && s.items[idx].IsActive {
			s.items[idx].IsActive = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubNoteRepo struct {
	notes []models.CounselorNote
	err   error
}

func (s *stubNoteRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.CounselorNote, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.CounselorNote
	for _, note := range s.notes {
		if note.StudentID == studentID {
			out = append(out, note)
		}
	}
	return out, nil
}

type stubEvaluationRepo struct {
	mu      sync.Mutex
	created []models.Evaluation
	err     error
}

func (s *stubEvaluationRepo) Create(ctx context.Context, evaluation *models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	evaluation.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *evaluation)
	return nil
}

func (s *stubEvaluationRepo) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	for _, item := range s.created {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Evaluation{}, gorm.ErrRecordNotFound
}

func (s *stubEvaluationRepo) Latest(ctx context.Context, userID uint) (models.Evaluation, error) {
	for idx := len(s.created) - 1; idx >= 0; idx-- {
		if s.created[idx].UserID == userID {
			return s.created[idx], nil
		}
	}
	return models.Evaluation{}, gorm.ErrRecordNotFound
}

func (s *stubEvaluationRepo) ListByUser(ctx context.Context, userID uint) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for idx := len(s.created) - 1; idx >= 0; idx-- {
		if s.created[idx].UserID == userID {
			out = append(out, s.created[idx])
		}
	}
	return out, nil
}

func (s *stubEvaluationRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	items, _ := s.ListByUser(ctx, userID)
	return int64(len(items)), nil
}

type stubEvaluator struct {
	result   ai.EvaluationResult
	err      error
	calls    int
	payloads []ai.ProfilePayload
}

func (s *stubEvaluator) Evaluate(ctx context.Context, payload ai.ProfilePayload) (ai.EvaluationResult, error) {
	s.calls++
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return ai.EvaluationResult{}, s.err
	}
	return s.result, nil
}

type stubAudit struct {
	entries []AuditEntry
	err     error
}

func (s *stubAudit) Record(ctx context.Context, entry AuditEntry) error {
	s.entries = append(s.entries, entry)
	return s.err
}

type publishedEvent struct {
	subject string
	data    any
}

type stubPublisher struct {
	events []publishedEvent
	err    error
}

func (s *stubPublisher) Publish(ctx context.Context, subject string, data any) error {
	s.events = append(s.events, publishedEvent{subject: subject, data: data})
	return s.err
}

var (
	_ repository.UserRepository          = (*stubUserRepo)(nil)
	_ repository.ActivityRepository      = (*stubActivityRepo)(nil)
	_ repository.CounselorNoteRepository = (*stubNoteRepo)(nil)
	_ repository.EvaluationRepository    = (*stubEvaluationRepo)(nil)
)
