package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/profileiq-api/internal/dto"
	"github.com/noah-isme/profileiq-api/internal/middleware"
	"github.com/noah-isme/profileiq-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func withUser(id uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, id)
		c.Locals(middleware.LocalUserRole, role)
		return c.Next()
	}
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp, payload
}

func decodeData(t *testing.T, payload envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload.Data, target))
}

type stubEvaluationService struct {
	triggerResult dto.EvaluationResponse
	triggerErr    error
	list          dto.EvaluationListResponse
	latest        dto.EvaluationResponse
	latestErr     error
	get           dto.EvaluationResponse
	getErr        error
	export        dto.EvaluationExport
	exportErr     error

	triggerCalls int
	lastStudent  uint
	lastActor    service.Actor
	lastID       uint
}

func (s *stubEvaluationService) Trigger(_ context.Context, studentID uint) (dto.EvaluationResponse, error) {
	s.triggerCalls++
	s.lastStudent = studentID
	return s.triggerResult, s.triggerErr
}

func (s *stubEvaluationService) List(_ context.Context, studentID uint) (dto.EvaluationListResponse, error) {
	s.lastStudent = studentID
	return s.list, nil
}

func (s *stubEvaluationService) Latest(_ context.Context, studentID uint) (dto.EvaluationResponse, error) {
	s.lastStudent = studentID
	return s.latest, s.latestErr
}

func (s *stubEvaluationService) Get(_ context.Context, actor service.Actor, id uint) (dto.EvaluationResponse, error) {
	s.lastActor = actor
	s.lastID = id
	return s.get, s.getErr
}

func (s *stubEvaluationService) Export(_ context.Context, actor service.Actor, id uint) (dto.EvaluationExport, error) {
	s.lastActor = actor
	s.lastID = id
	return s.export, s.exportErr
}

type stubActivityService struct {
	items     []dto.ActivityResponse
	item      dto.ActivityResponse
	err       error
	created   dto.ActivityCreateRequest
	updated   dto.ActivityUpdateRequest
	deletedID uint
}

func (s *stubActivityService) List(context.Context, uint) ([]dto.ActivityResponse, error) {
	return s.items, s.err
}

func (s *stubActivityService) Get(_ context.Context, _ uint, _ uint) (dto.ActivityResponse, error) {
	return s.item, s.err
}

func (s *stubActivityService) Create(_ context.Context, _ uint, req dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	s.created = req
	return s.item, s.err
}

func (s *stubActivityService) Update(_ context.Context, _ uint, _ uint, req dto.ActivityUpdateRequest) (dto.ActivityResponse, error) {
	s.updated = req
	return s.item, s.err
}

func (s *stubActivityService) Delete(_ context.Context, _ uint, id uint) error {
	s.deletedID = id
	return s.err
}

type stubProfileService struct {
	profile dto.ProfileResponse
	summary dto.StudentSummaryResponse
	err     error
	update  dto.ProfileUpdateRequest
}

func (s *stubProfileService) Get(context.Context, uint) (dto.ProfileResponse, error) {
	return s.profile, s.err
}

func (s *stubProfileService) Update(_ context.Context, _ uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	s.update = req
	return s.profile, s.err
}

func (s *stubProfileService) Summary(context.Context, uint) (dto.StudentSummaryResponse, error) {
	return s.summary, s.err
}

type stubCounselorService struct {
	students []dto.AssignedStudentResponse
	detail   dto.StudentDetailResponse
	err      error
}

func (s *stubCounselorService) ListStudents(context.Context, uint) ([]dto.AssignedStudentResponse, error) {
	return s.students, s.err
}

func (s *stubCounselorService) StudentDetail(context.Context, uint, uint) (dto.StudentDetailResponse, error) {
	return s.detail, s.err
}

var (
	_ service.EvaluationService = (*stubEvaluationService)(nil)
	_ service.ActivityService   = (*stubActivityService)(nil)
	_ service.ProfileService    = (*stubProfileService)(nil)
	_ service.CounselorService  = (*stubCounselorService)(nil)
)
