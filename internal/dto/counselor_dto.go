package dto

import (
	"time"

	"github.com/noah-isme/profileiq-api/internal/models"
)

// AssignedStudentResponse is one row of the counselor's student list.
type AssignedStudentResponse struct {
	ID                 uint            `json:"id"`
	Email              string          `json:"email"`
	Profile            ProfileResponse `json:"profile"`
	ActivityCount      int64           `json:"activityCount"`
	LatestScore        *float64        `json:"latestScore"`
	LastEvaluationDate *time.Time      `json:"lastEvaluationDate"`
}

// CounselorNoteResponse is the read-only view of a note.
type CounselorNoteResponse struct {
	ID          uint      `json:"id"`
	CounselorID uint      `json:"counselorId"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCounselorNoteResponseSlice converts notes in order.
func NewCounselorNoteResponseSlice(notes []models.CounselorNote) []CounselorNoteResponse {
	responses := make([]CounselorNoteResponse, 0, len(notes))
	for _, note := range notes {
		responses = append(responses, CounselorNoteResponse{
			ID:          note.ID,
			CounselorID: note.CounselorID,
			Content:     note.Content,
			Category:    note.Category,
			CreatedAt:   note.CreatedAt,
		})
	}
	return responses
}

// StudentIdentity is the header of the counselor's student detail view.
type StudentIdentity struct {
	ID      uint            `json:"id"`
	Email   string          `json:"email"`
	Profile ProfileResponse `json:"profile"`
}

// StudentDetailResponse is everything a counselor sees about one student.
type StudentDetailResponse struct {
	Student     StudentIdentity         `json:"student"`
	Activities  []ActivityResponse      `json:"activities"`
	Evaluations []EvaluationResponse    `json:"evaluations"`
	Notes       []CounselorNoteResponse `json:"notes"`
}
