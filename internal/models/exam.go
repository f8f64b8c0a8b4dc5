package models

import "time"

// Exam is a full practice exam definition.
type Exam struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	QuestionCount int       `db:"question_count" json:"question_count"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ExamAnswer reports one answered exam question.
type ExamAnswer struct {
	QuestionID string `json:"question_id" validate:"required"`
	Correct    bool   `json:"correct"`
}

// ExamSubmissionRequest finalizes a completed practice exam.
type ExamSubmissionRequest struct {
	ExamID  string       `json:"exam_id" validate:"required,uuid4"`
	Answers []ExamAnswer `json:"answers" validate:"required,min=1,dive"`
}

// ExamSubmissionResult summarises the recorded exam.
type ExamSubmissionResult struct {
	ExamID         string    `json:"exam_id"`
	QuestionsSaved int       `json:"questions_saved"`
	CorrectTotal   int       `json:"correct_total"`
	RecordedAt     time.Time `json:"recorded_at"`
}
