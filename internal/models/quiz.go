package models

import "time"

// Section identifies the SAT section a topic belongs to.
type Section string

const (
	SectionMath    Section = "MATH"
	SectionReading Section = "READING"
	SectionWriting Section = "WRITING"
)

// Topic is a quiz subject area.
type Topic struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Section   Section   `db:"section" json:"section"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// QuizAnswer reports the outcome of a single quiz question as graded by
// the client.
type QuizAnswer struct {
	QuestionID string `json:"question_id" validate:"required"`
	Correct    bool   `json:"correct"`
}

// QuizSubmissionRequest finalizes one quiz run for a topic.
type QuizSubmissionRequest struct {
	TopicID string       `json:"topic_id" validate:"required,uuid4"`
	Answers []QuizAnswer `json:"answers" validate:"required,min=1,dive"`
}

// QuizSubmissionResult summarises the recorded run.
type QuizSubmissionResult struct {
	TopicID        string    `json:"topic_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectTotal   int       `json:"correct_total"`
	RecordedAt     time.Time `json:"recorded_at"`
}
