package models

import "time"

// TopicProgress is the per-user per-topic attempt counter updated by quiz
// submissions. These rows are the authoritative quiz activity data; the
// stats cache is derived from them.
type TopicProgress struct {
	UserID         string    `db:"user_id" json:"user_id"`
	TopicID        string    `db:"topic_id" json:"topic_id"`
	TotalQuestions int       `db:"total_questions" json:"total_questions"`
	CorrectTotal   int       `db:"correct_total" json:"correct_total"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ExamAttempt records a single answered question from a completed practice
// exam.
type ExamAttempt struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	ExamID     string    `db:"exam_id" json:"exam_id"`
	QuestionID string    `db:"question_id" json:"question_id"`
	Correct    bool      `db:"correct" json:"correct"`
	AnsweredAt time.Time `db:"answered_at" json:"answered_at"`
}
