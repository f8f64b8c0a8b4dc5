package models

import "time"

// UserStatsCacheEntry is the materialized per-user aggregate stored in the
// user_stats table. One row per user, overwritten in place on every
// recompute; no history is retained.
type UserStatsCacheEntry struct {
	UserID         string    `db:"user_id" json:"user_id"`
	TotalQuestions int       `db:"total_questions" json:"total_questions"`
	Accuracy       int       `db:"accuracy" json:"accuracy"`
	LastUpdated    time.Time `db:"last_updated" json:"last_updated"`
}

// RankingResult places a user within the eligible population along one
// ordering. Percentile is measured from the top: a smaller value means a
// better standing ("top 5%" is percentile 5).
type RankingResult struct {
	Position   int `json:"position"`
	Percentile int `json:"percentile"`
	Total      int `json:"total"`
}

// UserRankings bundles both orderings computed for one query. It is never
// persisted.
type UserRankings struct {
	QuestionsRanking RankingResult `json:"questions_ranking"`
	AccuracyRanking  RankingResult `json:"accuracy_ranking"`
}
