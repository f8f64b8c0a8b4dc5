package models

import "time"

// FlashcardDeck groups a user's flashcards.
type FlashcardDeck struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Section   Section   `db:"section" json:"section"`
	CardCount int       `db:"card_count" json:"card_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Flashcard is a single front/back study card.
type Flashcard struct {
	ID        string    `db:"id" json:"id"`
	DeckID    string    `db:"deck_id" json:"deck_id"`
	Front     string    `db:"front" json:"front"`
	Back      string    `db:"back" json:"back"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateDeckRequest creates a new flashcard deck.
type CreateDeckRequest struct {
	Name    string  `json:"name" validate:"required,max=120"`
	Section Section `json:"section" validate:"required,oneof=MATH READING WRITING"`
}

// CreateCardRequest adds a card to a deck.
type CreateCardRequest struct {
	Front string `json:"front" validate:"required,max=2000"`
	Back  string `json:"back" validate:"required,max=2000"`
}
