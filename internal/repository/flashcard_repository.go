package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/satlab/sat-prep-api/internal/models"
)

// FlashcardRepository provides database access for flashcard decks and cards.
type FlashcardRepository struct {
	db *sqlx.DB
}

// NewFlashcardRepository creates a new instance of FlashcardRepository.
func NewFlashcardRepository(db *sqlx.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// ListDecks returns all decks owned by a user with card counts.
func (r *FlashcardRepository) ListDecks(ctx context.Context, userID string) ([]models.FlashcardDeck, error) {
	const query = `
        SELECT d.id, d.user_id, d.name, d.section, d.created_at, d.updated_at,
               COUNT(f.id) AS card_count
        FROM flashcard_decks d
        LEFT JOIN flashcards f ON f.deck_id = d.id
        WHERE d.user_id = $1
        GROUP BY d.id
        ORDER BY d.created_at DESC`
	var decks []models.FlashcardDeck
	if err := r.db.SelectContext(ctx, &decks, query, userID); err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return decks, nil
}

// GetDeck returns one deck by id.
func (r *FlashcardRepository) GetDeck(ctx context.Context, id string) (*models.FlashcardDeck, error) {
	const query = `SELECT id, user_id, name, section, created_at, updated_at FROM flashcard_decks WHERE id = $1 LIMIT 1`
	var deck models.FlashcardDeck
	if err := r.db.GetContext(ctx, &deck, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get deck: %w", err)
	}
	return &deck, nil
}

// CreateDeck stores a new deck.
func (r *FlashcardRepository) CreateDeck(ctx context.Context, deck *models.FlashcardDeck) error {
	const query = `INSERT INTO flashcard_decks (id, user_id, name, section, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, deck.ID, deck.UserID, deck.Name, deck.Section, deck.CreatedAt, deck.UpdatedAt); err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	return nil
}

// DeleteDeck removes a deck and its cards.
func (r *FlashcardRepository) DeleteDeck(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete deck tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM flashcards WHERE deck_id = $1`, id); err != nil {
		return fmt.Errorf("delete deck cards: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flashcard_decks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete deck: %w", err)
	}
	return nil
}

// ListCards returns the cards of a deck.
func (r *FlashcardRepository) ListCards(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	const query = `SELECT id, deck_id, front, back, created_at FROM flashcards WHERE deck_id = $1 ORDER BY created_at`
	var cards []models.Flashcard
	if err := r.db.SelectContext(ctx, &cards, query, deckID); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// CreateCard adds a card to a deck and bumps the deck's updated_at.
func (r *FlashcardRepository) CreateCard(ctx context.Context, card *models.Flashcard, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create card tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `INSERT INTO flashcards (id, deck_id, front, back, created_at) VALUES ($1, $2, $3, $4, $5)`,
		card.ID, card.DeckID, card.Front, card.Back, card.CreatedAt); err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE flashcard_decks SET updated_at = $2 WHERE id = $1`, card.DeckID, at); err != nil {
		return fmt.Errorf("touch deck: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create card: %w", err)
	}
	return nil
}

// DeleteCard removes a single card.
func (r *FlashcardRepository) DeleteCard(ctx context.Context, id string) error {
	const query = `DELETE FROM flashcards WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}
