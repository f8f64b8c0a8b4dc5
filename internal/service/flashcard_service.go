package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satlab/sat-prep-api/internal/models"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
)

type flashcardRepository interface {
	ListDecks(ctx context.Context, userID string) ([]models.FlashcardDeck, error)
	GetDeck(ctx context.Context, id string) (*models.FlashcardDeck, error)
	CreateDeck(ctx context.Context, deck *models.FlashcardDeck) error
	DeleteDeck(ctx context.Context, id string) error
	ListCards(ctx context.Context, deckID string) ([]models.Flashcard, error)
	CreateCard(ctx context.Context, card *models.Flashcard, at time.Time) error
	DeleteCard(ctx context.Context, id string) error
}

// FlashcardService manages per-user study decks with a read-through cache
// over the deck listings.
type FlashcardService struct {
	repo      flashcardRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFlashcardService constructs a flashcard service.
func NewFlashcardService(repo flashcardRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *FlashcardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FlashcardService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

func deckListCacheKey(userID string) string {
	return fmt.Sprintf("flashcards:decks:%s", userID)
}

func deckCachePattern(userID string) string {
	return fmt.Sprintf("flashcards:decks:%s*", userID)
}

// ListDecks returns the user's decks, served from cache when warm. The
// second return reports whether the cache answered.
func (s *FlashcardService) ListDecks(ctx context.Context, userID string) ([]models.FlashcardDeck, bool, error) {
	key := deckListCacheKey(userID)
	var cached []models.FlashcardDeck
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	decks, err := s.repo.ListDecks(ctx, userID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list decks")
	}

	if err := s.cache.Set(ctx, key, decks, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache deck list", zap.String("user_id", userID), zap.Error(err))
	}
	return decks, false, nil
}

// CreateDeck stores a new deck for the user and invalidates their listing.
func (s *FlashcardService) CreateDeck(ctx context.Context, userID string, req models.CreateDeckRequest) (*models.FlashcardDeck, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deck payload")
	}

	now := s.now().UTC()
	deck := &models.FlashcardDeck{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Section:   req.Section,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateDeck(ctx, deck); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create deck")
	}

	s.invalidate(ctx, userID)
	return deck, nil
}

// DeleteDeck removes a deck the user owns, cards included.
func (s *FlashcardService) DeleteDeck(ctx context.Context, userID, deckID string) error {
	deck, err := s.ownedDeck(ctx, userID, deckID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDeck(ctx, deck.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete deck")
	}
	s.invalidate(ctx, userID)
	return nil
}

// ListCards returns the cards of a deck the user owns.
func (s *FlashcardService) ListCards(ctx context.Context, userID, deckID string) ([]models.Flashcard, error) {
	deck, err := s.ownedDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	cards, err := s.repo.ListCards(ctx, deck.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cards")
	}
	return cards, nil
}

// CreateCard adds a card to a deck the user owns.
func (s *FlashcardService) CreateCard(ctx context.Context, userID, deckID string, req models.CreateCardRequest) (*models.Flashcard, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid card payload")
	}

	deck, err := s.ownedDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	card := &models.Flashcard{
		ID:        uuid.NewString(),
		DeckID:    deck.ID,
		Front:     req.Front,
		Back:      req.Back,
		CreatedAt: now,
	}
	if err := s.repo.CreateCard(ctx, card, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create card")
	}

	s.invalidate(ctx, userID)
	return card, nil
}

// DeleteCard removes a single card from a deck the user owns.
func (s *FlashcardService) DeleteCard(ctx context.Context, userID, deckID, cardID string) error {
	if _, err := s.ownedDeck(ctx, userID, deckID); err != nil {
		return err
	}
	if err := s.repo.DeleteCard(ctx, cardID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete card")
	}
	s.invalidate(ctx, userID)
	return nil
}

// ownedDeck loads a deck and enforces ownership. A deck belonging to
// another user reads as not found rather than forbidden, so deck ids
// cannot be probed.
func (s *FlashcardService) ownedDeck(ctx context.Context, userID, deckID string) (*models.FlashcardDeck, error) {
	deck, err := s.repo.GetDeck(ctx, deckID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "deck not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch deck")
	}
	if deck.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "deck not found")
	}
	return deck, nil
}

func (s *FlashcardService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, deckCachePattern(userID)); err != nil {
		s.logger.Warn("failed to invalidate deck cache", zap.String("user_id", userID), zap.Error(err))
	}
}
