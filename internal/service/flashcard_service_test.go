package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satlab/sat-prep-api/internal/models"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
)

type mockFlashcardRepo struct {
	decks     map[string]*models.FlashcardDeck
	cards     map[string][]models.Flashcard
	listCalls int
}

func newMockFlashcardRepo() *mockFlashcardRepo {
	return &mockFlashcardRepo{
		decks: make(map[string]*models.FlashcardDeck),
		cards: make(map[string][]models.Flashcard),
	}
}

func (m *mockFlashcardRepo) ListDecks(ctx context.Context, userID string) ([]models.FlashcardDeck, error) {
	m.listCalls++
	var out []models.FlashcardDeck
	for _, deck := range m.decks {
		if deck.UserID == userID {
			out = append(out, *deck)
		}
	}
	return out, nil
}

func (m *mockFlashcardRepo) GetDeck(ctx context.Context, id string) (*models.FlashcardDeck, error) {
	deck, ok := m.decks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return deck, nil
}

func (m *mockFlashcardRepo) CreateDeck(ctx context.Context, deck *models.FlashcardDeck) error {
	m.decks[deck.ID] = deck
	return nil
}

func (m *mockFlashcardRepo) DeleteDeck(ctx context.Context, id string) error {
	delete(m.decks, id)
	delete(m.cards, id)
	return nil
}

func (m *mockFlashcardRepo) ListCards(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	return m.cards[deckID], nil
}

func (m *mockFlashcardRepo) CreateCard(ctx context.Context, card *models.Flashcard, at time.Time) error {
	m.cards[card.DeckID] = append(m.cards[card.DeckID], *card)
	return nil
}

func (m *mockFlashcardRepo) DeleteCard(ctx context.Context, id string) error {
	for deckID, cards := range m.cards {
		for i, card := range cards {
			if card.ID == id {
				m.cards[deckID] = append(cards[:i], cards[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

type mockCacheRepo struct {
	store       map[string][]byte
	invalidated []string
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{store: make(map[string][]byte)}
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	for key := range m.store {
		delete(m.store, key)
	}
	return nil
}

func newFlashcardService(repo *mockFlashcardRepo, cacheRepo *mockCacheRepo) *FlashcardService {
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), cacheRepo != nil)
	return NewFlashcardService(repo, cacheSvc, time.Minute, validator.New(), zap.NewNop())
}

func TestListDecksServedFromCacheOnSecondRead(t *testing.T) {
	repo := newMockFlashcardRepo()
	cacheRepo := newMockCacheRepo()
	svc := newFlashcardService(repo, cacheRepo)

	deck, err := svc.CreateDeck(context.Background(), userA, models.CreateDeckRequest{Name: "Vocab", Section: models.SectionReading})
	require.NoError(t, err)

	first, hit, err := svc.ListDecks(context.Background(), userA)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, hit)
	assert.Equal(t, deck.ID, first[0].ID)

	second, hit, err := svc.ListDecks(context.Background(), userA)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.listCalls)
}

func TestCreateDeckInvalidatesCache(t *testing.T) {
	repo := newMockFlashcardRepo()
	cacheRepo := newMockCacheRepo()
	svc := newFlashcardService(repo, cacheRepo)

	_, _, err := svc.ListDecks(context.Background(), userA)
	require.NoError(t, err)

	_, err = svc.CreateDeck(context.Background(), userA, models.CreateDeckRequest{Name: "Grammar", Section: models.SectionWriting})
	require.NoError(t, err)
	assert.NotEmpty(t, cacheRepo.invalidated)

	decks, hit, err := svc.ListDecks(context.Background(), userA)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, decks, 1)
}

func TestCreateDeckRejectsUnknownSection(t *testing.T) {
	svc := newFlashcardService(newMockFlashcardRepo(), newMockCacheRepo())

	_, err := svc.CreateDeck(context.Background(), userA, models.CreateDeckRequest{Name: "Bad", Section: "HISTORY"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDeckOwnershipHidesForeignDecks(t *testing.T) {
	repo := newMockFlashcardRepo()
	svc := newFlashcardService(repo, newMockCacheRepo())

	deck, err := svc.CreateDeck(context.Background(), userA, models.CreateDeckRequest{Name: "Mine", Section: models.SectionMath})
	require.NoError(t, err)

	_, err = svc.ListCards(context.Background(), userB, deck.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	err = svc.DeleteDeck(context.Background(), userB, deck.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, repo.decks, deck.ID)
}

func TestCreateAndDeleteCard(t *testing.T) {
	repo := newMockFlashcardRepo()
	svc := newFlashcardService(repo, newMockCacheRepo())

	deck, err := svc.CreateDeck(context.Background(), userA, models.CreateDeckRequest{Name: "Math", Section: models.SectionMath})
	require.NoError(t, err)

	card, err := svc.CreateCard(context.Background(), userA, deck.ID, models.CreateCardRequest{Front: "2+2", Back: "4"})
	require.NoError(t, err)

	cards, err := svc.ListCards(context.Background(), userA, deck.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	require.NoError(t, svc.DeleteCard(context.Background(), userA, deck.ID, card.ID))

	cards, err = svc.ListCards(context.Background(), userA, deck.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestFlashcardsWorkWithoutCache(t *testing.T) {
	repo := newMockFlashcardRepo()
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewFlashcardService(repo, cacheSvc, time.Minute, validator.New(), zap.NewNop())

	_, err := svc.CreateDeck(context.Background(), userA, models.CreateDeckRequest{Name: "No cache", Section: models.SectionMath})
	require.NoError(t, err)

	decks, hit, err := svc.ListDecks(context.Background(), userA)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, decks, 1)
}
