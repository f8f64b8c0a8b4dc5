package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satlab/sat-prep-api/internal/middleware"
	"github.com/satlab/sat-prep-api/internal/models"
	"github.com/satlab/sat-prep-api/internal/service"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
	"github.com/satlab/sat-prep-api/pkg/response"
)

// FlashcardHandler exposes deck and card management endpoints.
type FlashcardHandler struct {
	service *service.FlashcardService
}

// NewFlashcardHandler creates a new handler.
func NewFlashcardHandler(svc *service.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{service: svc}
}

// ListDecks godoc
// @Summary List my decks
// @Description Returns the caller's flashcard decks with card counts
// @Tags Flashcards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /flashcards/decks [get]
func (h *FlashcardHandler) ListDecks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	decks, hit, err := h.service.ListDecks(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, decks, nil, middleware.ExtractMeta(c))
}

// CreateDeck godoc
// @Summary Create a deck
// @Description Creates a new flashcard deck for the caller
// @Tags Flashcards
// @Accept json
// @Produce json
// @Param payload body models.CreateDeckRequest true "Deck payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /flashcards/decks [post]
func (h *FlashcardHandler) CreateDeck(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid deck payload"))
		return
	}

	deck, err := h.service.CreateDeck(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, deck)
}

// DeleteDeck godoc
// @Summary Delete a deck
// @Description Removes a deck and all of its cards
// @Tags Flashcards
// @Produce json
// @Param id path string true "Deck id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /flashcards/decks/{id} [delete]
func (h *FlashcardHandler) DeleteDeck(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteDeck(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListCards godoc
// @Summary List deck cards
// @Description Returns the cards in one of the caller's decks
// @Tags Flashcards
// @Produce json
// @Param id path string true "Deck id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /flashcards/decks/{id}/cards [get]
func (h *FlashcardHandler) ListCards(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	cards, err := h.service.ListCards(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cards, nil)
}

// CreateCard godoc
// @Summary Add a card
// @Description Adds a card to one of the caller's decks
// @Tags Flashcards
// @Accept json
// @Produce json
// @Param id path string true "Deck id"
// @Param payload body models.CreateCardRequest true "Card payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /flashcards/decks/{id}/cards [post]
func (h *FlashcardHandler) CreateCard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid card payload"))
		return
	}

	card, err := h.service.CreateCard(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, card)
}

// DeleteCard godoc
// @Summary Delete a card
// @Description Removes a single card from one of the caller's decks
// @Tags Flashcards
// @Produce json
// @Param id path string true "Deck id"
// @Param cardId path string true "Card id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /flashcards/decks/{id}/cards/{cardId} [delete]
func (h *FlashcardHandler) DeleteCard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteCard(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("cardId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
