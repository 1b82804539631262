package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/services"
)

type KeywordHandler struct {
	keywordService *services.KeywordService
}

func NewKeywordHandler(keywordService *services.KeywordService) *KeywordHandler {
	return &KeywordHandler{keywordService: keywordService}
}

// CreateKeyword stores a new filter keyword
func (h *KeywordHandler) CreateKeyword(c *gin.Context) {
	var req services.KeywordInput
	if !bindJSON(c, &req) {
		return
	}

	keyword, err := h.keywordService.CreateKeyword(req)
	if err != nil {
		respondKeywordError(c, err)
		return
	}

	c.JSON(http.StatusCreated, keyword)
}

// SuggestKeywords proposes new keywords from recent interactions
func (h *KeywordHandler) SuggestKeywords(c *gin.Context) {
	suggestions, err := h.keywordService.SuggestKeywords(c.Request.Context())
	if err != nil {
		respondKeywordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"keywords": suggestions})
}

func respondKeywordError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrSuggestionsNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrNothingToSuggestFrom):
		apierrors.BadRequest(c, err.Error())
	default:
		log.Error().Err(err).Msg("Keyword request failed")
		apierrors.InternalError(c, "Internal server error")
	}
}
