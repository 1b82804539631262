package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/utils"
)

type InteractionHandler struct {
	interactionService *services.InteractionService
	filterOptions      services.FilterOptionsQuery
}

func NewInteractionHandler(interactionService *services.InteractionService, filterOptions services.FilterOptionsQuery) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
		filterOptions:      filterOptions,
	}
}

// ListInteractions returns all interactions matching any of the q terms
func (h *InteractionHandler) ListInteractions(c *gin.Context) {
	h.list(c, nil)
}

// ListByManager returns the acting manager's interactions matching any of the q terms
func (h *InteractionHandler) ListByManager(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	h.list(c, &userID)
}

func (h *InteractionHandler) list(c *gin.Context, managerID *uint64) {
	params := utils.GetPaginationParams(c)
	terms := c.QueryArray("q")

	interactions, total, err := h.interactionService.ListInteractions(services.ListInteractionsInput{
		ManagerID: managerID,
		Terms:     terms,
		Page:      params,
	})
	if err != nil {
		respondInteractionError(c, err)
		return
	}

	options, err := h.filterOptions()
	if err != nil {
		respondInteractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInteractionListResponse(interactions, terms, options, params.Response(total)))
}

// CompanyInteractions lists a company's interactions with their average grade
func (h *InteractionHandler) CompanyInteractions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	result, err := h.interactionService.ListCompanyInteractions(id, params)
	if err != nil {
		respondInteractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyInteractionsResponse(*result, params.Response(result.Total)))
}

// ProjectInteractions lists a project's interactions
func (h *InteractionHandler) ProjectInteractions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	result, err := h.interactionService.ListProjectInteractions(id, params)
	if err != nil {
		respondInteractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectInteractionsResponse(*result, params.Response(result.Total)))
}

// GetInteraction returns one interaction
func (h *InteractionHandler) GetInteraction(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	interaction, err := h.interactionService.GetInteraction(id)
	if err != nil {
		respondInteractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInteractionDTO(*interaction))
}

// CreateInteraction logs a new interaction owned by the acting manager
func (h *InteractionHandler) CreateInteraction(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req services.InteractionInput
	if !bindJSON(c, &req) {
		return
	}

	interaction, err := h.interactionService.CreateInteraction(userID, req)
	if err != nil {
		respondInteractionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInteractionDTO(*interaction))
}

// EditInteractionForm returns the editor for an owned interaction.
// The interaction is loaded by RequireInteractionOwner.
func (h *InteractionHandler) EditInteractionForm(c *gin.Context) {
	interaction, ok := middleware.GetInteraction(c)
	if !ok {
		apierrors.NotFound(c, "Interaction not found")
		return
	}

	c.JSON(http.StatusOK, services.InteractionForm(interaction))
}

// UpdateInteraction stores changes to an owned interaction
func (h *InteractionHandler) UpdateInteraction(c *gin.Context) {
	interaction, ok := middleware.GetInteraction(c)
	if !ok {
		apierrors.NotFound(c, "Interaction not found")
		return
	}

	var req services.InteractionInput
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.interactionService.UpdateInteraction(interaction, req)
	if err != nil {
		respondInteractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInteractionDTO(*updated))
}

// ConfirmDeleteInteraction shows the owned interaction a delete would remove
func (h *InteractionHandler) ConfirmDeleteInteraction(c *gin.Context) {
	interaction, ok := middleware.GetInteraction(c)
	if !ok {
		apierrors.NotFound(c, "Interaction not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToInteractionDTO(*interaction))
}

// DeleteInteraction removes an owned interaction
func (h *InteractionHandler) DeleteInteraction(c *gin.Context) {
	interaction, ok := middleware.GetInteraction(c)
	if !ok {
		apierrors.NotFound(c, "Interaction not found")
		return
	}

	if err := h.interactionService.DeleteInteraction(interaction.ID); err != nil {
		respondInteractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Interaction deleted successfully"})
}

func respondInteractionError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrInteractionNotFound),
		errors.Is(err, services.ErrCompanyNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotInteractionOwner):
		apierrors.Forbidden(c, err.Error())
	default:
		log.Error().Err(err).Msg("Interaction request failed")
		apierrors.InternalError(c, "Internal server error")
	}
}
