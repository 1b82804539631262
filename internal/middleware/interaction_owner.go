package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/metrics"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/services"
)

// OwnedInteractionLoader loads an interaction on behalf of a user.
type OwnedInteractionLoader interface {
	GetOwnedInteraction(id, userID uint64) (*models.Interaction, error)
}

// RequireInteractionOwner loads the interaction named by the :id parameter
// and lets the request through only when the user is its recorded manager.
func RequireInteractionOwner(loader OwnedInteractionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid interaction ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		interaction, err := loader.GetOwnedInteraction(id, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInteractionNotFound):
				apierrors.NotFound(c, "Interaction not found")
			case errors.Is(err, services.ErrNotInteractionOwner):
				metrics.PermissionDenials.WithLabelValues("ownership").Inc()
				apierrors.Forbidden(c, err.Error())
			default:
				log.Error().Err(err).Uint64("interaction_id", id).Msg("Failed to load interaction")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyInteraction, interaction)
		c.Next()
	}
}

// GetInteraction returns the interaction loaded by RequireInteractionOwner
func GetInteraction(c *gin.Context) (*models.Interaction, bool) {
	value, exists := c.Get(constants.ContextKeyInteraction)
	if !exists {
		return nil, false
	}
	interaction, ok := value.(*models.Interaction)
	return interaction, ok
}
