package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/metrics"
	"github.com/yukikurage/crm-api/internal/permissions"
)

// CapabilityLoader resolves the capabilities held by a user.
type CapabilityLoader interface {
	Capabilities(userID uint64) (permissions.Set, error)
}

// RequirePermission rejects the request with 403 unless the user holds every
// capability. Must run after RequireAuth.
func RequirePermission(loader CapabilityLoader, required ...permissions.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		set, ok := GetCapabilities(c)
		if !ok {
			userID, exists := GetUserID(c)
			if !exists {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}

			var err error
			set, err = loader.Capabilities(userID)
			if err != nil {
				// a session pointing at a removed user is treated as logged out
				log.Warn().Err(err).Uint64("user_id", userID).Msg("Failed to load capabilities")
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}
			c.Set(constants.ContextKeyCapabilities, set)
		}

		if !set.Has(required...) {
			metrics.PermissionDenials.WithLabelValues("capability").Inc()
			apierrors.Forbidden(c, "You do not have permission to perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetCapabilities returns the capability set loaded by RequirePermission
func GetCapabilities(c *gin.Context) (permissions.Set, bool) {
	value, exists := c.Get(constants.ContextKeyCapabilities)
	if !exists {
		return permissions.Set{}, false
	}
	set, ok := value.(permissions.Set)
	return set, ok
}
