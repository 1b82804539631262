package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

// StartSession records userID as the acting manager of the session.
func StartSession(c *gin.Context, userID uint64) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.ContextKeyUserID, userID)
	return session.Save()
}

// EndSession forgets the acting manager.
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// RequireAuth resolves the acting manager from the session cookie and
// answers 401 when there is none. Sessions holding anything but a user id
// are discarded.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		userID, ok := session.Get(constants.ContextKeyUserID).(uint64)
		if !ok || userID == 0 {
			if session.Get(constants.ContextKeyUserID) != nil {
				log.Warn().Str("request_id", c.GetString(constants.ContextKeyRequestID)).Msg("Discarding malformed session")
				_ = EndSession(c)
			}
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the acting manager set by RequireAuth
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := userID.(uint64)
	return id, ok
}
