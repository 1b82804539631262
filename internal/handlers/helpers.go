package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/forms"
)

// parseIDParam reads a numeric :id. Anything else is reported as not found,
// the same as an unmatched route.
func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apierrors.NotFound(c, "")
		return 0, false
	}
	return id, true
}

// respondValidation writes a 400 with field details when err is a form
// validation failure.
func respondValidation(c *gin.Context, err error) bool {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		apierrors.ValidationFailed(c, verr)
		return true
	}
	return false
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{forms.NonFieldErrors: err.Error()})
		return false
	}
	return true
}
