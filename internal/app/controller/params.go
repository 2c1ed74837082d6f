package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bizreview-backend/internal/app/model"
	apperrors "github.com/ikkim/bizreview-backend/internal/errors"
	"github.com/ikkim/bizreview-backend/internal/middleware"
)

// parseID reads a positive integer path parameter. Anything else resolves
// to no entity, so the caller's not-found response is written here.
func parseID(c *gin.Context, param, notFoundCode, notFoundMessage string) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.GetLoggerFromContext(c).Debug("Unresolvable path id", map[string]interface{}{
			param:        raw,
			"error_code": apperrors.ValidationInvalidID,
		})
		apperrors.NotFound(c, notFoundCode, notFoundMessage)
		return 0, false
	}
	return id, true
}

// pathScalar reads a path parameter used as a relationship value. Integer
// segments compare by their canonical form, so "01" matches a stored 1.
func pathScalar(c *gin.Context, param string) model.Scalar {
	raw := c.Param(param)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return model.IntScalar(n)
	}
	return model.StringScalar(raw)
}
