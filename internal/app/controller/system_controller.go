package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bizreview-backend/internal/datastore"
	apperrors "github.com/ikkim/bizreview-backend/internal/errors"
	"github.com/ikkim/bizreview-backend/internal/middleware"
)

const IndexMessage = "Please navigate to /businesses or /reviews to use this API"

type SystemController struct {
	store  datastore.Store
	driver string
}

func NewSystemController(store datastore.Store, driver string) *SystemController {
	return &SystemController{store: store, driver: driver}
}

// Index GET /
func (ctrl *SystemController) Index(c *gin.Context) {
	c.String(http.StatusOK, IndexMessage)
}

// Health GET /health
func (ctrl *SystemController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := ctrl.store.Ping(ctx); err != nil {
		middleware.GetLoggerFromContext(c).Error("Store health check failed", err, map[string]interface{}{
			"driver": ctrl.driver,
		})
		c.Set(apperrors.ContextKeyErrorCode, apperrors.StoreUnavailable)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"store":  ctrl.driver,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"store":  ctrl.driver,
	})
}
