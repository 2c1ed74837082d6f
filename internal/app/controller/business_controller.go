package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/app/service"
	apperrors "github.com/ikkim/bizreview-backend/internal/errors"
	"github.com/ikkim/bizreview-backend/internal/middleware"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{businessService: businessService}
}

// ListBusinesses GET /businesses
func (ctrl *BusinessController) ListBusinesses(c *gin.Context) {
	businesses, err := ctrl.businessService.ListBusinesses(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list businesses", err)
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, businesses)
}

// GetBusiness GET /businesses/:id
func (ctrl *BusinessController) GetBusiness(c *gin.Context) {
	id, ok := parseID(c, "id", apperrors.BusinessNotFound, apperrors.MsgBusinessNotFound)
	if !ok {
		return
	}

	business, err := ctrl.businessService.GetBusiness(c.Request.Context(), id)
	if err != nil {
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, business)
}

// CreateBusiness POST /businesses
func (ctrl *BusinessController) CreateBusiness(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var payload model.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Warn("Invalid business payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, apperrors.MsgMissingAttributes)
		return
	}

	business, err := ctrl.businessService.CreateBusiness(c.Request.Context(), payload)
	if err != nil {
		apperrors.RespondWithServiceError(c, err)
		return
	}

	log.Info("Business created", map[string]interface{}{
		"business_id": business.ID,
	})
	c.JSON(http.StatusCreated, business)
}

// ReplaceBusiness PUT /businesses/:id
func (ctrl *BusinessController) ReplaceBusiness(c *gin.Context) {
	id, ok := parseID(c, "id", apperrors.BusinessNotFound, apperrors.MsgBusinessNotFound)
	if !ok {
		return
	}

	// An unreadable body is still reported after the existence check.
	var payload model.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		if _, err := ctrl.businessService.GetBusiness(c.Request.Context(), id); err != nil {
			apperrors.RespondWithServiceError(c, err)
			return
		}
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, apperrors.MsgMissingAttributes)
		return
	}

	business, err := ctrl.businessService.ReplaceBusiness(c.Request.Context(), id, payload)
	if err != nil {
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, business)
}

// DeleteBusiness DELETE /businesses/:id
func (ctrl *BusinessController) DeleteBusiness(c *gin.Context) {
	id, ok := parseID(c, "id", apperrors.BusinessNotFound, apperrors.MsgBusinessNotFound)
	if !ok {
		return
	}

	if err := ctrl.businessService.DeleteBusiness(c.Request.Context(), id); err != nil {
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBusinessesByOwner GET /owners/:id/businesses
func (ctrl *BusinessController) ListBusinessesByOwner(c *gin.Context) {
	ownerID := pathScalar(c, "id")

	businesses, err := ctrl.businessService.ListBusinessesByOwner(c.Request.Context(), ownerID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list businesses by owner", err, map[string]interface{}{
			"owner_id": ownerID.String(),
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, businesses)
}
