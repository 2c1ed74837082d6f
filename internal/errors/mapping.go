package errors

import (
	"errors"
	"net/http"

	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/app/service"
)

// ErrorInfo is the client-facing shape of an error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// FromService translates errors returned by the service layer. Anything it
// does not recognise is an internal error; its text is never sent to the
// client.
func FromService(err error) ErrorInfo {
	switch {
	case errors.Is(err, model.ErrMissingAttributes):
		return ErrorInfo{http.StatusBadRequest, ValidationRequired, MsgMissingAttributes}
	case errors.Is(err, model.ErrInvalidAttributes):
		return ErrorInfo{http.StatusBadRequest, ValidationInvalidInput, MsgMissingAttributes}
	case errors.Is(err, service.ErrBusinessNotFound):
		return ErrorInfo{http.StatusNotFound, BusinessNotFound, MsgBusinessNotFound}
	case errors.Is(err, service.ErrReviewNotFound):
		return ErrorInfo{http.StatusNotFound, ReviewNotFound, MsgReviewNotFound}
	case errors.Is(err, service.ErrDuplicateReview):
		return ErrorInfo{http.StatusConflict, ReviewAlreadyExists, MsgDuplicateReview}
	default:
		return ErrorInfo{http.StatusInternalServerError, InternalServerError, MsgInternal}
	}
}
