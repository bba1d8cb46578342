package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/yungbote/healthwhisperer-backend/internal/pkg/errors"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/apierr"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	apiErr := APIError{Message: msg, Code: code}
	if c.Request != nil {
		apiErr.RequestID = ctxutil.RequestID(c.Request.Context())
	}
	c.JSON(status, ErrorEnvelope{Error: apiErr})
}

// RespondServiceError answers with the status carried by err. Errors without
// one become a 500 with fallbackCode and a generic message.
func RespondServiceError(c *gin.Context, fallbackCode string, err error) {
	ae, isAPIErr := apierr.As(err)
	switch {
	case isAPIErr:
		RespondError(c, ae.Status, ae.Code, ae.Err)
	case errors.Is(err, apperr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperr.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperr.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperr.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	default:
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, fallbackCode, errors.New("internal server error"))
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
