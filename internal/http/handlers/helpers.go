package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/apierr"
)

func badRequest(code string, err error) error {
	return apierr.New(http.StatusBadRequest, code, err)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, badRequest("invalid_"+name, fmt.Errorf("%s must be a uuid", name))
	}
	return id, nil
}

// queryTime parses an optional RFC3339 query parameter.
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, badRequest("invalid_"+name, fmt.Errorf("%s must be RFC3339", name))
	}
	return &t, nil
}

// queryLimit returns 0 when absent; repos apply their own default and cap.
func queryLimit(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badRequest("invalid_limit", errors.New("limit must be a positive integer"))
	}
	return n, nil
}
