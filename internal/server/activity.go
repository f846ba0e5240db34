package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealdesk/dealdesk/internal/activity/domain"
)

func (s *Server) ListActivities(c *gin.Context) {
	targetID, err := queryID(c, "target_id")
	if err != nil {
		AbortWithError(c, newValidationError("target_id", "invalid_id", "target_id must be an integer"))
		return
	}

	since, err := parseOptionalTime(c.Query("since"))
	if err != nil {
		AbortWithError(c, newValidationError("since", "invalid_time", "since must be RFC 3339"))
		return
	}
	until, err := parseOptionalTime(c.Query("until"))
	if err != nil {
		AbortWithError(c, newValidationError("until", "invalid_time", "until must be RFC 3339"))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a non-negative integer"))
			return
		}
	}

	req := domain.ListRequest{
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		TargetID:   targetID,
		Since:      since,
		Until:      until,
		Limit:      limit,
	}

	resp, err := s.activitySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseOptionalTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
