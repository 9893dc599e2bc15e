package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query struct {
		Action   string `form:"action"`
		EntityID string `form:"entity_id"`
		BatchRef string `form:"batch_ref"`
		Limit    string `form:"limit"`
		Cursor   string `form:"cursor"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	limit, err := parseOptionalInt(query.Limit)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListRequest{
		Action:   strings.TrimSpace(query.Action),
		EntityID: strings.TrimSpace(query.EntityID),
		BatchRef: strings.TrimSpace(query.BatchRef),
		Limit:    limit,
		Cursor:   strings.TrimSpace(query.Cursor),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
