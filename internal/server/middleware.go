package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sewtrack/sewtrack/internal/tenantctx"
)

const (
	headerRequestID = "X-Request-ID"
	headerActorID   = "X-Actor-ID"
)

// RequestIDMiddleware tags every request with an ID for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(headerRequestID, requestID)
		c.Next()
	}
}

// ActorRequired reads the authenticated actor from the request and
// places it on the context. Requests without an actor are rejected.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerActorID))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorPayload("unauthorized", "missing actor identity", nil))
			return
		}
		actorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || actorID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorPayload("unauthorized", "invalid actor identity", nil))
			return
		}

		c.Request = c.Request.WithContext(tenantctx.WithActorID(c.Request.Context(), actorID))
		c.Next()
	}
}

// TenantContext resolves the calling actor's tenant and scopes the
// request context to it. Handlers behind this middleware never see a
// request without a tenant.
func (s *Server) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved, err := s.tenantSvc.Resolve(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		tenantID, err := strconv.ParseInt(resolved.ID, 10, 64)
		if err != nil {
			AbortWithError(c, fmt.Errorf("resolve tenant id: %w", err))
			return
		}

		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), tenantID))
		c.Next()
	}
}

// authorize gates a route on the actor's role within the current tenant.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		actorID, ok := tenantctx.ActorIDFromContext(ctx)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorPayload("unauthorized", "missing actor identity", nil))
			return
		}
		tenantID, ok := tenantctx.TenantIDFromContext(ctx)
		if !ok {
			AbortWithError(c, errNoTenantContext)
			return
		}

		actor := "user:" + actorID.String()
		if err := s.authzSvc.Authorize(ctx, actor, tenantID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
