package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ratecarddomain "github.com/sewtrack/sewtrack/internal/ratecard/domain"
	"github.com/shopspring/decimal"
)

type linkProductTaskRequest struct {
	TaskID           string `json:"task_id"`
	BasePrice        string `json:"base_price"`
	PremiumPrice     string `json:"premium_price"`
	DefaultTier      string `json:"default_tier"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

func (s *Server) LinkProductTask(c *gin.Context) {
	var req linkProductTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateCardSvc.Link(c.Request.Context(), ratecarddomain.LinkRequest{
		ProductID:        strings.TrimSpace(c.Param("id")),
		TaskID:           strings.TrimSpace(req.TaskID),
		BasePrice:        strings.TrimSpace(req.BasePrice),
		PremiumPrice:     strings.TrimSpace(req.PremiumPrice),
		DefaultTier:      strings.TrimSpace(req.DefaultTier),
		EstimatedMinutes: req.EstimatedMinutes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRateCardEntries(c *gin.Context) {
	var query struct {
		TaskID string `form:"task_id"`
		Active string `form:"active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.rateCardSvc.List(c.Request.Context(), ratecarddomain.ListRequest{
		ProductID: strings.TrimSpace(c.Param("id")),
		TaskID:    strings.TrimSpace(query.TaskID),
		Active:    active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateRateCardRequest struct {
	BasePrice        *string `json:"base_price"`
	PremiumPrice     *string `json:"premium_price"`
	DefaultTier      *string `json:"default_tier"`
	EstimatedMinutes *int    `json:"estimated_minutes"`
	Active           *bool   `json:"active"`
}

func (s *Server) UpdateRateCardEntry(c *gin.Context) {
	var req updateRateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateCardSvc.Update(c.Request.Context(), ratecarddomain.UpdateRequest{
		ID:               strings.TrimSpace(c.Param("id")),
		BasePrice:        req.BasePrice,
		PremiumPrice:     req.PremiumPrice,
		DefaultTier:      req.DefaultTier,
		EstimatedMinutes: req.EstimatedMinutes,
		Active:           req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UnlinkProductTask(c *gin.Context) {
	if err := s.rateCardSvc.Unlink(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

// ResolvePrice previews the piece rate a submission would snapshot,
// without writing anything.
func (s *Server) ResolvePrice(c *gin.Context) {
	var query struct {
		ProductID string `form:"product_id"`
		TaskID    string `form:"task_id"`
		Tier      string `form:"tier"`
		Quantity  string `form:"quantity"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(query.ProductID))
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_id", "invalid value"))
		return
	}
	taskID, err := snowflake.ParseString(strings.TrimSpace(query.TaskID))
	if err != nil {
		AbortWithError(c, newValidationError("task_id", "invalid_id", "invalid value"))
		return
	}
	quantity, err := parseOptionalInt(query.Quantity)
	if err != nil || quantity < 0 {
		AbortWithError(c, newValidationError("quantity", "invalid_quantity", "invalid value"))
		return
	}

	resolved, err := s.rateCardSvc.Resolve(c.Request.Context(), productID, taskID, strings.TrimSpace(query.Tier))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := gin.H{
		"entry_id":       resolved.EntryID.String(),
		"product_id":     resolved.ProductID.String(),
		"task_id":        resolved.TaskID.String(),
		"tier":           resolved.Tier,
		"price_per_unit": resolved.PricePerUnit,
	}
	if quantity > 0 {
		data["quantity"] = quantity
		data["estimated_total"] = resolved.PricePerUnit.Mul(decimal.NewFromInt(int64(quantity)))
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}
