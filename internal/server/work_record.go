package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	workrecorddomain "github.com/sewtrack/sewtrack/internal/workrecord/domain"
)

type submitWorkRecordRequest struct {
	EmployeeID string `json:"employee_id"`
	ProductID  string `json:"product_id"`
	TaskID     string `json:"task_id"`
	Quantity   int    `json:"quantity"`
	WorkDate   string `json:"work_date"`
	Notes      string `json:"notes"`
}

func (s *Server) SubmitWorkRecord(c *gin.Context) {
	var req submitWorkRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workRecordSvc.Submit(c.Request.Context(), workrecorddomain.SubmitRequest{
		EmployeeID: strings.TrimSpace(req.EmployeeID),
		ProductID:  strings.TrimSpace(req.ProductID),
		TaskID:     strings.TrimSpace(req.TaskID),
		Quantity:   req.Quantity,
		WorkDate:   strings.TrimSpace(req.WorkDate),
		Notes:      req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordSubmission(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWorkRecords(c *gin.Context) {
	var query struct {
		Status     string `form:"status"`
		EmployeeID string `form:"employee_id"`
		ProductID  string `form:"product_id"`
		From       string `form:"from"`
		To         string `form:"to"`
		IsPaid     string `form:"is_paid"`
		Limit      string `form:"limit"`
		Offset     string `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isPaid, err := parseOptionalBool(query.IsPaid)
	if err != nil {
		AbortWithError(c, newValidationError("is_paid", "invalid_is_paid", "invalid is_paid"))
		return
	}
	limit, err := parseOptionalInt(query.Limit)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}
	offset, err := parseOptionalInt(query.Offset)
	if err != nil {
		AbortWithError(c, newValidationError("offset", "invalid_offset", "invalid offset"))
		return
	}

	resp, err := s.workRecordSvc.List(c.Request.Context(), workrecorddomain.ListRequest{
		Status:     strings.TrimSpace(query.Status),
		EmployeeID: strings.TrimSpace(query.EmployeeID),
		ProductID:  strings.TrimSpace(query.ProductID),
		From:       strings.TrimSpace(query.From),
		To:         strings.TrimSpace(query.To),
		IsPaid:     isPaid,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWorkRecord(c *gin.Context) {
	resp, err := s.workRecordSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateWorkRecordRequest struct {
	Quantity *int    `json:"quantity"`
	Notes    *string `json:"notes"`
}

func (s *Server) UpdateWorkRecord(c *gin.Context) {
	var req updateWorkRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workRecordSvc.UpdateWhilePending(c.Request.Context(), workrecorddomain.UpdateRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Quantity: req.Quantity,
		Notes:    req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteWorkRecord(c *gin.Context) {
	if err := s.workRecordSvc.DeleteWhilePending(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ApproveWorkRecord(c *gin.Context) {
	resp, err := s.workRecordSvc.Approve(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordTransition(c.Request.Context(), auditdomain.ActionApprove)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RejectWorkRecord(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workRecordSvc.Reject(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordTransition(c.Request.Context(), auditdomain.ActionReject)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResetWorkRecord(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workRecordSvc.ResetToPending(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordTransition(c.Request.Context(), auditdomain.ActionReset)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkWorkRecordPaid(c *gin.Context) {
	resp, err := s.workRecordSvc.MarkPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordTransition(c.Request.Context(), auditdomain.ActionMarkPaid)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UnmarkWorkRecordPaid(c *gin.Context) {
	resp, err := s.workRecordSvc.UnmarkPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordTransition(c.Request.Context(), auditdomain.ActionUnmarkPaid)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type bulkWorkRecordRequest struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason"`
}

func (s *Server) BulkApproveWorkRecords(c *gin.Context) {
	var req bulkWorkRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workRecordSvc.BulkApprove(c.Request.Context(), req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordBulkSkips(c.Request.Context(), auditdomain.ActionApprove, len(resp.SkippedIDs))
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BulkRejectWorkRecords(c *gin.Context) {
	var req bulkWorkRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workRecordSvc.BulkReject(c.Request.Context(), req.IDs, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordBulkSkips(c.Request.Context(), auditdomain.ActionReject, len(resp.SkippedIDs))
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
