package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reportingdomain "github.com/sewtrack/sewtrack/internal/reporting/domain"
)

func (s *Server) reportQuery(c *gin.Context) (reportingdomain.Query, bool) {
	var query struct {
		From       string `form:"from"`
		To         string `form:"to"`
		EmployeeID string `form:"employee_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return reportingdomain.Query{}, false
	}

	return reportingdomain.Query{
		From:       strings.TrimSpace(query.From),
		To:         strings.TrimSpace(query.To),
		EmployeeID: strings.TrimSpace(query.EmployeeID),
		Status:     strings.TrimSpace(query.Status),
	}, true
}

func (s *Server) ReportSummary(c *gin.Context) {
	req, ok := s.reportQuery(c)
	if !ok {
		return
	}

	resp, err := s.reportingSvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportPerEmployee(c *gin.Context) {
	req, ok := s.reportQuery(c)
	if !ok {
		return
	}

	resp, err := s.reportingSvc.PerEmployee(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportDaily(c *gin.Context) {
	req, ok := s.reportQuery(c)
	if !ok {
		return
	}

	resp, err := s.reportingSvc.Daily(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDashboard(c *gin.Context) {
	resp, err := s.reportingSvc.Dashboard(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
