package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
)

type createEmployeeRequest struct {
	ActorID        string  `json:"actor_id"`
	FullName       string  `json:"full_name"`
	Phone          string  `json:"phone"`
	Position       string  `json:"position"`
	EmploymentType string  `json:"employment_type"`
	HourlyRate     *string `json:"hourly_rate"`
	HiredAt        string  `json:"hired_at"`
	Notes          string  `json:"notes"`
}

func (s *Server) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.Create(c.Request.Context(), employeedomain.CreateRequest{
		ActorID:        strings.TrimSpace(req.ActorID),
		FullName:       strings.TrimSpace(req.FullName),
		Phone:          strings.TrimSpace(req.Phone),
		Position:       strings.TrimSpace(req.Position),
		EmploymentType: strings.TrimSpace(req.EmploymentType),
		HourlyRate:     req.HourlyRate,
		HiredAt:        strings.TrimSpace(req.HiredAt),
		Notes:          req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEmployees(c *gin.Context) {
	var query struct {
		Active   string `form:"active"`
		Position string `form:"position"`
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

	resp, err := s.employeeSvc.List(c.Request.Context(), employeedomain.ListRequest{
		Active:   active,
		Position: strings.TrimSpace(query.Position),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEmployee(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.employeeSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CurrentEmployee(c *gin.Context) {
	resp, err := s.employeeSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateEmployeeRequest struct {
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	Position       *string `json:"position"`
	EmploymentType *string `json:"employment_type"`
	HourlyRate     *string `json:"hourly_rate"`
	Notes          *string `json:"notes"`
}

func (s *Server) UpdateEmployee(c *gin.Context) {
	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.Update(c.Request.Context(), employeedomain.UpdateRequest{
		ID:             strings.TrimSpace(c.Param("id")),
		FullName:       req.FullName,
		Phone:          req.Phone,
		Position:       req.Position,
		EmploymentType: req.EmploymentType,
		HourlyRate:     req.HourlyRate,
		Notes:          req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type deactivateEmployeeRequest struct {
	TerminatedAt *time.Time `json:"terminated_at"`
}

func (s *Server) DeactivateEmployee(c *gin.Context) {
	var req deactivateEmployeeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.employeeSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.TerminatedAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ActivateEmployee(c *gin.Context) {
	resp, err := s.employeeSvc.Activate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
