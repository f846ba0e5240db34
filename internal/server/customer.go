package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dealdesk/dealdesk/internal/customer/domain"
)

func (s *Server) CreateCustomer(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	req := domain.ListRequest{
		Name:    strings.TrimSpace(c.Query("name")),
		Company: strings.TrimSpace(c.Query("company")),
		SortBy:  c.Query("sort_by"),
		OrderBy: c.Query("order_by"),
	}

	resp, err := s.customerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	resp, err := s.customerSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	var req domain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = id

	resp, err := s.customerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	if err := s.customerSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
