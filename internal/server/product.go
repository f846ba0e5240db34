package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dealdesk/dealdesk/internal/catalog/domain"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// BulkCreateProducts imports a batch of products in a single transaction.
// Either every row is created or none are.
func (s *Server) BulkCreateProducts(c *gin.Context) {
	var reqs []domain.CreateRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(reqs) == 0 {
		AbortWithError(c, newValidationError("products", "empty_batch", "at least one product is required"))
		return
	}

	resp, err := s.productSvc.BulkCreate(c.Request.Context(), reqs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_bool", "active must be true or false"))
		return
	}

	req := domain.ListRequest{
		Name:     strings.TrimSpace(c.Query("name")),
		Category: strings.TrimSpace(c.Query("category")),
		Active:   active,
		SortBy:   c.Query("sort_by"),
		OrderBy:  c.Query("order_by"),
	}

	resp, err := s.productSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	resp, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
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

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ArchiveProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	resp, err := s.productSvc.Archive(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
