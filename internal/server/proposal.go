package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dealdesk/dealdesk/internal/proposal/domain"
)

func (s *Server) CreateProposal(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProposals(c *gin.Context) {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_id", "customer_id must be an integer"))
		return
	}

	req := domain.ListRequest{
		CustomerID: customerID,
		Status:     domain.ProposalStatus(strings.TrimSpace(c.Query("status"))),
		SortBy:     c.Query("sort_by"),
		OrderBy:    c.Query("order_by"),
	}

	resp, err := s.proposalSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProposal(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	resp, err := s.proposalSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProposal(c *gin.Context) {
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

	resp, err := s.proposalSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProposal(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	if err := s.proposalSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) RecomputeProposal(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	totals, err := s.proposalSvc.Recompute(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}
