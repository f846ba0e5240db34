package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealdesk/dealdesk/internal/proposal/domain"
)

// entryIDs parses the proposal and child entry identifiers from the path.
func entryIDs(c *gin.Context) (int64, int64, error) {
	proposalID, err := pathID(c, "id")
	if err != nil {
		return 0, 0, newValidationError("id", "invalid_id", "id must be an integer")
	}
	entryID, err := pathID(c, "entryID")
	if err != nil {
		return 0, 0, newValidationError("entryID", "invalid_id", "entryID must be an integer")
	}
	return proposalID, entryID, nil
}

func (s *Server) AddLineItem(c *gin.Context) {
	proposalID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	var req domain.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.AddLineItem(c.Request.Context(), proposalID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// AddLineItems adds a batch of line items in a single transaction with a
// single aggregate recompute at the end.
func (s *Server) AddLineItems(c *gin.Context) {
	proposalID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	var reqs []domain.LineItemRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(reqs) == 0 {
		AbortWithError(c, newValidationError("line_items", "empty_batch", "at least one line item is required"))
		return
	}

	resp, err := s.proposalSvc.AddLineItems(c.Request.Context(), proposalID, reqs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateLineItem(c *gin.Context) {
	proposalID, entryID, err := entryIDs(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req domain.LineItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.UpdateLineItem(c.Request.Context(), proposalID, entryID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveLineItem(c *gin.Context) {
	proposalID, entryID, err := entryIDs(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.proposalSvc.RemoveLineItem(c.Request.Context(), proposalID, entryID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) AddEngineeringEntry(c *gin.Context) {
	proposalID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	var req domain.EngineeringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.AddEngineeringEntry(c.Request.Context(), proposalID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateEngineeringEntry(c *gin.Context) {
	proposalID, entryID, err := entryIDs(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req domain.EngineeringUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.UpdateEngineeringEntry(c.Request.Context(), proposalID, entryID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveEngineeringEntry(c *gin.Context) {
	proposalID, entryID, err := entryIDs(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.proposalSvc.RemoveEngineeringEntry(c.Request.Context(), proposalID, entryID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) AddExpense(c *gin.Context) {
	proposalID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	var req domain.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.AddExpense(c.Request.Context(), proposalID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateExpense(c *gin.Context) {
	proposalID, entryID, err := entryIDs(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req domain.ExpenseUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.UpdateExpense(c.Request.Context(), proposalID, entryID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveExpense(c *gin.Context) {
	proposalID, entryID, err := entryIDs(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.proposalSvc.RemoveExpense(c.Request.Context(), proposalID, entryID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) AddTax(c *gin.Context) {
	proposalID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	var req domain.TaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.AddTax(c.Request.Context(), proposalID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTax(c *gin.Context) {
	proposalID, entryID, err := entryIDs(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req domain.TaxUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.UpdateTax(c.Request.Context(), proposalID, entryID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveTax(c *gin.Context) {
	proposalID, entryID, err := entryIDs(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.proposalSvc.RemoveTax(c.Request.Context(), proposalID, entryID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
