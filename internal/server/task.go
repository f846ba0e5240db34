package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealdesk/dealdesk/internal/task/domain"
)

func (s *Server) CreateTask(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taskSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTasks(c *gin.Context) {
	done, err := parseOptionalBool(c.Query("done"))
	if err != nil {
		AbortWithError(c, newValidationError("done", "invalid_bool", "done must be true or false"))
		return
	}
	proposalID, err := queryID(c, "proposal_id")
	if err != nil {
		AbortWithError(c, newValidationError("proposal_id", "invalid_id", "proposal_id must be an integer"))
		return
	}
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_id", "customer_id must be an integer"))
		return
	}

	req := domain.ListRequest{
		Done:       done,
		ProposalID: proposalID,
		CustomerID: customerID,
		SortBy:     c.Query("sort_by"),
		OrderBy:    c.Query("order_by"),
	}

	resp, err := s.taskSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTask(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	resp, err := s.taskSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTask(c *gin.Context) {
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

	resp, err := s.taskSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteTask(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	resp, err := s.taskSvc.Complete(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTask(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "id must be an integer"))
		return
	}

	if err := s.taskSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
