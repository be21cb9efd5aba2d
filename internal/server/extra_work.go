package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
)

type transitionRequest struct {
	Status string `json:"status"`
}

func (s *Server) TransitionExtraWork(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status := extraworkdomain.WorkStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		AbortWithError(c, newValidationError("status", "enum", "unknown work item status"))
		return
	}

	item, err := s.extraWork.Transition(c.Request.Context(), c.Param("itemID"), status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}
