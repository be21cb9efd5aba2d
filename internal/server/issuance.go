package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agencyops/fakturo/internal/invoice/workspace"
	issuancedomain "github.com/agencyops/fakturo/internal/issuance/domain"
)

func (s *Server) SelectInvoice(c *gin.Context) {
	inv, err := s.workspace.Select(c.Param("invoiceID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv, "selected": s.workspace.SelectedIDs()})
}

func (s *Server) DeselectInvoice(c *gin.Context) {
	s.workspace.Deselect(c.Param("invoiceID"))
	c.JSON(http.StatusOK, gin.H{"selected": s.workspace.SelectedIDs()})
}

func (s *Server) Selection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"selected": s.workspace.SelectedIDs(),
		"issued":   s.workspace.IssuedIDs(),
	})
}

type issueRequest struct {
	InvoiceIDs []string `json:"invoice_ids"`
}

func (s *Server) IssueSelected(c *gin.Context) {
	// An empty body means "issue the current selection".
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	var (
		result *workspace.IssueResult
		err    error
	)
	if len(req.InvoiceIDs) > 0 {
		result, err = s.workspace.IssueInvoices(c.Request.Context(), req.InvoiceIDs)
	} else {
		result, err = s.workspace.IssueSelected(c.Request.Context())
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (s *Server) ReissueInvoice(c *gin.Context) {
	if err := s.workspace.Reissue(c.Request.Context(), c.Param("invoiceID")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reopened"})
}

func (s *Server) InvoiceStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": s.workspace.StatsSnapshot()})
}

func (s *Server) ListIssued(c *gin.Context) {
	yearParam := c.Query("year")
	if yearParam == "" {
		AbortWithError(c, newValidationError("year", "required", "year query parameter is required"))
		return
	}
	year, err := strconv.Atoi(yearParam)
	if err != nil {
		AbortWithError(c, newValidationError("year", "numeric", "year must be a number"))
		return
	}

	entries, err := s.ledger.ListByYear(c.Request.Context(), year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if entries == nil {
		entries = []issuancedomain.IssuedInvoice{}
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "invoices": entries})
}
