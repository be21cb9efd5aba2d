package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
	"github.com/agencyops/fakturo/internal/invoice/workspace"
)

type generateRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (s *Server) GenerateInvoices(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Year < 2000 || req.Year > 2100 {
		AbortWithError(c, newValidationError("year", "range", "year must be between 2000 and 2100"))
		return
	}
	if req.Month < 1 || req.Month > 12 {
		AbortWithError(c, newValidationError("month", "range", "month must be between 1 and 12"))
		return
	}

	invoices, err := s.workspace.Generate(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoices":   invoices,
		"edit_state": s.workspace.EditState(),
	})
}

func (s *Server) RequestRegeneration(c *gin.Context) {
	s.workspace.RequestRegeneration()
	c.JSON(http.StatusOK, gin.H{"edit_state": s.workspace.EditState()})
}

func (s *Server) ListInvoices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"invoices":   s.workspace.Invoices(),
		"edit_state": s.workspace.EditState(),
	})
}

type addInvoiceRequest struct {
	EngagementID string                    `json:"engagement_id"`
	Item         workspace.ManualItemInput `json:"item"`
}

func (s *Server) AddInvoice(c *gin.Context) {
	var req addInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.EngagementID) == "" {
		AbortWithError(c, newValidationError("engagement_id", "required", "engagement_id is required"))
		return
	}

	inv, err := s.workspace.AddInvoice(c.Request.Context(), strings.TrimSpace(req.EngagementID), req.Item)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) PreviewInvoice(c *gin.Context) {
	invoiceID := c.Param("invoiceID")

	var found *invoicedomain.Invoice
	for _, inv := range s.workspace.Invoices() {
		if inv.ID == invoiceID {
			found = &inv
			break
		}
	}
	if found == nil {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	html, err := s.renderer.RenderHTML(*found)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) DuplicateInvoice(c *gin.Context) {
	inv, err := s.workspace.DuplicateInvoice(c.Param("invoiceID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) RemoveInvoice(c *gin.Context) {
	if err := s.workspace.RemoveInvoice(c.Param("invoiceID")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (s *Server) AddManualItem(c *gin.Context) {
	inv, err := s.workspace.AddManualItem(c.Param("invoiceID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) UpdateLineItem(c *gin.Context) {
	var patch invoicedomain.LineItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.workspace.UpdateLineItem(c.Param("invoiceID"), c.Param("itemID"), patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) RemoveLineItem(c *gin.Context) {
	inv, err := s.workspace.RemoveLineItem(c.Param("invoiceID"), c.Param("itemID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) DuplicateLineItem(c *gin.Context) {
	inv, err := s.workspace.DuplicateLineItem(c.Param("invoiceID"), c.Param("itemID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}
