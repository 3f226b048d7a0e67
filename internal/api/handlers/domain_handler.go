package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotflare/slotflare/backend/internal/api/middleware"
	"github.com/slotflare/slotflare/backend/internal/services"
)

type DomainHandler struct {
	domains *services.DomainService
}

func NewDomainHandler(domains *services.DomainService) *DomainHandler {
	return &DomainHandler{domains: domains}
}

func (h *DomainHandler) List(c *gin.Context) {
	domains, err := h.domains.List(middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domains)
}

type CreateDomainRequest struct {
	DomainName string `json:"domain_name" binding:"required"`
}

func (h *DomainHandler) Create(c *gin.Context) {
	var req CreateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domain, err := h.domains.Create(c.Request.Context(), middleware.CurrentUserID(c), req.DomainName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, domain)
}

func (h *DomainHandler) Delete(c *gin.Context) {
	if err := h.domains.Delete(middleware.CurrentUserID(c), c.Param("uuid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Domain deleted"})
}
