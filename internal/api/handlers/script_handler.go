package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotflare/slotflare/backend/internal/api/middleware"
	"github.com/slotflare/slotflare/backend/internal/services"
)

type ScriptHandler struct {
	scripts *services.ScriptService
}

func NewScriptHandler(scripts *services.ScriptService) *ScriptHandler {
	return &ScriptHandler{scripts: scripts}
}

func (h *ScriptHandler) List(c *gin.Context) {
	scripts, err := h.scripts.List(middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scripts)
}

func (h *ScriptHandler) Create(c *gin.Context) {
	var in services.CreateScriptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	script, err := h.scripts.Create(c.Request.Context(), middleware.CurrentUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, script)
}

func (h *ScriptHandler) Update(c *gin.Context) {
	var in services.UpdateScriptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	script, err := h.scripts.Update(c.Request.Context(), middleware.CurrentUserID(c), c.Param("uuid"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, script)
}

func (h *ScriptHandler) Delete(c *gin.Context) {
	if err := h.scripts.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("uuid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Script deleted"})
}
