package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TemplateRequest is the edit-template payload.
type TemplateRequest struct {
	Name         string   `json:"name"`
	Supermarkets []string `json:"supermarkets"`
}

// ListTemplates returns the product database entries.
// GET /api/templates
func ListTemplates(c *gin.Context) {
	snapshot := eng.Snapshot()
	if !snapshot.Ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine is not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": snapshot.Templates})
}

// EditTemplate updates a template's name and markets without touching live
// products.
// PUT /api/templates/:id
func EditTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	respondResult(c, eng.EditTemplate(c.Request.Context(), c.Param("id"), req.Name, req.Supermarkets))
}

// DeleteTemplate removes a template. Matching products stay; the template is
// recreated lazily on the next add or purchase of the name.
// DELETE /api/templates/:id
func DeleteTemplate(c *gin.Context) {
	respondResult(c, eng.DeleteTemplate(c.Request.Context(), c.Param("id")))
}
