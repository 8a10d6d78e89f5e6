package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SupermarketRequest is the add-supermarket payload.
type SupermarketRequest struct {
	Name string `json:"name"`
}

// RenameSupermarketRequest is the edit-supermarket payload.
type RenameSupermarketRequest struct {
	NewName string `json:"newName"`
}

// ListSupermarkets returns the known supermarket names.
// GET /api/supermarkets
func ListSupermarkets(c *gin.Context) {
	snapshot := eng.Snapshot()
	if !snapshot.Ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine is not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"supermarkets": snapshot.Supermarkets})
}

// AddSupermarket registers a new supermarket name.
// POST /api/supermarkets
func AddSupermarket(c *gin.Context) {
	var req SupermarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	respondResult(c, eng.AddSupermarket(c.Request.Context(), req.Name))
}

// EditSupermarket renames a supermarket, cascading into products and
// templates.
// PUT /api/supermarkets/:name
func EditSupermarket(c *gin.Context) {
	var req RenameSupermarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	respondResult(c, eng.EditSupermarket(c.Request.Context(), c.Param("name"), req.NewName))
}

// DeleteSupermarket removes a supermarket and strips it from all references.
// DELETE /api/supermarkets/:name
func DeleteSupermarket(c *gin.Context) {
	respondResult(c, eng.DeleteSupermarket(c.Request.Context(), c.Param("name")))
}
