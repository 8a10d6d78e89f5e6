package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cestino/shopping-service/internal/list"
)

// GetState returns the full observable engine state.
// GET /api/state
func GetState(c *gin.Context) {
	snapshot := eng.Snapshot()
	if !snapshot.Ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine is not ready"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// FilterRequest carries the view selection.
type FilterRequest struct {
	Search      string `json:"search"`
	Supermarket string `json:"supermarket"`
	Status      string `json:"status"`
}

// SetFilter updates the engine's current filter values.
// PUT /api/filter
func SetFilter(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eng.SetSearch(req.Search)
	if req.Supermarket != "" {
		eng.SetSupermarketFilter(req.Supermarket)
	}
	if req.Status != "" {
		status, ok := parseStatus(req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be all, active or bought"})
			return
		}
		eng.SetStatusFilter(status)
	}

	c.JSON(http.StatusOK, gin.H{"filteredProducts": eng.FilteredProducts()})
}

// parseStatus validates a status value from a request.
func parseStatus(v string) (list.StatusFilter, bool) {
	switch list.StatusFilter(v) {
	case list.StatusAll, list.StatusActive, list.StatusBought:
		return list.StatusFilter(v), true
	}
	return "", false
}
