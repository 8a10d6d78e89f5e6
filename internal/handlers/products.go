package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cestino/shopping-service/internal/list"
)

// ProductRequest is the add/edit product payload.
type ProductRequest struct {
	Name         string   `json:"name"`
	Supermarkets []string `json:"supermarkets"`
}

// ToggleBoughtRequest is the bought-toggle payload.
type ToggleBoughtRequest struct {
	IsBought bool `json:"isBought"`
}

// ListProducts returns the filtered product view. Query parameters override
// the engine's stored filter for this request only.
// GET /api/products?search=&supermarket=&status=
func ListProducts(c *gin.Context) {
	snapshot := eng.Snapshot()
	if !snapshot.Ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine is not ready"})
		return
	}

	filter := snapshot.Filter
	if v, ok := c.GetQuery("search"); ok {
		filter.Search = v
	}
	if v, ok := c.GetQuery("supermarket"); ok {
		filter.Supermarket = v
	}
	if v, ok := c.GetQuery("status"); ok {
		status, ok := parseStatus(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be all, active or bought"})
			return
		}
		filter.Status = status
	}

	c.JSON(http.StatusOK, gin.H{"products": filter.Apply(snapshot.Products)})
}

// AddProduct creates a new product.
// POST /api/products
func AddProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := eng.AddProduct(c.Request.Context(), req.Name, req.Supermarkets)
	respondResult(c, result)
}

// EditProduct updates an existing product's name and markets.
// PUT /api/products/:id
func EditProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := eng.EditProduct(c.Request.Context(), c.Param("id"), req.Name, req.Supermarkets)
	respondResult(c, result)
}

// DeleteProduct removes a product.
// DELETE /api/products/:id
func DeleteProduct(c *gin.Context) {
	if err := eng.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ToggleProductBought flips a product's bought flag.
// POST /api/products/:id/bought
func ToggleProductBought(c *gin.Context) {
	var req ToggleBoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := eng.ToggleProductBought(c.Request.Context(), c.Param("id"), req.IsBought); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// respondResult maps an ActionResult onto an HTTP response. Validation
// failures are 422 so callers can render inline feedback.
func respondResult(c *gin.Context, result list.ActionResult) {
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
