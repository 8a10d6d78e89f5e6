package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cestino/shopping-service/internal/engine"
	"github.com/cestino/shopping-service/internal/store/localfile"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	local, err := localfile.New(t.TempDir())
	require.NoError(t, err)

	logger := zerolog.Nop()
	e := engine.New(local, nil, &logger)
	require.NoError(t, e.Init(context.Background()))
	Init(e)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/state", GetState)
	router.PUT("/api/filter", SetFilter)
	router.GET("/api/products", ListProducts)
	router.POST("/api/products", AddProduct)
	router.PUT("/api/products/:id", EditProduct)
	router.DELETE("/api/products/:id", DeleteProduct)
	router.POST("/api/products/:id/bought", ToggleProductBought)
	router.GET("/api/supermarkets", ListSupermarkets)
	router.POST("/api/supermarkets", AddSupermarket)
	router.PUT("/api/supermarkets/:name", EditSupermarket)
	router.DELETE("/api/supermarkets/:name", DeleteSupermarket)
	router.GET("/api/templates", ListTemplates)
	router.PUT("/api/templates/:id", EditTemplate)
	router.DELETE("/api/templates/:id", DeleteTemplate)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAddProductEndpoint(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/products", ProductRequest{
		Name:         "Milk",
		Supermarkets: []string{"Lidl"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, `Added "Milk".`, body["message"])

	w = doJSON(t, router, "GET", "/api/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	products := decodeBody(t, w)["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Milk", products[0].(map[string]interface{})["name"])
}

func TestAddProductValidationFailureIs422(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/products", ProductRequest{
		Name:         "   ",
		Supermarkets: []string{"Lidl"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Please enter a product name.", body["message"])
}

func TestAddProductMalformedBodyIs400(t *testing.T) {
	router := setupRouter(t)

	req, err := http.NewRequest("POST", "/api/products", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleBoughtEndpoint(t *testing.T) {
	router := setupRouter(t)

	doJSON(t, router, "POST", "/api/products", ProductRequest{Name: "Milk", Supermarkets: []string{"Lidl"}})

	w := doJSON(t, router, "GET", "/api/products", nil)
	products := decodeBody(t, w)["products"].([]interface{})
	id := products[0].(map[string]interface{})["id"].(string)

	w = doJSON(t, router, "POST", "/api/products/"+id+"/bought", ToggleBoughtRequest{IsBought: true})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/products?status=bought", nil)
	products = decodeBody(t, w)["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, true, products[0].(map[string]interface{})["isBought"])

	// The purchase is recorded on the template.
	w = doJSON(t, router, "GET", "/api/templates", nil)
	templates := decodeBody(t, w)["templates"].([]interface{})
	require.Len(t, templates, 1)
	log := templates[0].(map[string]interface{})["purchaseLog"].([]interface{})
	assert.Len(t, log, 1)
}

func TestListProductsQueryOverridesFilter(t *testing.T) {
	router := setupRouter(t)

	doJSON(t, router, "POST", "/api/products", ProductRequest{Name: "Milk", Supermarkets: []string{"Lidl"}})
	doJSON(t, router, "POST", "/api/products", ProductRequest{Name: "Bread", Supermarkets: []string{"Continente"}})

	w := doJSON(t, router, "GET", "/api/products?supermarket=Lidl", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	products := decodeBody(t, w)["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Milk", products[0].(map[string]interface{})["name"])

	// The stored filter is untouched by per-request overrides.
	w = doJSON(t, router, "GET", "/api/products", nil)
	assert.Len(t, decodeBody(t, w)["products"], 2)
}

func TestListProductsRejectsUnknownStatus(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "GET", "/api/products?status=nonsense", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", "/api/products?status=active", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetFilterEndpoint(t *testing.T) {
	router := setupRouter(t)

	doJSON(t, router, "POST", "/api/products", ProductRequest{Name: "Milk", Supermarkets: []string{"Lidl"}})
	doJSON(t, router, "POST", "/api/products", ProductRequest{Name: "Bread", Supermarkets: []string{"Continente"}})

	w := doJSON(t, router, "PUT", "/api/filter", FilterRequest{Search: "mil"})
	assert.Equal(t, http.StatusOK, w.Code)
	filtered := decodeBody(t, w)["filteredProducts"].([]interface{})
	require.Len(t, filtered, 1)
	assert.Equal(t, "Milk", filtered[0].(map[string]interface{})["name"])

	w = doJSON(t, router, "PUT", "/api/filter", FilterRequest{Status: "nonsense"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSupermarketEndpoints(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/supermarkets", SupermarketRequest{Name: "Aldi"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/supermarkets", SupermarketRequest{Name: "aldi"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "That supermarket already exists.", decodeBody(t, w)["message"])

	w = doJSON(t, router, "PUT", "/api/supermarkets/Aldi", RenameSupermarketRequest{NewName: "Auchan"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/supermarkets", nil)
	markets := decodeBody(t, w)["supermarkets"].([]interface{})
	assert.Contains(t, markets, "Auchan")
	assert.NotContains(t, markets, "Aldi")

	w = doJSON(t, router, "DELETE", "/api/supermarkets/Auchan", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `Removed "Auchan". Updated 0 product(s) and 0 database item(s).`, decodeBody(t, w)["message"])

	w = doJSON(t, router, "DELETE", "/api/supermarkets/Nowhere", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTemplateEndpoints(t *testing.T) {
	router := setupRouter(t)

	doJSON(t, router, "POST", "/api/products", ProductRequest{Name: "Milk", Supermarkets: []string{"Lidl"}})

	w := doJSON(t, router, "GET", "/api/templates", nil)
	templates := decodeBody(t, w)["templates"].([]interface{})
	require.Len(t, templates, 1)
	id := templates[0].(map[string]interface{})["id"].(string)

	w = doJSON(t, router, "PUT", "/api/templates/"+id, TemplateRequest{Name: "Oat Milk", Supermarkets: []string{"Continente"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "DELETE", "/api/templates/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Database item deleted.", decodeBody(t, w)["message"])

	w = doJSON(t, router, "DELETE", "/api/templates/"+id, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetStateEndpoint(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "GET", "/api/state", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["ready"])
	assert.Equal(t, "local", body["syncMode"])
	assert.Len(t, body["supermarkets"], 4)
}
