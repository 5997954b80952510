package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

// ListProducts handles GET /api/products
func (h *Handlers) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Manufacturer: c.Query("manufacturer"),
		SortBy:       c.Query("sortBy"),
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 20),
	}

	if category := c.Query("category"); category != "" {
		for _, part := range strings.Split(category, ",") {
			filter.Categories = append(filter.Categories, models.ProductCategory(strings.TrimSpace(part)))
		}
	}
	if v := c.Query("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &f
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &f
		}
	}
	if v := c.Query("requiresPrescription"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.RequiresPrescription = &b
		}
	}

	list, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Products retrieved", list)
}

// SearchProducts handles GET /api/products/search
func (h *Handlers) SearchProducts(c *gin.Context) {
	products, err := h.catalogService.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Search results", products)
}

// GetProduct handles GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := h.objectIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved", product)
}

// CreateProduct handles POST /api/products (admin)
func (h *Handlers) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.catalogService.CreateProduct(c.Request.Context(), &product); err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct handles PUT /api/products/:id (admin)
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := h.objectIDParam(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	product.ID = id

	if err := h.catalogService.UpdateProduct(c.Request.Context(), &product); err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct handles DELETE /api/products/:id (admin)
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := h.objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deleted", nil)
}

// NearlyExpiredProducts handles GET /api/products/expiry/nearly-expired (admin)
func (h *Handlers) NearlyExpiredProducts(c *gin.Context) {
	products, err := h.catalogService.NearlyExpiredProducts(c.Request.Context(), queryInt(c, "days", 0))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Nearly expired products retrieved", products)
}

// RemoveExpiredProducts handles DELETE /api/products/expiry/remove-expired (admin)
func (h *Handlers) RemoveExpiredProducts(c *gin.Context) {
	removed, err := h.catalogService.RemoveExpiredProducts(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Expired products removed", gin.H{"removed": removed})
}

func (h *Handlers) objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id", gin.H{"field": name})
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, defaultValue int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
