package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/middleware"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// GetCart handles GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	cart, err := h.cartService.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved", cart)
}

// AddToCart handles POST /api/cart/add
func (h *Handlers) AddToCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product id", gin.H{"field": "productId"})
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), user.ID, productID, req.Quantity)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Item added to cart", cart)
}

// UpdateCartItem handles PUT /api/cart/update
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product id", gin.H{"field": "productId"})
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), user.ID, productID, req.Quantity)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart updated", cart)
}

// RemoveFromCart handles DELETE /api/cart/remove/:productId
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	productID, ok := h.objectIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), user.ID, productID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Item removed from cart", cart)
}

// ClearCart handles DELETE /api/cart/clear
func (h *Handlers) ClearCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	cart, err := h.cartService.ClearCart(c.Request.Context(), user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart cleared", cart)
}
