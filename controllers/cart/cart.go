package cartcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/omanias/tienda-api/models"
	"github.com/omanias/tienda-api/services/cartstore"
)

type cartInput struct {
	Items []cartstore.CartItemInput `json:"items" binding:"required,dive"`
}

type lineItemInput struct {
	Qty int `json:"qty" binding:"required,min=1"`
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case models.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// CreateCart creates a cart from a list of {product_id, qty} lines.
// POST /carts
func CreateCart(svc *cartstore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input cartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		detail, err := svc.CreateCart(c.Request.Context(), input.Items)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusCreated, detail)
	}
}

// GetCart returns the priced cart detail. GET /carts/:id
func GetCart(svc *cartstore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := pathID(c, "id")
		if !ok {
			return
		}
		detail, err := svc.GetCartDetail(c.Request.Context(), cartID)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// UpdateCart replaces the cart's lines wholesale. PATCH /carts/:id
func UpdateCart(svc *cartstore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input cartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		detail, err := svc.UpdateCart(c.Request.Context(), cartID, input.Items)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// DeleteCart removes the cart and its lines. DELETE /carts/:id
func DeleteCart(svc *cartstore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteCart(c.Request.Context(), cartID); err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart deleted"})
	}
}

// UpdateCartItem sets a single line's quantity. PATCH /carts/:id/items/:itemId
func UpdateCartItem(svc *cartstore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := pathID(c, "id")
		if !ok {
			return
		}
		lineID, ok := pathID(c, "itemId")
		if !ok {
			return
		}
		var input lineItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		detail, err := svc.UpdateLineItem(c.Request.Context(), cartID, lineID, input.Qty)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// DeleteCartItem removes a single line. DELETE /carts/:id/items/:itemId
func DeleteCartItem(svc *cartstore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := pathID(c, "id")
		if !ok {
			return
		}
		lineID, ok := pathID(c, "itemId")
		if !ok {
			return
		}
		detail, err := svc.RemoveLineItem(c.Request.Context(), cartID, lineID)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
