package assistantcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/omanias/tienda-api/models"
	"github.com/omanias/tienda-api/services/assistant"
)

type promptInput struct {
	Prompt string `json:"prompt" binding:"required"`
}

type queryInput struct {
	Query string `json:"query" binding:"required"`
}

type purchaseInput struct {
	Query    string `json:"query" binding:"required"`
	Quantity int    `json:"quantity"`
}

// Chat forwards a raw prompt to the generation service. POST /assistant/chat
func Chat(svc *assistant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input promptInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		text, err := svc.Chat(c.Request.Context(), input.Prompt)
		if err != nil {
			if errors.Is(err, models.ErrIntentUnavailable) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "Generation service unavailable"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"text": text})
	}
}

// QueryProducts answers a catalog question with recommendations.
// POST /assistant/products
func QueryProducts(svc *assistant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input queryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		result, err := svc.QueryProducts(c.Request.Context(), input.Query)
		if err != nil {
			if errors.Is(err, models.ErrIntentUnavailable) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "Generation service unavailable"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": result.Response, "products": result.Products})
	}
}

// Purchase runs the purchase flow: query, recommend, create a cart when the
// text carries purchase intent. POST /assistant/purchase
func Purchase(svc *assistant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input purchaseInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		response, cart := svc.Purchase(c.Request.Context(), input.Query, input.Quantity)
		c.JSON(http.StatusOK, gin.H{"response": response, "cart": cart})
	}
}

// CartQuery answers a question about an existing cart.
// POST /assistant/carts/:id/query
func CartQuery(svc *assistant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart ID"})
			return
		}
		var input queryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		response, cart := svc.CartQuery(c.Request.Context(), uint(cartID), input.Query)
		c.JSON(http.StatusOK, gin.H{"response": response, "cart": cart})
	}
}

// EditCart applies a free-text edit to an existing cart.
// PATCH /assistant/carts/:id/edit
func EditCart(svc *assistant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart ID"})
			return
		}
		var input queryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		response, cart := svc.EditCart(c.Request.Context(), uint(cartID), input.Query)
		c.JSON(http.StatusOK, gin.H{"response": response, "cart": cart})
	}
}
