package routes

import (
	"github.com/gin-gonic/gin"

	assistantcontroller "github.com/omanias/tienda-api/controllers/assistant"
	cartcontroller "github.com/omanias/tienda-api/controllers/cart"
	productcontroller "github.com/omanias/tienda-api/controllers/product"
	webhookcontroller "github.com/omanias/tienda-api/controllers/webhook"
	"github.com/omanias/tienda-api/middleware"
	"github.com/omanias/tienda-api/services/assistant"
	"github.com/omanias/tienda-api/services/cartstore"
	"github.com/omanias/tienda-api/services/catalog"
	"github.com/omanias/tienda-api/services/whatsapp"
)

// Services bundles everything the route groups need.
type Services struct {
	Catalog   *catalog.Service
	Carts     *cartstore.Service
	Assistant *assistant.Service
	Sender    whatsapp.Sender
}

// SetupRoutes is the single entry-point that wires up the catalog, cart,
// assistant and webhook route groups.
func SetupRoutes(r *gin.Engine, svc Services) {
	// ──────────────── Catalog ────────────────
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(svc.Catalog))
		products.GET("/:id", productcontroller.GetProductByID(svc.Catalog))

		// Mutations require the admin API key.
		products.POST("", middleware.ValidateAPIKey, productcontroller.CreateProduct(svc.Catalog))
		products.PATCH("/:id", middleware.ValidateAPIKey, productcontroller.UpdateProduct(svc.Catalog))
		products.DELETE("/:id", middleware.ValidateAPIKey, productcontroller.DeleteProduct(svc.Catalog))
	}

	// ──────────────── Carts ────────────────
	carts := r.Group("/carts")
	{
		carts.POST("", cartcontroller.CreateCart(svc.Carts))
		carts.GET("/:id", cartcontroller.GetCart(svc.Carts))
		carts.PATCH("/:id", cartcontroller.UpdateCart(svc.Carts))
		carts.DELETE("/:id", cartcontroller.DeleteCart(svc.Carts))
		carts.PATCH("/:id/items/:itemId", cartcontroller.UpdateCartItem(svc.Carts))
		carts.DELETE("/:id/items/:itemId", cartcontroller.DeleteCartItem(svc.Carts))
	}

	// ──────────────── Conversational assistant ────────────────
	ai := r.Group("/assistant")
	{
		ai.POST("/chat", assistantcontroller.Chat(svc.Assistant))
		ai.POST("/products", assistantcontroller.QueryProducts(svc.Assistant))
		ai.POST("/purchase", assistantcontroller.Purchase(svc.Assistant))
		ai.POST("/carts/:id/query", assistantcontroller.CartQuery(svc.Assistant))
		ai.PATCH("/carts/:id/edit", assistantcontroller.EditCart(svc.Assistant))
	}

	// ──────────────── WhatsApp webhook ────────────────
	r.GET("/webhook", webhookcontroller.Verify())
	r.POST("/webhook", webhookcontroller.Receive(svc.Assistant, svc.Sender))
}
