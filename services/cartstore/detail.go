package cartstore

import (
	"time"

	"github.com/omanias/tienda-api/models"
)

// CartItemInput is the caller-facing shape of one requested line.
type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Qty       int  `json:"qty" binding:"min=0"`
}

// ProductSummary is the denormalized product view embedded in a cart detail.
type ProductSummary struct {
	ID          uint    `json:"id"`
	TipoPrenda  string  `json:"tipo_prenda"`
	Talla       string  `json:"talla"`
	Color       string  `json:"color"`
	Categoria   string  `json:"categoria"`
	Descripcion string  `json:"descripcion"`
	Disponible  bool    `json:"disponible"`
	Precio50U   float64 `json:"precio_50_u"`
}

// CartLineDetail is one priced line of a cart detail. UnitPrice is selected
// by the line quantity against the product's volume tiers.
type CartLineDetail struct {
	ID        uint           `json:"id"`
	ProductID uint           `json:"product_id"`
	Product   ProductSummary `json:"product"`
	Qty       int            `json:"qty"`
	UnitPrice float64        `json:"unit_price"`
	Subtotal  float64        `json:"subtotal"`
}

// CartDetail is the priced projection of a cart returned to callers. It is
// computed on read and never stored.
type CartDetail struct {
	ID        uint             `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Items     []CartLineDetail `json:"items"`
	Total     float64          `json:"total"`
	ItemCount int              `json:"item_count"`
}

func buildDetail(cart *models.Cart) *CartDetail {
	detail := &CartDetail{
		ID:        cart.ID,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
		Items:     make([]CartLineDetail, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		unit := item.Product.PriceForQuantity(item.Qty)
		subtotal := unit * float64(item.Qty)
		detail.Items = append(detail.Items, CartLineDetail{
			ID:        item.ID,
			ProductID: item.ProductID,
			Product: ProductSummary{
				ID:          item.Product.ID,
				TipoPrenda:  item.Product.TipoPrenda,
				Talla:       item.Product.Talla,
				Color:       item.Product.Color,
				Categoria:   item.Product.Categoria,
				Descripcion: item.Product.Descripcion,
				Disponible:  item.Product.Disponible,
				Precio50U:   item.Product.Precio50U,
			},
			Qty:       item.Qty,
			UnitPrice: unit,
			Subtotal:  subtotal,
		})
		detail.Total += subtotal
		detail.ItemCount += item.Qty
	}
	return detail
}
