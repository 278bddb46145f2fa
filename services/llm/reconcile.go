package llm

import (
	"log"

	"github.com/omanias/tienda-api/services/cartstore"
)

// Reconcile merges an edit intent into the current cart lines and returns
// the complete new line list. It is pure: all quantity and availability
// validation happens later in the cart store's update.
//
// Per update, in intent order: qty <= 0 removes the product's line (no-op if
// absent); qty > 0 overwrites an existing line; qty > 0 for a product with
// no line adds it only when exists confirms the id, otherwise the update is
// dropped — the model hallucinated a product. Later updates for the same
// product override earlier ones.
func Reconcile(current []cartstore.CartItemInput, intent *EditIntent, exists func(productID uint) bool) []cartstore.CartItemInput {
	qtyByProduct := make(map[uint]int, len(current))
	order := make([]uint, 0, len(current))
	for _, line := range current {
		if _, seen := qtyByProduct[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		qtyByProduct[line.ProductID] = line.Qty
	}

	for _, u := range intent.Updates {
		if u.Qty <= 0 {
			delete(qtyByProduct, u.ProductID)
			continue
		}
		if _, ok := qtyByProduct[u.ProductID]; ok {
			qtyByProduct[u.ProductID] = u.Qty
			continue
		}
		if !exists(u.ProductID) {
			log.Printf("[LLM][RECONCILE] dropping update for unknown product %d", u.ProductID)
			continue
		}
		qtyByProduct[u.ProductID] = u.Qty
		order = append(order, u.ProductID)
	}

	out := make([]cartstore.CartItemInput, 0, len(qtyByProduct))
	emitted := make(map[uint]bool, len(qtyByProduct))
	for _, id := range order {
		qty, ok := qtyByProduct[id]
		if !ok || emitted[id] {
			continue
		}
		emitted[id] = true
		out = append(out, cartstore.CartItemInput{ProductID: id, Qty: qty})
	}
	return out
}
