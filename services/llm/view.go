package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/omanias/tienda-api/models"
	"github.com/omanias/tienda-api/services/cartstore"
)

// AnswerCartQuery answers a free-text question about the cart's current
// contents. Read-only: the prompt tells the model to orient the customer,
// never to apply changes.
func (i *Interpreter) AnswerCartQuery(ctx context.Context, detail *cartstore.CartDetail, query string) (string, error) {
	var b strings.Builder
	b.WriteString("Eres un asistente de ventas experto. El cliente tiene los siguientes productos en su carrito:\n\n")
	for _, line := range detail.Items {
		fmt.Fprintf(&b, "- ID: %d | %s | Talla: %s | Color: %s | Cantidad: %d | Precio unitario: $%.2f\n",
			line.ProductID, line.Product.TipoPrenda, line.Product.Talla, line.Product.Color, line.Qty, line.UnitPrice)
	}
	fmt.Fprintf(&b, "\n**Total del carrito: $%.2f**\n\n", detail.Total)
	fmt.Fprintf(&b, "El cliente pregunta: \"%s\"\n\n", query)
	b.WriteString("Responde sobre sus productos en el carrito de manera clara y útil. Si pregunta sobre modificaciones (cantidad, eliminación), oriéntalo sobre cómo hacerlo pero no realices cambios.")

	reply, err := i.gen.Generate(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrIntentUnavailable, err)
	}
	return reply, nil
}
