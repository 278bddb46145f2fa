package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/omanias/tienda-api/models"
	"github.com/omanias/tienda-api/services/cartstore"
)

const (
	ActionUpdate = "UPDATE"
	ActionNone   = "NONE"
)

// EditIntent is the structured action derived from a free-text edit request.
// Reasoning is diagnostic only and never applied.
type EditIntent struct {
	Action    string         `json:"action"`
	Updates   []IntentUpdate `json:"updates"`
	Reasoning string         `json:"reasoning"`
}

// IntentUpdate sets the target quantity for one product. Qty 0 removes it.
type IntentUpdate struct {
	ProductID uint `json:"product_id"`
	Qty       int  `json:"qty"`
}

// Interpreter turns free-text messages into structured intents via the
// generation service.
type Interpreter struct {
	gen Generator
}

func NewInterpreter(gen Generator) *Interpreter {
	return &Interpreter{gen: gen}
}

// InterpretEdit asks the model for an EditIntent against the current cart.
// Parse failures and NONE/empty intents come back as ErrAmbiguousIntent so
// the caller can ask for clarification and leave the cart untouched; a
// generation failure comes back as ErrIntentUnavailable.
func (i *Interpreter) InterpretEdit(ctx context.Context, detail *cartstore.CartDetail, catalog []models.Product, userText string) (*EditIntent, error) {
	reply, err := i.gen.Generate(ctx, buildEditPrompt(detail, catalog, userText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIntentUnavailable, err)
	}

	raw, ok := firstJSONObject(reply)
	if !ok {
		log.Printf("[LLM][EDIT] no JSON object in reply (%d bytes)", len(reply))
		return nil, models.ErrAmbiguousIntent
	}
	var intent EditIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		log.Printf("[LLM][EDIT] undecodable intent: %v", err)
		return nil, models.ErrAmbiguousIntent
	}
	if intent.Action != ActionUpdate || len(intent.Updates) == 0 {
		return nil, models.ErrAmbiguousIntent
	}
	return &intent, nil
}

func buildEditPrompt(detail *cartstore.CartDetail, catalog []models.Product, userText string) string {
	var b strings.Builder
	b.WriteString("Eres un asistente que edita carritos de compra.\n\n")

	b.WriteString("Carrito actual:\n")
	if len(detail.Items) == 0 {
		b.WriteString("(vacío)\n")
	}
	for _, line := range detail.Items {
		fmt.Fprintf(&b, "- ID: %d | %s %s %s | Cantidad: %d\n",
			line.ProductID, line.Product.TipoPrenda, line.Product.Color, line.Product.Talla, line.Qty)
	}

	if len(catalog) > 0 {
		b.WriteString("\nCatálogo disponible (puedes agregar estos productos):\n")
		for _, p := range catalog {
			fmt.Fprintf(&b, "- ID: %d | %s | %s | Precio: $%.2f\n", p.ID, p.Label(), p.Descripcion, p.Precio50U)
		}
	}

	fmt.Fprintf(&b, "\nEl cliente dice: \"%s\"\n\n", userText)
	b.WriteString(`Responde ÚNICAMENTE con un objeto JSON con esta forma exacta:
{"action": "UPDATE", "updates": [{"product_id": 1, "qty": 2}], "reasoning": "..."}

Reglas:
- "qty": 0 elimina el producto del carrito.
- "qty" > 0 fija la cantidad de ese producto.
- Usa solo IDs de producto que aparezcan arriba.
- Si no entiendes qué cambio quiere el cliente, responde {"action": "NONE", "updates": [], "reasoning": "..."}.`)
	return b.String()
}
