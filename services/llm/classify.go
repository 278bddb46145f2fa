package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

const (
	IntentQueryProducts   = "QUERY_PRODUCTS"
	IntentCreateCart      = "CREATE_CART"
	IntentModifyCart      = "MODIFY_CART"
	IntentViewCart        = "VIEW_CART"
	IntentGeneralQuestion = "GENERAL_QUESTION"
	IntentGreeting        = "GREETING"
)

// Turn is one prior message of the conversation, passed for continuity.
type Turn struct {
	Role string
	Text string
}

// Classification is the high-level routing decision for one inbound message.
// CartID is 0 when the message names no cart.
type Classification struct {
	Intent string `json:"intent"`
	CartID uint   `json:"cart_id"`
}

var knownIntents = map[string]bool{
	IntentQueryProducts:   true,
	IntentCreateCart:      true,
	IntentModifyCart:      true,
	IntentViewCart:        true,
	IntentGeneralQuestion: true,
	IntentGreeting:        true,
}

// ClassifyMessage routes one message to a handler intent. Classification is
// best-effort: any generation or parse failure falls back to
// GENERAL_QUESTION rather than blocking the conversation.
func (i *Interpreter) ClassifyMessage(ctx context.Context, history []Turn, activeCartID uint, text string) Classification {
	reply, err := i.gen.Generate(ctx, buildClassifyPrompt(history, activeCartID, text))
	if err != nil {
		log.Printf("[LLM][CLASSIFY] generation failed: %v", err)
		return Classification{Intent: IntentGeneralQuestion}
	}
	raw, ok := firstJSONObject(reply)
	if !ok {
		log.Printf("[LLM][CLASSIFY] no JSON object in reply")
		return Classification{Intent: IntentGeneralQuestion}
	}
	var c Classification
	if err := json.Unmarshal([]byte(raw), &c); err != nil || !knownIntents[c.Intent] {
		log.Printf("[LLM][CLASSIFY] unusable classification %q", raw)
		return Classification{Intent: IntentGeneralQuestion}
	}
	return c
}

func buildClassifyPrompt(history []Turn, activeCartID uint, text string) string {
	var b strings.Builder
	b.WriteString("Clasifica la intención del último mensaje de un cliente de una tienda de ropa al por mayor.\n\n")

	if len(history) > 0 {
		b.WriteString("Conversación reciente:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Text)
		}
		b.WriteString("\n")
	}
	if activeCartID != 0 {
		fmt.Fprintf(&b, "El cliente tiene un carrito activo con ID %d.\n\n", activeCartID)
	}

	fmt.Fprintf(&b, "Último mensaje: \"%s\"\n\n", text)
	b.WriteString(`Responde ÚNICAMENTE con un objeto JSON:
{"intent": "...", "cart_id": 0}

"intent" debe ser uno de: QUERY_PRODUCTS, CREATE_CART, MODIFY_CART, VIEW_CART, GENERAL_QUESTION, GREETING.
"cart_id" es el número de carrito si el mensaje menciona uno explícitamente; si no, 0.`)
	return b.String()
}
