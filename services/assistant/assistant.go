package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/omanias/tienda-api/models"
	"github.com/omanias/tienda-api/services/cartstore"
	"github.com/omanias/tienda-api/services/llm"
	"github.com/omanias/tienda-api/services/session"
)

const (
	errorReply       = "Disculpa, ocurrió un error al procesar tu mensaje. Intenta de nuevo en un momento."
	unavailableReply = "Disculpa, el asistente no está disponible en este momento. Intenta de nuevo más tarde."
	emptyReply       = "No tengo respuesta 😅"
	clarifyNoCart    = "No sé a qué carrito te refieres. ¿Puedes indicarme el número de carrito, o crear uno nuevo?"
	clarifyEdit      = "No entendí qué cambio quieres hacer en tu carrito. ¿Puedes indicarme el producto y la cantidad?"

	// maxReplyLen keeps outbound replies under Twilio's WhatsApp segment
	// limit (1600 characters).
	maxReplyLen = 1500

	defaultQty = 1
)

var purchaseKeywords = []string{
	"comprar", "quiero", "necesito", "voy a", "dame", "llevo", "agregar", "añadir", "llevar",
}

// CartStore is the slice of the cart store the assistant needs.
type CartStore interface {
	CreateCart(ctx context.Context, items []cartstore.CartItemInput) (*cartstore.CartDetail, error)
	UpdateCart(ctx context.Context, cartID uint, items []cartstore.CartItemInput) (*cartstore.CartDetail, error)
	GetCartDetail(ctx context.Context, cartID uint) (*cartstore.CartDetail, error)
}

// Catalog is the read side of the product catalog.
type Catalog interface {
	FindAll(ctx context.Context, q string) ([]models.Product, error)
}

// Service is the conversational front of the shop: it classifies inbound
// messages, runs the matching flow and always produces a user-facing reply.
// No internal error ever escapes to the messaging transport.
type Service struct {
	gen      llm.Generator
	interp   *llm.Interpreter
	catalog  Catalog
	carts    CartStore
	sessions session.Store
}

func New(gen llm.Generator, catalog Catalog, carts CartStore, sessions session.Store) *Service {
	return &Service{
		gen:      gen,
		interp:   llm.NewInterpreter(gen),
		catalog:  catalog,
		carts:    carts,
		sessions: sessions,
	}
}

// Chat forwards a raw prompt to the generation service.
func (s *Service) Chat(ctx context.Context, prompt string) (string, error) {
	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrIntentUnavailable, err)
	}
	return reply, nil
}

// QueryProducts runs the catalog query-and-recommend flow.
func (s *Service) QueryProducts(ctx context.Context, query string) (*llm.QueryResult, error) {
	products, err := s.catalog.FindAll(ctx, "")
	if err != nil {
		return nil, err
	}
	return s.interp.QueryProducts(ctx, products, query)
}

// Purchase runs the catalog query and, when the text carries a purchase verb
// and products were recommended, creates a cart with qty units of each.
// Errors are folded into the reply text; the second return is the created
// cart, nil when none was created.
func (s *Service) Purchase(ctx context.Context, query string, qty int) (string, *cartstore.CartDetail) {
	if qty <= 0 {
		qty = defaultQty
	}
	result, err := s.QueryProducts(ctx, query)
	if err != nil {
		log.Printf("[ASSISTANT][PURCHASE] query failed: %v", err)
		if errors.Is(err, models.ErrIntentUnavailable) {
			return unavailableReply, nil
		}
		return errorReply, nil
	}
	if !hasPurchaseIntent(query) || len(result.Products) == 0 {
		return result.Response, nil
	}

	items := make([]cartstore.CartItemInput, 0, len(result.Products))
	for _, p := range result.Products {
		items = append(items, cartstore.CartItemInput{ProductID: p.ID, Qty: qty})
	}
	detail, err := s.carts.CreateCart(ctx, items)
	if err != nil {
		if models.IsValidation(err) || models.IsNotFound(err) {
			return "Hubo un error al crear tu carrito: " + err.Error(), nil
		}
		log.Printf("[ASSISTANT][PURCHASE] create failed: %v", err)
		return errorReply, nil
	}
	return formatCreatedCart(result.Products, qty, detail), detail
}

// CartQuery answers a question about an existing cart without modifying it.
func (s *Service) CartQuery(ctx context.Context, cartID uint, query string) (string, *cartstore.CartDetail) {
	detail, err := s.carts.GetCartDetail(ctx, cartID)
	if err != nil {
		if models.IsNotFound(err) {
			return "Carrito no encontrado.", nil
		}
		log.Printf("[ASSISTANT][VIEW] fetch failed: %v", err)
		return errorReply, nil
	}
	if len(detail.Items) == 0 {
		return "Tu carrito está vacío. ¿Qué productos te gustaría agregar?", detail
	}
	answer, err := s.interp.AnswerCartQuery(ctx, detail, query)
	if err != nil {
		log.Printf("[ASSISTANT][VIEW] answer failed: %v", err)
		return formatCartDetail(detail), detail
	}
	return answer, detail
}

// EditCart interprets a free-text edit request against the cart, reconciles
// it with the live catalog and applies the update. An ambiguous intent
// leaves the cart untouched and asks for clarification.
func (s *Service) EditCart(ctx context.Context, cartID uint, query string) (string, *cartstore.CartDetail) {
	detail, err := s.carts.GetCartDetail(ctx, cartID)
	if err != nil {
		if models.IsNotFound(err) {
			return "Carrito no encontrado.", nil
		}
		log.Printf("[ASSISTANT][EDIT] fetch failed: %v", err)
		return errorReply, nil
	}
	products, err := s.catalog.FindAll(ctx, "")
	if err != nil {
		log.Printf("[ASSISTANT][EDIT] catalog load failed: %v", err)
		return errorReply, nil
	}

	intent, err := s.interp.InterpretEdit(ctx, detail, products, query)
	switch {
	case errors.Is(err, models.ErrAmbiguousIntent):
		return clarifyEdit, nil
	case errors.Is(err, models.ErrIntentUnavailable):
		return unavailableReply, nil
	case err != nil:
		log.Printf("[ASSISTANT][EDIT] interpret failed: %v", err)
		return errorReply, nil
	}

	known := make(map[uint]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}
	current := make([]cartstore.CartItemInput, 0, len(detail.Items))
	for _, line := range detail.Items {
		current = append(current, cartstore.CartItemInput{ProductID: line.ProductID, Qty: line.Qty})
	}
	newItems := llm.Reconcile(current, intent, func(id uint) bool { return known[id] })

	updated, err := s.carts.UpdateCart(ctx, cartID, newItems)
	if err != nil {
		if models.IsValidation(err) {
			return "No pude aplicar el cambio: " + err.Error(), nil
		}
		if models.IsNotFound(err) {
			return "Carrito no encontrado.", nil
		}
		log.Printf("[ASSISTANT][EDIT] update failed: %v", err)
		return errorReply, nil
	}
	return "✅ ¡Carrito actualizado correctamente!\n\n" + formatCartDetail(updated), updated
}

// Handle processes one inbound conversational message end to end: session
// lookup, classification, dispatch, history bookkeeping, reply hygiene.
func (s *Service) Handle(ctx context.Context, userID, text string) (reply string, cart *cartstore.CartDetail) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ASSISTANT] panic handling message from %s: %v", userID, r)
			reply, cart = errorReply, nil
		}
	}()

	sess := s.sessions.GetOrCreate(userID)
	s.sessions.AppendHistory(userID, session.RoleUser, text)
	reply, cart = s.dispatch(ctx, sess, userID, text)
	reply = sanitizeReply(reply)
	s.sessions.AppendHistory(userID, session.RoleAssistant, reply)
	return reply, cart
}

func (s *Service) dispatch(ctx context.Context, sess session.Session, userID, text string) (string, *cartstore.CartDetail) {
	cls := s.interp.ClassifyMessage(ctx, toTurns(sess.History), sess.ActiveCartID, text)

	cartID := cls.CartID
	if cartID == 0 && (cls.Intent == llm.IntentModifyCart || cls.Intent == llm.IntentViewCart) {
		cartID = sess.ActiveCartID
	}

	switch cls.Intent {
	case llm.IntentCreateCart:
		reply, cart := s.Purchase(ctx, text, defaultQty)
		if cart != nil {
			s.sessions.SetActiveCart(userID, cart.ID)
		}
		return reply, cart

	case llm.IntentModifyCart:
		if cartID == 0 {
			return clarifyNoCart, nil
		}
		reply, cart := s.EditCart(ctx, cartID, text)
		if cart != nil {
			s.sessions.SetActiveCart(userID, cartID)
		}
		return reply, cart

	case llm.IntentViewCart:
		if cartID == 0 {
			return clarifyNoCart, nil
		}
		reply, cart := s.CartQuery(ctx, cartID, text)
		if cart != nil {
			s.sessions.SetActiveCart(userID, cartID)
		}
		return reply, cart

	default: // QUERY_PRODUCTS, GENERAL_QUESTION, GREETING
		result, err := s.QueryProducts(ctx, text)
		if err != nil {
			log.Printf("[ASSISTANT][QUERY] failed: %v", err)
			if errors.Is(err, models.ErrIntentUnavailable) {
				return unavailableReply, nil
			}
			return errorReply, nil
		}
		return result.Response, nil
	}
}

func toTurns(history []session.Entry) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history))
	for _, e := range history {
		turns = append(turns, llm.Turn{Role: e.Role, Text: e.Text})
	}
	return turns
}

func hasPurchaseIntent(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range purchaseKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// sanitizeReply guarantees the transport never sees a blank or overlong
// reply.
func sanitizeReply(reply string) string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return emptyReply
	}
	if runes := []rune(reply); len(runes) > maxReplyLen {
		return string(runes[:maxReplyLen]) + "…"
	}
	return reply
}

func formatCreatedCart(products []models.Product, qty int, detail *cartstore.CartDetail) string {
	var b strings.Builder
	b.WriteString("✅ ¡Carrito creado exitosamente!\n\n")
	fmt.Fprintf(&b, "He agregado %d producto(s) a tu carrito (número %d):\n", len(products), detail.ID)
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (%s, Talla: %s) - Precio: $%.2f x %d\n", p.TipoPrenda, p.Color, p.Talla, p.PriceForQuantity(qty), qty)
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n\n¿Deseas proceder al pago o necesitas hacer cambios en tu carrito?", detail.Total)
	return b.String()
}

func formatCartDetail(detail *cartstore.CartDetail) string {
	if len(detail.Items) == 0 {
		return fmt.Sprintf("Tu carrito (número %d) está vacío.", detail.ID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Tu carrito (número %d) contiene:\n", detail.ID)
	for _, line := range detail.Items {
		fmt.Fprintf(&b, "- %s (%s) - Cantidad: %d - $%.2f\n",
			line.Product.TipoPrenda, line.Product.Color, line.Qty, line.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f", detail.Total)
	return b.String()
}
