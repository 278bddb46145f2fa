package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/omanias/tienda-api/models"
)

const maxFallbackResults = 5

var productIDsRe = regexp.MustCompile(`PRODUCT_IDS:\s*\[([^\]]*)\]`)

// QueryResult is a recommendation reply: the display text with the marker
// line stripped, plus the resolved products.
type QueryResult struct {
	Response string
	Products []models.Product
}

// QueryProducts answers a catalog question. The model sees the full catalog
// and is asked to end its reply with "PRODUCT_IDS: [...]"; those ids,
// intersected with the catalog, become the recommendation set. When the
// marker is missing the query text is substring-matched against the catalog
// instead, capped at 5 results.
func (i *Interpreter) QueryProducts(ctx context.Context, products []models.Product, query string) (*QueryResult, error) {
	if len(products) == 0 {
		return &QueryResult{
			Response: "Disculpa, en este momento no tengo productos disponibles en el catálogo.",
		}, nil
	}

	reply, err := i.gen.Generate(ctx, buildQueryPrompt(products, query))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIntentUnavailable, err)
	}

	recommended, found := parseRecommendedIDs(reply, products)
	if !found {
		recommended = substringMatch(products, query)
	}
	cleaned := strings.TrimSpace(productIDsRe.ReplaceAllString(reply, ""))
	return &QueryResult{Response: cleaned, Products: recommended}, nil
}

func buildQueryPrompt(products []models.Product, query string) string {
	var b strings.Builder
	b.WriteString("Eres un asistente de ventas BREVE. Aquí está el catálogo de productos disponibles:\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "ID: %d | Tipo: %s | Talla: %s | Color: %s | Categoria: %s | Descripcion: %s | Precio 50u: $%.2f | Disponible: %t\n",
			p.ID, p.TipoPrenda, p.Talla, p.Color, p.Categoria, p.Descripcion, p.Precio50U, p.Disponible)
	}
	fmt.Fprintf(&b, "\nEl cliente pregunta: \"%s\"\n\n", query)
	b.WriteString(`Por favor (MÁXIMO 100 palabras, SÉ CONCISO):
1. Recomienda productos relevantes del catálogo
2. Una breve explicación (1-2 líneas)
3. AL FINAL, incluye esta línea exactamente: "PRODUCT_IDS: [id1, id2, id3, ...]" con los IDs de los productos recomendados.`)
	return b.String()
}

// parseRecommendedIDs extracts the marker line's ids and intersects them with
// the known catalog. The second return reports whether the marker was present
// at all, so an empty recommendation is distinguishable from a missing one.
func parseRecommendedIDs(reply string, products []models.Product) ([]models.Product, bool) {
	m := productIDsRe.FindStringSubmatch(reply)
	if m == nil {
		return nil, false
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	var out []models.Product
	for _, tok := range strings.Split(m[1], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			continue
		}
		if p, ok := byID[uint(id)]; ok {
			out = append(out, p)
		}
	}
	return out, true
}

func substringMatch(products []models.Product, query string) []models.Product {
	q := strings.ToLower(query)
	var out []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.TipoPrenda), q) ||
			strings.Contains(strings.ToLower(p.Color), q) ||
			strings.Contains(strings.ToLower(p.Categoria), q) {
			out = append(out, p)
			if len(out) == maxFallbackResults {
				break
			}
		}
	}
	return out
}
