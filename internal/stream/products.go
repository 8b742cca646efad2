package stream

import (
	"encoding/json"
	"strconv"

	"github.com/aiprlassist/gavchat/internal/adk"
)

// Product is a structured product extracted from a tool result, rendered as
// a carousel entry by the presentation layer.
type Product struct {
	Name        string
	Price       float64
	Description string
	ImageURL    string
	URL         string
}

// extractProducts pulls products out of the turn's function responses.
//
// A response payload may expose a "products" array or a singular "product"
// object. Entries missing either a name or a price are dropped: partial
// records render as broken cards.
func extractProducts(responses []*adk.FunctionResponse) []Product {
	var products []Product
	for _, resp := range responses {
		if resp == nil || resp.Response == nil {
			continue
		}
		if list, ok := resp.Response["products"].([]any); ok {
			for _, entry := range list {
				if m, ok := entry.(map[string]any); ok {
					if p, ok := toProduct(m); ok {
						products = append(products, p)
					}
				}
			}
		}
		if m, ok := resp.Response["product"].(map[string]any); ok {
			if p, ok := toProduct(m); ok {
				products = append(products, p)
			}
		}
	}
	return products
}

// toProduct converts one raw payload entry, requiring both name and price.
func toProduct(m map[string]any) (Product, bool) {
	name, _ := m["name"].(string)
	price, priceOK := toPrice(m["price"])
	if name == "" || !priceOK {
		return Product{}, false
	}

	p := Product{Name: name, Price: price}
	p.Description, _ = m["description"].(string)
	if img, ok := m["image_url"].(string); ok {
		p.ImageURL = img
	} else if img, ok := m["image"].(string); ok {
		p.ImageURL = img
	}
	p.URL, _ = m["url"].(string)
	return p, true
}

// toPrice accepts the numeric shapes a JSON payload can carry a price in.
func toPrice(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
