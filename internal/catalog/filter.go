package catalog

import "strings"

// SearchVariant picks which text fields a free-text search term is matched against.
type SearchVariant int

const (
	// ShopperSearch matches name, brand and description.
	ShopperSearch SearchVariant = iota
	// AdminSearch matches name, brand and category.
	AdminSearch
)

// FilterSpec is a transient query over a product list. Zero values mean "no constraint";
// a nil PriceMax means "up to the most expensive product of the input".
type FilterSpec struct {
	Category   string
	Brand      string
	PriceMin   float64
	PriceMax   *float64
	SearchTerm string
	Search     SearchVariant
}

// Filter returns the products satisfying every criterion of spec, in input order.
// Category and brand match exactly (case-sensitive); the search term matches
// case-insensitively. The input slice is never modified.
func Filter(products []Product, spec FilterSpec) []Product {
	out := make([]Product, 0, len(products))
	if len(products) == 0 {
		return out
	}

	priceMax := MaxPrice(products)
	if spec.PriceMax != nil {
		priceMax = *spec.PriceMax
	}
	term := strings.ToLower(strings.TrimSpace(spec.SearchTerm))

	for _, p := range products {
		if spec.Category != "" && p.Category != spec.Category {
			continue
		}
		if spec.Brand != "" && p.Brand != spec.Brand {
			continue
		}
		if p.Price < spec.PriceMin || p.Price > priceMax {
			continue
		}
		if term != "" && !matches(p, term, spec.Search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p Product, term string, variant SearchVariant) bool {
	fields := [3]string{p.Name, p.Brand, p.Description}
	if variant == AdminSearch {
		fields[2] = p.Category
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Search keeps the products whose text fields contain term, ignoring case, with
// no other constraint. A blank term keeps everything.
func Search(products []Product, term string, variant SearchVariant) []Product {
	out := make([]Product, 0, len(products))
	term = strings.ToLower(strings.TrimSpace(term))
	for _, p := range products {
		if term == "" || matches(p, term, variant) {
			out = append(out, p)
		}
	}
	return out
}

// MaxPrice is the highest price in products, 0 for an empty list.
func MaxPrice(products []Product) float64 {
	var m float64
	for _, p := range products {
		if p.Price > m {
			m = p.Price
		}
	}
	return m
}
