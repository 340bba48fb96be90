package catalog

import "strings"

const (
	// FacetPriceFloor keeps the price slider usable on a catalog of cheap products.
	FacetPriceFloor = 300

	relatedLimit = 4
)

// Facets lists the values a shopper can filter by.
type Facets struct {
	Categories []string   `json:"categories"`
	Brands     []string   `json:"brands"`
	PriceRange PriceRange `json:"priceRange"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// BuildFacets collects distinct categories and brands in first-seen order.
func BuildFacets(products []Product) Facets {
	f := Facets{
		Categories: distinct(products, func(p Product) string { return p.Category }),
		Brands:     distinct(products, func(p Product) string { return p.Brand }),
		PriceRange: PriceRange{Min: 0, Max: max(MaxPrice(products), FacetPriceFloor)},
	}
	return f
}

func distinct(products []Product, field func(Product) string) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		v := field(p)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Related returns up to four other products sharing the category or the brand of p.
func Related(products []Product, p Product) []Product {
	out := make([]Product, 0, relatedLimit)
	for _, c := range products {
		if len(out) == relatedLimit {
			break
		}
		if c.ID == p.ID {
			continue
		}
		if c.Category == p.Category || c.Brand == p.Brand {
			out = append(out, c)
		}
	}
	return out
}

const (
	CollectionFeatured = "featured"
	CollectionNew      = "new"
)

// Collection is a titled slice of the catalog addressed by a slug.
type Collection struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Products []Product `json:"products"`
}

// CollectionBySlug resolves "featured", "new", or a category name. Unlike
// Filter, category slugs match case-insensitively.
func (s *Store) CollectionBySlug(slug string) Collection {
	switch slug {
	case CollectionFeatured:
		return Collection{Slug: slug, Title: "Featured Sneakers", Products: s.Featured()}
	case CollectionNew:
		return Collection{Slug: slug, Title: "New Arrivals", Products: s.NewArrivals()}
	}

	products := s.where(func(p Product) bool { return strings.EqualFold(p.Category, slug) })
	title := slug
	if len(products) > 0 {
		title = products[0].Category
	}
	return Collection{Slug: slug, Title: title + " Sneakers", Products: products}
}
