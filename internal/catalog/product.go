package catalog

// Product is a sneaker listing. JSON and YAML field names follow the storefront dataset.
type Product struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Brand          string    `json:"brand" yaml:"brand"`
	Price          float64   `json:"price" yaml:"price"`
	Description    string    `json:"description" yaml:"description"`
	Images         []string  `json:"images" yaml:"images"`
	Category       string    `json:"category" yaml:"category"`
	Featured       bool      `json:"featured" yaml:"featured"`
	NewArrival     bool      `json:"newArrival" yaml:"newArrival"`
	AvailableSizes []float64 `json:"availableSizes" yaml:"availableSizes"`
	Colors         []string  `json:"colors" yaml:"colors"`
	CreatedAt      string    `json:"createdAt" yaml:"createdAt"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (p Product) Clone() Product {
	c := p
	c.Images = cloneSlice(p.Images)
	c.AvailableSizes = cloneSlice(p.AvailableSizes)
	c.Colors = cloneSlice(p.Colors)
	return c
}

// HasSize reports whether size is among the available sizes.
func (p Product) HasSize(size float64) bool {
	for _, s := range p.AvailableSizes {
		if s == size {
			return true
		}
	}
	return false
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneAll(in []Product) []Product {
	out := make([]Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
