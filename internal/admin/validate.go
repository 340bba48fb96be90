package admin

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"Storefront/internal/catalog"
)

// ValidationErrors maps a form field to what is wrong with it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// ValidateDraft applies the admin form rules to an entered product. The store
// accepts anything, so every admin write goes through here first.
func ValidateDraft(p catalog.Product) error {
	errs := ValidationErrors{}

	required := []struct{ field, value string }{
		{"name", p.Name},
		{"brand", p.Brand},
		{"description", p.Description},
		{"category", p.Category},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = strings.ToUpper(r.field[:1]) + r.field[1:] + " is required"
		}
	}

	if p.Price <= 0 {
		errs["price"] = "Price must be greater than 0"
	}
	if len(p.AvailableSizes) == 0 {
		errs["sizes"] = "Select at least one size"
	}

	if len(p.Images) == 0 {
		errs["images"] = "At least one image is required"
	}
	for i, img := range p.Images {
		switch {
		case strings.TrimSpace(img) == "":
			errs[fmt.Sprintf("image-%d", i)] = "Image URL is required"
		case !isAbsoluteURL(img):
			errs[fmt.Sprintf("image-%d", i)] = "Invalid URL format"
		}
	}

	for i, c := range p.Colors {
		if strings.TrimSpace(c) == "" {
			errs[fmt.Sprintf("color-%d", i)] = "Color is required"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// normalize orders sizes ascending the way the admin form presents them.
func normalize(p catalog.Product) catalog.Product {
	p = p.Clone()
	slices.Sort(p.AvailableSizes)
	return p
}
