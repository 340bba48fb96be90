package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sample_products.json
var sampleProducts []byte

var ErrUnsupportedDataset = errors.New("unsupported dataset format")

// SampleProducts returns the built-in storefront dataset.
func SampleProducts() []Product {
	var out []Product
	if err := json.Unmarshal(sampleProducts, &out); err != nil {
		panic(fmt.Sprintf("catalog: embedded dataset: %v", err))
	}
	return out
}

// LoadDataset reads the products to seed the store with. An empty path yields
// the built-in dataset; otherwise the extension selects JSON or YAML.
func LoadDataset(path string) ([]Product, error) {
	if path == "" {
		return SampleProducts(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	products, err := decodeDataset(filepath.Ext(path), raw)
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return products, nil
}

func decodeDataset(ext string, raw []byte) ([]Product, error) {
	var out []Product

	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDataset, ext)
	}

	return out, nil
}

// CheckDataset reports structural problems a seed file should not have:
// missing or duplicate ids, negative prices and products without images.
func CheckDataset(products []Product) error {
	var errs []error
	seen := make(map[string]struct{}, len(products))

	for i, p := range products {
		switch {
		case p.ID == "":
			errs = append(errs, fmt.Errorf("product #%d: missing id", i))
		default:
			if _, dup := seen[p.ID]; dup {
				errs = append(errs, fmt.Errorf("product #%d: duplicate id %q", i, p.ID))
			}
			seen[p.ID] = struct{}{}
		}
		if p.Price < 0 {
			errs = append(errs, fmt.Errorf("product %q: negative price %v", p.ID, p.Price))
		}
		if len(p.Images) == 0 {
			errs = append(errs, fmt.Errorf("product %q: no images", p.ID))
		}
	}

	return errors.Join(errs...)
}
