package shop

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

// Catalog is the read side of the catalog store used by shopper routes.
type Catalog interface {
	List() []catalog.Product
	Featured() []catalog.Product
	NewArrivals() []catalog.Product
	Get(id string) (catalog.Product, error)
	CollectionBySlug(slug string) catalog.Collection
}

type Server struct {
	Catalog Catalog
	Log     *zap.Logger
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/featured", s.featured)
	r.Get("/products/new", s.newArrivals)
	r.Get("/products/{id}", s.get)
	r.Get("/products/{id}/related", s.related)
	r.Get("/facets", s.facets)
	r.Get("/collections/{slug}", s.collection)
}

type badParamError struct {
	param string
	cause string
}

func (e *badParamError) Error() string { return e.param + ": " + e.cause }

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, spec, err := s.parseQuery(r)
	if err != nil {
		var bp *badParamError
		if errors.As(err, &bp) {
			kit.WriteError(w, r, http.StatusBadRequest, "bad query", map[string]any{"param": bp.param, "cause": bp.cause})
			return
		}
		kit.WriteError(w, r, http.StatusBadRequest, "bad query", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, catalog.Filter(products, spec))
}

// parseQuery picks the base view from "collection" and builds the filter from
// the remaining parameters.
func (s *Server) parseQuery(r *http.Request) ([]catalog.Product, catalog.FilterSpec, error) {
	q := r.URL.Query()
	spec := catalog.FilterSpec{
		Category:   q.Get("category"),
		Brand:      q.Get("brand"),
		SearchTerm: q.Get("q"),
		Search:     catalog.ShopperSearch,
	}

	if v := strings.TrimSpace(q.Get("min_price")); v != "" {
		f, err := parsePrice(v)
		if err != nil {
			return nil, spec, &badParamError{param: "min_price", cause: err.Error()}
		}
		spec.PriceMin = f
	}
	if v := strings.TrimSpace(q.Get("max_price")); v != "" {
		f, err := parsePrice(v)
		if err != nil {
			return nil, spec, &badParamError{param: "max_price", cause: err.Error()}
		}
		spec.PriceMax = &f
	}

	var products []catalog.Product
	switch q.Get("collection") {
	case "":
		products = s.Catalog.List()
	case catalog.CollectionFeatured:
		products = s.Catalog.Featured()
	case catalog.CollectionNew:
		products = s.Catalog.NewArrivals()
	default:
		return nil, spec, &badParamError{param: "collection", cause: "must be featured or new"}
	}

	return products, spec, nil
}

func parsePrice(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a number")
	}
	if f < 0 {
		return 0, errors.New("must not be negative")
	}
	return f, nil
}

func (s *Server) featured(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.Featured())
}

func (s *Server) newArrivals(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.NewArrivals())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) related(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, catalog.Related(s.Catalog.List(), p))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (catalog.Product, bool) {
	id := chi.URLParam(r, "id")

	p, err := s.Catalog.Get(id)
	if errors.Is(err, catalog.ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return catalog.Product{}, false
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get product failed", zap.Error(err), zap.String("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return catalog.Product{}, false
	}
	return p, true
}

func (s *Server) facets(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, catalog.BuildFacets(s.Catalog.List()))
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.CollectionBySlug(chi.URLParam(r, "slug")))
}
