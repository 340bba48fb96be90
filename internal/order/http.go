package order

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

// DefaultURL is where shoppers are sent to place an order.
const DefaultURL = "https://instagram.com/sneakerparadise"

// Catalog looks products up by id.
type Catalog interface {
	Get(id string) (catalog.Product, error)
}

// Server hands shoppers off to the external order channel. Orders are not
// recorded here.
type Server struct {
	Catalog Catalog
	URL     string
	Log     *zap.Logger

	// Requests is optional.
	Requests *prometheus.CounterVec
}

const (
	resultRedirected = "redirected"
	resultNotFound   = "not_found"
	resultBadSize    = "bad_size"
	resultError      = "error"
)

// NewRequestCounter counts order hand-offs by result ("redirected", "not_found",
// "bad_size", "error").
func NewRequestCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_requests_total",
			Help: "Order hand-off requests by result",
		},
		[]string{"result"},
	)
	reg.MustRegister(c)
	return c
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/products/{id}/order", s.order)
}

var (
	errSizeRequired    = errors.New("size required")
	errBadSize         = errors.New("size must be a number")
	errSizeUnavailable = errors.New("size not available")
)

func (s *Server) order(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.Catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.count(resultNotFound)
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
			return
		}
		if s.Log != nil {
			s.Log.Error("get product failed", zap.Error(err), zap.String("id", id))
		}
		s.count(resultError)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	size, err := selectedSize(r, p)
	if err != nil {
		s.count(resultBadSize)
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), map[string]any{"available_sizes": p.AvailableSizes})
		return
	}

	s.count(resultRedirected)
	if s.Log != nil {
		s.Log.Info("order redirect", zap.String("id", p.ID), zap.Float64("size", size))
	}
	http.Redirect(w, r, s.target(), http.StatusSeeOther)
}

// selectedSize mirrors the product page: ordering needs a size the product is offered in.
func selectedSize(r *http.Request, p catalog.Product) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("size"))
	if raw == "" {
		return 0, errSizeRequired
	}
	size, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errBadSize
	}
	if !p.HasSize(size) {
		return 0, errSizeUnavailable
	}
	return size, nil
}

func (s *Server) count(result string) {
	if s.Requests != nil {
		s.Requests.WithLabelValues(result).Inc()
	}
}

func (s *Server) target() string {
	if s.URL != "" {
		return s.URL
	}
	return DefaultURL
}
