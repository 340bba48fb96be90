package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/auth"
	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

// Catalog is the part of the catalog store the admin surface drives.
type Catalog interface {
	List() []catalog.Product
	Get(id string) (catalog.Product, error)
	Add(draft catalog.Product) catalog.Product
	Update(p catalog.Product) error
	Remove(id string) error
}

type Server struct {
	Catalog Catalog
	Log     *zap.Logger
}

// Routes registers the product management routes. Callers put the admin
// guard in front of r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/admin/products", s.list)
	r.Post("/admin/products", s.create)
	r.Put("/admin/products/{id}", s.update)
	r.Delete("/admin/products/{id}", s.remove)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, catalog.Search(s.Catalog.List(), r.URL.Query().Get("q"), catalog.AdminSearch))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}

	p := s.Catalog.Add(draft)
	s.logWrite(r, "product created", p.ID)
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	p.ID = id

	if err := s.Catalog.Update(p); err != nil {
		s.writeStoreError(w, r, err, id)
		return
	}

	stored, err := s.Catalog.Get(id)
	if err != nil {
		s.writeStoreError(w, r, err, id)
		return
	}
	s.logWrite(r, "product updated", id)
	kit.WriteJSON(w, http.StatusOK, stored)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Catalog.Remove(id); err != nil {
		s.writeStoreError(w, r, err, id)
		return
	}
	s.logWrite(r, "product removed", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (catalog.Product, bool) {
	var p catalog.Product
	if err := kit.DecodeJSON(w, r, &p); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return catalog.Product{}, false
	}

	if err := ValidateDraft(p); err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid product", verrs)
			return catalog.Product{}, false
		}
		kit.WriteError(w, r, http.StatusUnprocessableEntity, err.Error(), nil)
		return catalog.Product{}, false
	}

	return normalize(p), true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, id string) {
	if errors.Is(err, catalog.ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	if s.Log != nil {
		s.Log.Error("catalog write failed", zap.Error(err), zap.String("id", id))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func (s *Server) logWrite(r *http.Request, msg, id string) {
	if s.Log == nil {
		return
	}
	admin, _ := auth.AdminFromContext(r.Context())
	s.Log.Info(msg, zap.String("id", id), zap.String("admin", admin))
}
