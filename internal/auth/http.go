package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const DefaultSessionTTL = 12 * time.Hour

type Server struct {
	Log        *zap.Logger
	Gate       *Gate
	JWT        *TokenMaker
	SessionTTL time.Duration

	// Attempts is optional.
	Attempts *prometheus.CounterVec
}

// NewAttemptsCounter counts login attempts by result ("ok", "rejected", "bad_request").
func NewAttemptsCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_login_attempts_total",
			Help: "Admin login attempts by result",
		},
		[]string{"result"},
	)
	reg.MustRegister(c)
	return c
}

func (s *Server) Routes(r chi.Router) {
	r.Post("/admin/login", s.handleLogin)
	r.Get("/admin/session", s.handleSession)
}

// GuardedRoutes registers the routes that need an open session. Callers put
// RequireAdmin in front of r.
func (s *Server) GuardedRoutes(r chi.Router) {
	r.Post("/admin/logout", s.handleLogout)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		s.countAttempt("bad_request")
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if req.Username == "" || req.Password == "" {
		s.countAttempt("bad_request")
		kit.WriteError(w, r, http.StatusBadRequest, "username/password required", nil)
		return
	}

	gen, ok := s.Gate.Login(req.Username, req.Password)
	if !ok {
		s.countAttempt("rejected")
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	s.countAttempt("ok")

	tok, exp, err := s.JWT.New(req.Username, gen, s.ttl())
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.Log.Info("admin session opened", zap.Uint64("generation", gen))
	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok, ExpiresAt: exp})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Gate.Logout()
	admin, _ := AdminFromContext(r.Context())
	s.Log.Info("admin session closed", zap.String("admin", admin))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": s.Gate.IsAuthenticated(),
	})
}

func (s *Server) ttl() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func (s *Server) countAttempt(result string) {
	if s.Attempts != nil {
		s.Attempts.WithLabelValues(result).Inc()
	}
}
