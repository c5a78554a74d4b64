package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/logger"
	healthuc "github.com/kailas-cloud/omnisearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/omnisearch/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search HTTP API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyInput, http.StatusBadRequest, ErrorResponseCodeEmptyInput),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrPending, http.StatusConflict, ErrorResponseCodePending),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorResponseCodeSessionNotFound),
		sentinelHandler(domain.ErrUnknownNetwork, http.StatusBadRequest, ErrorResponseCodeUnknownNetwork),
		sentinelHandler(domain.ErrUnknownCategory, http.StatusBadRequest, ErrorResponseCodeUnknownCategory),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusBadGateway, ErrorResponseCodeBackendUnavailable),
	}
	return s
}

// HandlerWithRouter mounts every route of s on r and returns it.
func HandlerWithRouter(s *Server, r chi.Router) http.Handler {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, domain.ErrNotFound.Error())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1/search", func(r chi.Router) {
		r.Get("/preview", s.Preview)
		r.Post("/commit", s.Commit)
		r.Get("/go", s.Go)
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Put("/input", s.SetInput)
			r.Post("/submit", s.Submit)
		})
	})
	return r
}

// Preview handles GET /v1/search/preview.
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	var q, network string
	if err := bindQuery(r, "q", &q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := bindQuery(r, "network", &network); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items, err := s.search.Preview(r.Context(), network, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if network == "" {
		network = s.search.DefaultNetwork()
	}
	writeJSON(w, http.StatusOK, PreviewResponse{Network: network, Items: previewItemsToAPI(items)})
}

// Commit handles POST /v1/search/commit.
func (s *Server) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	target, err := s.search.Commit(r.Context(), req.Network, req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targetToAPI(target))
}

// Go handles GET /v1/search/go: commit, then redirect to the chosen route.
func (s *Server) Go(w http.ResponseWriter, r *http.Request) {
	var q, network string
	if err := bindQuery(r, "q", &q); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := bindQuery(r, "network", &network); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	target, err := s.search.Commit(r.Context(), network, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	http.Redirect(w, r, target.Path, http.StatusSeeOther)
}

// CreateSession handles POST /v1/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
	}

	sess, err := s.search.CreateSession(r.Context(), req.Network)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, snapshotToAPI(sess.Snapshot()))
}

// GetSession handles GET /v1/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.search.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToAPI(sess.Snapshot()))
}

// DeleteSession handles DELETE /v1/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.search.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetInput handles PUT /v1/sessions/{id}/input. With ?wait=true it blocks until the
// preview batch settles or the client goes away.
func (s *Server) SetInput(w http.ResponseWriter, r *http.Request) {
	var wait bool
	if err := bindQuery(r, "wait", &wait); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	var req InputRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if req.Value == nil {
		s.handleDomainError(w, r, errors.Join(domain.ErrInvalidInput, errors.New("value is required")))
		return
	}

	sess, err := s.search.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	batch := sess.TextChanged(r.Context(), *req.Value)
	status := &BatchStatus{Revision: batch.Revision()}
	if wait {
		select {
		case <-batch.Done():
		case <-r.Context().Done():
		}
	}
	select {
	case <-batch.Done():
		status.Settled = true
		status.Committed = batch.Committed()
	default:
	}

	resp := snapshotToAPI(sess.Snapshot())
	resp.Batch = status
	writeJSON(w, http.StatusOK, resp)
}

// Submit handles POST /v1/sessions/{id}/submit.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.search.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	target, err := sess.Submit(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targetToAPI(target))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindQuery binds an optional form-style query parameter into dest.
func bindQuery(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}

func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyInput,
		domain.ErrInvalidInput,
		domain.ErrPending,
		domain.ErrSessionNotFound,
		domain.ErrUnknownNetwork,
		domain.ErrUnknownCategory,
		domain.ErrBackendUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	reqLogger := logger.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			reqLogger.Debug("Request rejected", zap.Error(err))
			return
		}
	}
	reqLogger.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, msg)
}
