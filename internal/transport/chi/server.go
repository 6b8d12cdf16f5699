package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
	healthuc "github.com/kailas-cloud/newsrank/internal/usecase/health"
	lookupuc "github.com/kailas-cloud/newsrank/internal/usecase/lookup"
)

const maxBodyBytes = 1 << 20

// Ranker ranks documents for one client.
type Ranker interface {
	Rank(ctx context.Context, req *domrank.Request) (domrank.Response, error)
}

// Lookup serves scoped point reads.
type Lookup interface {
	Document(ctx context.Context, scope access.Scope, guid string) (document.Document, error)
	Holdings(ctx context.Context, scope access.Scope, clientGUID string) ([]lookupuc.Holding, error)
}

// HealthChecker aggregates dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP adapter over the ranking and lookup use cases.
type Server struct {
	ranking       Ranker
	lookup        Lookup
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(ranking Ranker, lookup Lookup, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		ranking: ranking,
		lookup:  lookup,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		configurationErrorHandler,
		sentinelHandler(domain.ErrProfileNotFound, http.StatusNotFound, codeProfileNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrCorpusUnavailable, http.StatusServiceUnavailable, codeCorpusUnavailable),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, codeRequestTimeout),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/rank", s.Rank)
	r.Get("/v1/documents/{guid}", s.GetDocument)
	r.Get("/v1/clients/{guid}/holdings", s.GetHoldings)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Rank handles POST /v1/rank.
func (s *Server) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rankReq, err := domrank.NewRequest(rankParamsFromRequest(req, ScopeFromContext(r.Context())))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.ranking.Rank(r.Context(), &rankReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rankResponseFromDomain(resp))
}

// GetDocument handles GET /v1/documents/{guid}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.lookup.Document(r.Context(), ScopeFromContext(r.Context()), chi.URLParam(r, "guid"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// GetHoldings handles GET /v1/clients/{guid}/holdings.
func (s *Server) GetHoldings(w http.ResponseWriter, r *http.Request) {
	clientGUID := chi.URLParam(r, "guid")
	holdings, err := s.lookup.Holdings(r.Context(), ScopeFromContext(r.Context()), clientGUID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HoldingsResponse{ClientGUID: clientGUID, Holdings: holdings})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProfileNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrCorpusUnavailable,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// configurationErrorHandler reports the offending field; the reason only echoes caller input.
func configurationErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    codeValidationFailed,
		Message: ce.Field + " " + ce.Reason,
		Field:   ce.Field,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
