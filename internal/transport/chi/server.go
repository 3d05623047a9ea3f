package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ccollie/bullmq/internal/domain"
	"github.com/ccollie/bullmq/internal/domain/job"
	"github.com/ccollie/bullmq/internal/domain/state"
	"github.com/ccollie/bullmq/internal/domain/value"
	logpkg "github.com/ccollie/bullmq/internal/logger"
	filteruc "github.com/ccollie/bullmq/internal/usecase/filter"
	healthuc "github.com/ccollie/bullmq/internal/usecase/health"
)

// errorCode is the machine-readable error discriminator in responses.
type errorCode string

const (
	codeBadRequest    errorCode = "bad_request"
	codeBadQuery      errorCode = "invalid_query"
	codeBadCursor     errorCode = "invalid_cursor"
	codeUnknownState  errorCode = "unknown_state"
	codeInternalError errorCode = "internal_error"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// filterRequest is the POST body of the filter endpoint. Count is a
// pointer so an omitted count can fall back to the configured default
// while an explicit zero asks for the unbounded page.
type filterRequest struct {
	Query  json.RawMessage `json:"query"`
	State  string          `json:"state"`
	Cursor int             `json:"cursor"`
	Count  *int            `json:"count"`
}

// filterResponse is the filter result envelope. Jobs are rendered as
// their queryable document views, virtuals included.
type filterResponse struct {
	Jobs   []json.RawMessage `json:"jobs"`
	Cursor int               `json:"cursor"`
	Total  int               `json:"total"`
	Count  int               `json:"count"`
	Errors []string          `json:"errors,omitempty"`
}

// Server is the HTTP boundary over the filter engine.
type Server struct {
	filter        *filteruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	defaultCount  int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(filter *filteruc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		filter:       filter,
		health:       health,
		logger:       logger,
		defaultCount: 20,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrBadQuery, http.StatusBadRequest, codeBadQuery),
		sentinelHandler(domain.ErrBadCursor, http.StatusBadRequest, codeBadCursor),
		sentinelHandler(domain.ErrUnknownState, http.StatusBadRequest, codeUnknownState),
	}
	return s
}

// WithDefaultCount sets the page size applied when a request omits count.
func (s *Server) WithDefaultCount(n int) *Server {
	if n > 0 {
		s.defaultCount = n
	}
	return s
}

// Routes registers the API routes on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/queues/{queue}/jobs/filter", s.FilterJobs)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// FilterJobs handles POST /api/v1/queues/{queue}/jobs/filter.
func (s *Server) FilterJobs(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	if queue == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "queue name is required")
		return
	}

	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	st, err := state.Parse(req.State)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	queryDoc := value.Obj(nil)
	if len(req.Query) > 0 {
		if queryDoc, err = value.FromJSON(req.Query); err != nil {
			writeError(w, http.StatusBadRequest, codeBadQuery, "Invalid query document: "+err.Error())
			return
		}
	}

	count := s.defaultCount
	if req.Count != nil {
		if *req.Count < 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "count must not be negative")
			return
		}
		count = *req.Count
	}

	logpkg.FromContext(r.Context()).Debug("filter request",
		zap.String("queue", queue),
		zap.String("state", string(st)),
		zap.Int("cursor", req.Cursor),
		zap.Int("count", count),
	)

	res, err := s.filter.Filter(r.Context(), queue, st, queryDoc, req.Cursor, count)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, filterResultToView(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func filterResultToView(res filteruc.Result) filterResponse {
	jobs := make([]json.RawMessage, len(res.Jobs))
	for i, rec := range res.Jobs {
		jobs[i] = jobToView(rec)
	}
	return filterResponse{
		Jobs:   jobs,
		Cursor: res.Cursor,
		Total:  res.Total,
		Count:  res.Count,
		Errors: res.Errors,
	}
}

// jobToView renders a record as its projected document, the same shape
// queries evaluate against.
func jobToView(rec job.Record) json.RawMessage {
	data, err := job.Project(rec).MarshalJSON()
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrBadQuery,
		domain.ErrBadCursor,
		domain.ErrUnknownState,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, _ *http.Request, err error) {
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
