package validator

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/pkg/events"
	"github.com/snow-ghost/validator/pkg/observability"
	"github.com/snow-ghost/validator/pkg/storage"
)

// MaxRequestBody caps the size of a request body in bytes.
const MaxRequestBody = 1 << 20

// Server exposes the validator over HTTP.
type Server struct {
	validator *Validator
	pipeline  *Pipeline
	obs       *observability.Manager
	mux       *http.ServeMux
}

// NewServer registers the routes. pipeline may be nil, in which case
// POST /events is not served.
func NewServer(v *Validator, pipeline *Pipeline, obs *observability.Manager) *Server {
	if obs == nil {
		obs = observability.NewNop()
	}
	s := &Server{validator: v, pipeline: pipeline, obs: obs, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /validate", s.handleValidate)
	if pipeline != nil {
		s.mux.HandleFunc("POST /events", s.handleEvent)
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", obs.MetricsHandler())
	return s
}

// ServeHTTP logs every request and dispatches it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.obs.GetLogger().LogRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
}

// handleValidate validates a practice record posted as JSON.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var practice core.Practice
	if err := decodeBody(w, r, &practice); err != nil {
		http.Error(w, err.Error(), bodyStatus(err))
		return
	}
	report, err := s.validator.Validate(r.Context(), practice)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleEvent runs the pipeline for a practice.created event.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := decodeBody(w, r, &body); err != nil {
		http.Error(w, err.Error(), bodyStatus(err))
		return
	}
	ev, err := events.Decode(body)
	if errors.Is(err, events.ErrUnsupportedEvent) {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "skipped", "type": ev.Type})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.pipeline.Handle(r.Context(), ev.Payload.PracticeID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBody)
	return json.NewDecoder(r.Body).Decode(v)
}

func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNoCriteria):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
