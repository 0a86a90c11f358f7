// Package server exposes the trained classifier and the run ledger over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/labeler"
	"github.com/sells-group/scope-cli/internal/model"
	"github.com/sells-group/scope-cli/internal/store"
)

const maxBodyBytes = 1 << 20

// Classifier predicts whether text is a full Scope 1/2/3 disclosure.
type Classifier interface {
	Predict(text string) (model.Label, float64)
}

// Options configures the HTTP server.
type Options struct {
	Port           int
	AllowedOrigins []string
}

// Server routes classification and run-ledger requests.
type Server struct {
	clf   Classifier
	store store.Store
	opts  Options
}

// New creates a Server. clf or st may be nil; the routes that need them
// answer 503.
func New(clf Classifier, st store.Store, opts Options) *Server {
	return &Server{clf: clf, store: st, opts: opts}
}

// Handler returns the router with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/classify", s.classify)
		r.Post("/excerpts", s.excerpts)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{id}", s.getRun)
	})
	return r
}

// HTTPServer wraps Handler in an http.Server on the configured port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type textRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse is the body returned by POST /v1/classify.
type ClassifyResponse struct {
	Label       model.Label `json:"label"`
	Probability float64     `json:"probability"`
}

// ExcerptResult pairs a rule-labeled excerpt with the model's prediction.
type ExcerptResult struct {
	model.Excerpt
	Scopes      string       `json:"scopes"`
	Predicted   *model.Label `json:"predicted,omitempty"`
	Probability *float64     `json:"probability,omitempty"`
}

// RunDetail is a run with its phases.
type RunDetail struct {
	model.Run
	Phases []model.RunPhase `json:"phases"`
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	if s.clf == nil {
		writeError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}
	req, ok := decodeText(w, r)
	if !ok {
		return
	}
	label, p := s.clf.Predict(req.Text)
	writeJSON(w, http.StatusOK, ClassifyResponse{Label: label, Probability: p})
}

func (s *Server) excerpts(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeText(w, r)
	if !ok {
		return
	}
	found := labeler.FindExcerpts(req.Text, labeler.DefaultOptions)
	out := make([]ExcerptResult, 0, len(found))
	for _, e := range found {
		res := ExcerptResult{Excerpt: e, Scopes: e.Scopes()}
		if s.clf != nil {
			label, p := s.clf.Predict(e.Text)
			res.Predicted, res.Probability = &label, &p
		}
		out = append(out, res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"excerpts": out})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}
	q := r.URL.Query()
	filter := store.RunFilter{
		Stage:  model.Stage(q.Get("stage")),
		Status: model.RunStatus(q.Get("status")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get run", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	phases, err := s.store.ListPhases(r.Context(), id)
	if err != nil {
		zap.L().Error("server: list phases", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list phases failed")
		return
	}
	if phases == nil {
		phases = []model.RunPhase{}
	}
	writeJSON(w, http.StatusOK, RunDetail{Run: *run, Phases: phases})
}

func decodeText(w http.ResponseWriter, r *http.Request) (textRequest, bool) {
	var req textRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("server: request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
