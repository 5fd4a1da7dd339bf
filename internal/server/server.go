// Package server exposes rig evaluation over HTTP.
//
// Every rig is addressed by name. A successful evaluation replaces the stored
// result of the rig; a failed one is reported to the client and leaves the
// stored result untouched, so readers keep seeing the last good result.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"honnef.co/go/ptframe"
	"honnef.co/go/ptframe/internal/rigfile"
	"honnef.co/go/ptframe/internal/store"
)

// maxBodySize limits the size of posted rigs.
const maxBodySize = 4 << 20

// Server handles the HTTP API.
type Server struct {
	Store   store.Store
	Logger  *slog.Logger
	Metrics *Metrics
	// Now returns the current time. It defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
	// rigLocks serializes evaluations of the same rig. Entries are never
	// removed; there is one per rig name ever posted.
	rigLocks map[string]*sync.Mutex
}

// lockRig locks the rig and returns the function that unlocks it.
func (s *Server) lockRig(name string) (unlock func()) {
	s.mu.Lock()
	if s.rigLocks == nil {
		s.rigLocks = make(map[string]*sync.Mutex)
	}
	l, ok := s.rigLocks[name]
	if !ok {
		l = new(sync.Mutex)
		s.rigLocks[name] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// NewHandler creates the HTTP handler. Metrics are registered with reg and
// served from it.
func NewHandler(st store.Store, logger *slog.Logger, reg *prometheus.Registry) http.Handler {
	s := &Server{
		Store:   st,
		Logger:  logger,
		Metrics: NewMetrics(reg),
		Now:     time.Now,
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Route("/rigs", func(r chi.Router) {
		r.Get("/", s.ListRigs)
		r.Post("/{name}/evaluate", s.Evaluate)
		r.Get("/{name}/result", s.GetResult)
		r.Delete("/{name}/result", s.DeleteResult)
	})
	return r
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListRigs handles GET /rigs.
func (s *Server) ListRigs(w http.ResponseWriter, r *http.Request) {
	rigs, err := s.Store.List(r.Context())
	if err != nil {
		s.Logger.Error("failed to list rigs", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if rigs == nil {
		rigs = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"rigs": rigs})
}

// GetResult handles GET /rigs/{name}/result.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, err := s.Store.Load(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("rig %q: %w", name, err))
			return
		}
		s.Logger.Error("failed to load result", "rig", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// DeleteResult handles DELETE /rigs/{name}/result.
func (s *Server) DeleteResult(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.Store.Delete(r.Context(), name); err != nil {
		s.Logger.Error("failed to delete result", "rig", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Evaluate handles POST /rigs/{name}/evaluate. The body is a rig in JSON if
// the content type says so, and in YAML otherwise. With ?degrees=true,
// rotations are reported in degrees.
//
// If the stored result was produced by a rig with identical fingerprints, it
// is returned without evaluating again.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	logger := s.Logger.With("rig", name)

	degrees, err := boolParam(r, "degrees")
	if err != nil {
		s.Metrics.evaluations.WithLabelValues(outcomeInvalid).Inc()
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.Metrics.evaluations.WithLabelValues(outcomeInvalid).Inc()
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}
	rig, err := rigfile.Parse(data, bodyFormat(r))
	if err != nil {
		s.Metrics.evaluations.WithLabelValues(outcomeInvalid).Inc()
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	rig.Name = name

	fps, err := rig.Fingerprints()
	if err != nil {
		s.Metrics.evaluations.WithLabelValues(outcomeInvalid).Inc()
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	// The cache check and the store update happen under the rig's lock, so
	// concurrent posts of the same rig evaluate it once.
	defer s.lockRig(name)()
	prev, err := s.Store.Load(ctx, name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		// Not fatal: evaluate as if nothing was stored.
		logger.Warn("failed to load previous result", "error", err)
		prev = nil
	}
	if prev != nil {
		changed := changedOutputs(prev.Fingerprints, fps)
		if len(changed) == 0 && prev.Evaluation.Units == units(degrees) {
			s.Metrics.evaluations.WithLabelValues(outcomeCached).Inc()
			logger.Debug("rig unchanged, serving stored result")
			w.Header().Set("X-Ptframe-Cache", "hit")
			s.writeJSON(w, http.StatusOK, prev)
			return
		}
		logger.Debug("rig changed", "outputs", changed)
	}

	start := s.Now()
	ev, err := rig.Evaluate(degrees)
	s.Metrics.duration.Observe(s.Now().Sub(start).Seconds())
	if err != nil {
		s.Metrics.evaluations.WithLabelValues(outcomeFailure).Inc()
		logger.Warn("evaluation failed, keeping last good result", "error", err)
		s.writeError(w, statusOf(err), err)
		return
	}
	s.Metrics.evaluations.WithLabelValues(outcomeSuccess).Inc()
	s.Metrics.samples.Add(float64(len(ev.Samples)))

	rec := &store.Record{
		Evaluation:   ev,
		Fingerprints: fps,
		UpdatedAt:    s.Now().UTC(),
	}
	if err := s.Store.Save(ctx, name, rec); err != nil {
		logger.Error("failed to store result", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("evaluated rig", "samples", len(ev.Samples))
	w.Header().Set("X-Ptframe-Cache", "miss")
	s.writeJSON(w, http.StatusOK, rec)
}

// changedOutputs returns the names of the outputs whose fingerprints differ.
func changedOutputs(prev, cur map[string]string) []string {
	var changed []string
	for _, out := range slices.Sorted(maps.Keys(cur)) {
		if prev[out] != cur[out] {
			changed = append(changed, out)
		}
	}
	return changed
}

// statusOf maps evaluation errors to status codes. Rigs that are well formed
// but cannot be evaluated are unprocessable.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ptframe.ErrQuery),
		errors.Is(err, ptframe.ErrInvalidCurve),
		errors.Is(err, ptframe.ErrInvalidStartFrame),
		errors.Is(err, ptframe.ErrInvalidRestLength),
		errors.Is(err, ptframe.ErrInvalidRamp),
		errors.Is(err, rigfile.ErrInvalidRig):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func units(degrees bool) string {
	if degrees {
		return "degrees"
	}
	return "radians"
}

func bodyFormat(r *http.Request) rigfile.Format {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		return rigfile.JSON
	}
	return rigfile.YAML
}

func boolParam(r *http.Request, key string) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter %q", key, v)
	}
	return b, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
