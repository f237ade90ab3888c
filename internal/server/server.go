// Package server exposes tumbler sessions over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ukaji3/tumbler-go/pkg/tumbler"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/history"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/rng"
)

// Query keys read by the embed endpoint on top of the locator keys.
const (
	KeyUseCurrentSheet = "use-current-sheet"
	KeyIframeSeed      = "iframe-seed"
	KeyIframeRandom    = "iframe-random"
)

// Store records and looks up snapshots.
type Store = history.Store

// Config holds server dependencies.
type Config struct {
	// Fetcher loads sources named in requests. Defaults to
	// tumbler.NewRemoteFetcher; never give it file access.
	Fetcher   tumbler.Fetcher
	Store     Store
	Options   tumbler.Options
	EmbedBase string
	Logger    *zap.Logger

	// Seeds overrides where new seeds come from. Defaults to rng.RandomSeeds.
	Seeds rng.SeedSource
}

// Server routes tumbler requests. Each request runs in its own Session;
// fetches and the store are shared.
type Server struct {
	router  *chi.Mux
	fetcher tumbler.Fetcher
	store   Store
	opts    tumbler.Options
	base    string
	seeds   rng.SeedSource
	logger  *zap.Logger
}

// New creates a Server.
func New(cfg Config) *Server {
	seeds := cfg.Seeds
	if seeds == nil {
		seeds = rng.RandomSeeds
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := cfg.Store
	if store == nil {
		store = history.NewMemory()
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = tumbler.NewRemoteFetcher(tumbler.DefaultFetchTimeout)
	}
	s := &Server{
		router:  chi.NewRouter(),
		fetcher: fetcher,
		store:   store,
		opts:    cfg.Options,
		base:    cfg.EmbedBase,
		seeds:   seeds,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/tumble", s.handleTumble)
	s.router.Get("/api/history/{id}", s.handleHistory)
	s.router.Get("/api/embed", s.handleEmbed)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) newSession() *tumbler.Session {
	return tumbler.NewSession(s.fetcher, s.opts,
		tumbler.WithHistory(history.AppendOnly(s.store)),
		tumbler.WithSeedSource(s.seeds),
		tumbler.WithLogger(s.logger))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTumble(w http.ResponseWriter, r *http.Request) {
	loc := tumbler.ParseLocator(r.URL.Query())

	sess := s.newSession()
	words, err := sess.Init(r.Context(), loc)
	if err == nil && words == nil {
		_, err = sess.Regenerate(r.Context(), false)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := sess.Result()
	if s.base != "" {
		result.Embed = sess.EmbedURL(s.base, tumbler.EmbedOptions{
			UseCurrentSource: true,
			Display:          loc.Display,
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess := tumbler.NewSession(s.fetcher, s.opts, tumbler.WithLogger(s.logger))
	if _, err := sess.RestoreHistoryEntry(snap); err != nil {
		s.writeError(w, err)
		return
	}
	result := sess.Result()
	result.SnapshotID = snap.ID
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	loc := tumbler.ParseLocator(query)

	opts := tumbler.EmbedOptions{
		UseCurrentSource: query.Get(KeyUseCurrentSheet) == "true",
		ForceRandom:      query.Get(KeyIframeRandom) == "true",
		Display:          loc.Display,
	}
	if raw := query.Get(KeyIframeSeed); raw != "" {
		seed, ok := tumbler.ParseSeed(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + KeyIframeSeed})
			return
		}
		opts.Seed = &seed
	}

	base := s.base
	if base == "" {
		base = "/"
	}
	src := tumbler.EmbedURL(base, loc, opts, s.opts.Source())
	writeJSON(w, http.StatusOK, models.Embed{URL: src, Snippet: tumbler.EmbedSnippet(src)})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	} else {
		s.logger.Debug("Request rejected", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var netErr *tumbler.NetworkError
	var parseErr *tumbler.ParseError
	var poolErr *tumbler.EmptyPoolError
	switch {
	case errors.Is(err, tumbler.ErrLocalSource):
		return http.StatusBadRequest
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	case errors.As(err, &parseErr), errors.As(err, &poolErr), errors.Is(err, tumbler.ErrUnsupportedSnapshot):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tumbler.ErrLoadInFlight):
		return http.StatusConflict
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
