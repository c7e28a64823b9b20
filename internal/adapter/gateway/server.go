// Package gateway exposes the generation core over HTTP.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/infra/config"
	"github.com/Rmalnoult/doodlegram/internal/infra/middleware"
	"github.com/Rmalnoult/doodlegram/internal/usecase"
)

// Server is the HTTP front of the generation core.
type Server struct {
	cfg       config.ServerConfig
	logger    *slog.Logger
	generator *usecase.Generator
	quick     *usecase.QuickTranslator
	store     domain.DiagramStore

	server    *http.Server
	boundAddr string
	cancel    context.CancelFunc
}

// NewServer creates the HTTP server. store may be nil, in which case the
// save/fetch routes answer 503.
func NewServer(cfg config.ServerConfig, generator *usecase.Generator, quick *usecase.QuickTranslator, store domain.DiagramStore, logger *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		generator: generator,
		quick:     quick,
		store:     store,
	}
}

// Start begins serving. Non-blocking (serves in a goroutine).
func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/diagrams/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/diagrams/generate-quick", s.handleGenerateQuick)
	mux.HandleFunc("POST /api/diagrams", s.handleSave)
	mux.HandleFunc("GET /api/diagrams/{id}", s.handleGet)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	handler := middleware.SecurityHeaders(
		middleware.RateLimit(ctx, s.cfg.RequestsPerMin, s.cfg.Burst)(mux),
	)

	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: generation streams stay open for the whole
		// agent loop. Streams end when the loop terminates or the
		// client disconnects.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.boundAddr = ln.Addr().String()

	go func() {
		s.logger.Info("gateway started", "addr", s.boundAddr)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("gateway server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the bound address (useful with ":0" listeners).
func (s *Server) Addr() string { return s.boundAddr }

// handleGenerate validates the request, then runs the agent loop with an
// SSE sink. Validation failures answer with a plain 400 before any
// stream is opened.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.clientError(w, "invalid request body")
		return
	}

	if err := usecase.ValidateRequest(req); err != nil {
		var derr *domain.DomainError
		if errors.As(err, &derr) {
			s.clientError(w, derr.Detail)
		} else {
			s.clientError(w, err.Error())
		}
		return
	}

	sink, err := NewSSEEncoder(w)
	if err != nil {
		s.logger.Error("sse not supported", "error", err)
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	s.generator.Run(r.Context(), req, sink)
}

// handleGenerateQuick runs the single-shot quick mode.
func (s *Server) handleGenerateQuick(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.clientError(w, "invalid request body")
		return
	}

	result, err := s.quick.Translate(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			var derr *domain.DomainError
			if errors.As(err, &derr) {
				s.clientError(w, derr.Detail)
				return
			}
		}
		s.logger.Error("quick generation failed", "error", err)
		http.Error(w, "Failed to generate diagram", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleSave persists a finished diagram.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	var d domain.Diagram
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		s.clientError(w, "invalid request body")
		return
	}
	if strings.TrimSpace(d.Title) == "" {
		s.clientError(w, "Title is required")
		return
	}

	id, err := s.store.Save(r.Context(), d)
	if err != nil {
		s.logger.Error("diagram save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleGet fetches a saved diagram by id.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	d, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "diagram not found", http.StatusNotFound)
			return
		}
		s.logger.Error("diagram fetch failed", "error", err)
		http.Error(w, "fetch failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) clientError(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("response write failed", "error", err)
	}
}
