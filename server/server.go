package server

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/auth"
	"github.com/Ashenafi-pixel/simple-roulette/config"
	"github.com/Ashenafi-pixel/simple-roulette/preset"
	"github.com/Ashenafi-pixel/simple-roulette/spin"
	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

// Notifier reports revealed spins to an outside party.
type Notifier interface {
	SpinResult(ctx context.Context, r spin.Record) error
}

// Deps are the collaborators a Server is built from. Store, History,
// Notifier and DB are optional.
type Deps struct {
	Wheel    *wheel.Wheel
	Spinner  *spin.Spinner
	Gate     *auth.Gate
	Store    wheel.Store
	History  spin.History
	Presets  *preset.Registry
	Notifier Notifier
	DB       *sql.DB
	Logger   *slog.Logger
}

type Server struct {
	cfg      *config.Config
	wheel    *wheel.Wheel
	spinner  *spin.Spinner
	gate     *auth.Gate
	store    wheel.Store
	history  spin.History
	presets  *preset.Registry
	notifier Notifier
	db       *sql.DB
	hub      *Hub
	logger   *slog.Logger
}

func New(cfg *config.Config, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Presets == nil {
		d.Presets = preset.NewRegistry()
	}
	s := &Server{
		cfg:      cfg,
		wheel:    d.Wheel,
		spinner:  d.Spinner,
		gate:     d.Gate,
		store:    d.Store,
		history:  d.History,
		presets:  d.Presets,
		notifier: d.Notifier,
		db:       d.DB,
		hub:      NewHub(d.Logger),
		logger:   d.Logger,
	}
	s.spinner.OnEvent(s.onSpinEvent)
	return s
}

// Handler returns the routed API with logging and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)

	mux.HandleFunc("GET /auth/status", s.authStatus)
	mux.HandleFunc("POST /auth/sign-in", s.signIn)
	mux.HandleFunc("POST /auth/sign-out", s.signOut)

	mux.HandleFunc("GET /wheel", s.requireSession(s.getWheel))
	mux.HandleFunc("GET /wheel.svg", s.requireSession(s.getWheelSVG))
	mux.HandleFunc("PUT /wheel/items", s.requireSession(s.replaceItems))
	mux.HandleFunc("POST /wheel/items", s.requireSession(s.addItem))
	mux.HandleFunc("PATCH /wheel/items/{index}", s.requireSession(s.updateItem))
	mux.HandleFunc("DELETE /wheel/items/{index}", s.requireSession(s.removeItem))
	mux.HandleFunc("POST /wheel/spin", s.requireSession(s.spin))
	mux.HandleFunc("GET /wheel/state", s.requireSession(s.state))
	mux.HandleFunc("POST /wheel/sound", s.requireSession(s.sound))
	mux.HandleFunc("GET /wheel/events", s.requireSession(s.events))
	mux.HandleFunc("GET /wheel/history", s.requireSession(s.listHistory))
	mux.HandleFunc("GET /wheel/presets", s.requireSession(s.listPresets))
	mux.HandleFunc("POST /wheel/presets", s.requireSession(s.importPreset))
	mux.HandleFunc("POST /wheel/presets/{name}/apply", s.requireSession(s.applyPreset))

	return cors(s.requestLogger(mux))
}

// Run serves until ctx is cancelled, then drains connections and stops the
// spinner's timers.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("roulette listening", "addr", srv.Addr, "env", s.cfg.AppEnv)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.spinner.Close()
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down")
	s.spinner.Close()
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes websocket upgrades through to the underlying writer.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// requestLogger logs method, path, status and duration (no bodies).
func (s *Server) requestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "roulette"})
}

// onSpinEvent fans spinner transitions out to websocket clients and, on
// reveal, to the history and the webhook.
func (s *Server) onSpinEvent(ev spin.Event) {
	s.hub.Broadcast(ev)
	if ev.Type != spin.EventSpinRevealed || ev.Outcome == nil {
		return
	}
	rec := spin.RecordFromOutcome(*ev.Outcome)
	if s.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.history.Append(ctx, rec); err != nil {
			s.logger.Error("failed to record spin", "spin_id", rec.SpinID, "error", err)
		}
		cancel()
	}
	if s.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.notifier.SpinResult(ctx, rec); err != nil {
				s.logger.Warn("result webhook failed", "spin_id", rec.SpinID, "error", err)
			}
		}()
	}
}
