package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"werdiff/internal/config"
	"werdiff/internal/control"
	"werdiff/internal/hook"
	"werdiff/internal/report"
	"werdiff/internal/tokenize"
	"werdiff/internal/wer"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const hookQueueSize = 16

// Server scores pairs over HTTP, keeps recent results, and feeds hooks.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	hook      *hook.Runner
	startedAt time.Time
	scored    atomic.Int64

	historyMu sync.Mutex
	history   []control.Entry

	metrics *metrics
	hookCh  chan hook.Job

	wg sync.WaitGroup
}

// New builds a server without starting any goroutines.
func New(cfg *config.Config, logger *logrus.Logger) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		hook:      hook.NewRunner(cfg, logger),
		startedAt: time.Now(),
		history:   make([]control.Entry, 0, max(0, cfg.Server.History)),
		metrics:   newMetrics(),
		hookCh:    make(chan hook.Job, hookQueueSize),
	}
}

// Handler routes the scoring API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/score", s.handleScore)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, control.SimpleResponse{OK: true, Message: "ok"})
	})
	if s.cfg.Metrics.Enabled {
		mux.Handle("/metrics", s.metrics.handler())
	}
	return mux
}

// Serve runs the scoring server until interrupted.
func Serve(cfg *config.Config, logger *logrus.Logger) error {
	if err := config.MustStatePaths(cfg); err != nil {
		return err
	}
	// Write pid file.
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(cfg.Paths.PidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("remove pid file: %v", err)
		}
	}()

	srv := New(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hook worker
	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		srv.hookWorker(ctx)
	}()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("scoring server listening on http://%s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Handle signals
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Infof("received signal %s, shutting down", sig)
	case err := <-errCh:
		runErr = fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	cancel()
	// Wait for hook worker to stop
	srv.wg.Wait()
	return runErr
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	id := uuid.NewString()
	w.Header().Set("X-Request-Id", id)
	log := s.logger.WithField("request_id", id)

	body := r.Body
	if s.cfg.Server.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	}
	var req control.ScoreRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		log.Debugf("decode request: %v", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	start := time.Now()
	opts := s.tokenizeOptions()
	refTokens := req.ReferenceTokens
	if refTokens == nil {
		refTokens = tokenize.Split(req.Reference, opts)
	}
	hypTokens := req.HypothesisTokens
	if hypTokens == nil {
		hypTokens = tokenize.Split(req.Hypothesis, opts)
	}

	ev, err := wer.Evaluate(refTokens, hypTokens)
	if err != nil {
		var inv *wer.InvalidInputError
		if errors.As(err, &inv) {
			s.metrics.requests.WithLabelValues("invalid").Inc()
			log.Infof("rejected: %v", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.metrics.requests.WithLabelValues("error").Inc()
		log.Errorf("score: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	doc := report.New(req.Name, ev)
	if req.CER || s.cfg.Output.CER {
		cer, err := wer.CharacterErrorRate(strings.Join(refTokens, " "), strings.Join(hypTokens, " "))
		if err != nil {
			log.Warnf("character error rate skipped: %v", err)
		} else {
			doc.SetCER(cer)
		}
	}
	s.metrics.latency.Observe(time.Since(start).Seconds())
	s.metrics.errorRate.Observe(ev.Result.ErrorRate)
	s.metrics.requests.WithLabelValues("ok").Inc()
	s.scored.Add(1)

	log.WithFields(logrus.Fields{
		"name":     req.Name,
		"wer":      doc.WordErrorRate,
		"distance": ev.Result.EditDistance,
	}).Info("scored")

	now := time.Now()
	s.recordResult(control.Entry{
		RequestID:       id,
		Name:            req.Name,
		WordErrorRate:   doc.WordErrorRate,
		EditDistance:    ev.Result.EditDistance,
		ReferenceLength: ev.Result.ReferenceLength,
		Timestamp:       now,
	})
	s.enqueueHook(hook.Job{Name: req.Name, Result: ev.Result, Timestamp: now})

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, control.Status{
		Running:   true,
		UptimeSec: time.Since(s.startedAt).Seconds(),
		Scored:    s.scored.Load(),
		Recent:    s.copyHistory(),
	})
}

func (s *Server) tokenizeOptions() tokenize.Options {
	return tokenize.Options{
		Lowercase:  s.cfg.Tokenize.Lowercase,
		StripPunct: s.cfg.Tokenize.StripPunct,
		NFC:        s.cfg.Tokenize.NFC,
	}
}

func (s *Server) enqueueHook(job hook.Job) {
	if len(s.cfg.Hooks) == 0 {
		return
	}
	select {
	case s.hookCh <- job:
	default:
		s.metrics.hooksDropped.Inc()
		s.logger.Warn("hook queue full, dropping job")
	}
}

func (s *Server) recordResult(entry control.Entry) {
	if s.cfg.Server.History > 0 {
		s.historyMu.Lock()
		s.history = append(s.history, entry)
		if len(s.history) > s.cfg.Server.History {
			s.history = s.history[len(s.history)-s.cfg.Server.History:]
		}
		s.historyMu.Unlock()
	}
	if s.cfg.Paths.HistoryPath == "" {
		return
	}
	// append to file
	f, err := os.OpenFile(s.cfg.Paths.HistoryPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.logger.Warnf("open history: %v", err)
		return
	}
	if _, err := fmt.Fprintf(f, "%s\t%s\t%s\t%d\t%d\n", entry.Timestamp.Format(time.RFC3339), entry.Name, entry.WordErrorRate, entry.EditDistance, entry.ReferenceLength); err != nil {
		s.logger.Warnf("write history: %v", err)
	}
	_ = f.Close()
}

func (s *Server) copyHistory() []control.Entry {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	out := make([]control.Entry, len(s.history))
	copy(out, s.history)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, control.SimpleResponse{OK: false, Message: msg})
}
