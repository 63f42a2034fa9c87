// Package server streams world state to browser clients over websockets.
// It is a collaborator of the engine core, not part of it: the core only
// sees read queries issued between frames.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/b99631944-eng/Bennett-lab/internal/config"
	"github.com/b99631944-eng/Bennett-lab/internal/core/engine"
	"github.com/b99631944-eng/Bennett-lab/internal/core/events"
	"github.com/b99631944-eng/Bennett-lab/internal/core/observability/log"
)

// Server owns the HTTP listener, the websocket clients, and the broadcast
// loop that snapshots the world on a fixed interval.
type Server struct {
	cfg    config.ServerConfig
	logger *log.Logger
	eng    *engine.Context

	mu      sync.Mutex
	clients map[string]*client

	running  atomic.Bool
	httpSrv  *http.Server
	group    *errgroup.Group
	stopCh   chan struct{}
	stopSub  *events.Subscription
	lastHash uint64
}

// New creates a stopped server bound to an engine context.
func New(cfg config.ServerConfig, logger *log.Logger, eng *engine.Context) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		eng:     eng,
		clients: make(map[string]*client),
	}
}

// Start binds the listener and launches the serve and broadcast goroutines.
// It returns once the listener is bound; serving errors surface via Stop.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	s.stopCh = make(chan struct{})
	s.lastHash = 0

	// Engine shutdown closes the stream for every connected client.
	s.stopSub, err = s.eng.Bus.Subscribe(events.EngineStopped, func(events.Event) {
		s.closeClients()
	})
	if err != nil {
		_ = ln.Close()
		s.running.Store(false)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	s.group = g
	g.Go(func() error {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.broadcastLoop(gctx)
	})

	s.logger.Info("server listening", zap.String("addr", addr))
	return nil
}

// Stop shuts the listener down, disconnects every client, and waits for the
// serve and broadcast goroutines to drain.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.stopSub.Cancel()
	close(s.stopCh)
	err := s.httpSrv.Shutdown(ctx)
	s.closeClients()
	if werr := s.group.Wait(); werr != nil && err == nil {
		err = werr
	}

	s.logger.Info("server stopped")
	return err
}

// broadcastLoop snapshots the world on the configured interval and fans the
// payload out, suppressing broadcasts whose content hash is unchanged.
func (s *Server) broadcastLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SnapshotInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopCh:
			return nil
		case <-ticker.C:
		}

		payload, err := s.encodeSnapshot()
		if err != nil {
			s.logger.Error("snapshot encode failed", zap.Error(err))
			continue
		}
		h := xxhash.Sum64(payload)
		if h == s.lastHash {
			continue
		}
		s.lastHash = h
		s.broadcast(payload)
	}
}

func (s *Server) broadcast(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: drop the frame, the next snapshot supersedes it.
			s.logger.Debug("client lagging, frame dropped", zap.String("client", id))
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"entities": s.eng.World.EntityCount(),
		"fps":      s.eng.Clock.FPS(),
		"running":  s.eng.Clock.IsRunning(),
	})
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[string]*client)
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
