package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zeptools/gw-dbconn/svc"
)

const DefaultShutdownTimeout = 10 * time.Second

type Service struct {
	Ctx             context.Context    // Service Context
	cancel          context.CancelFunc // Service Context CancelFunc
	mu              sync.Mutex
	state           int        // internal service state
	done            chan error // Shutdown Error Channel
	Server          *http.Server
	ShutdownTimeout time.Duration
	listener        net.Listener
}

// Ensure web.Service implements svc.Service interface
var _ svc.Service = (*Service)(nil)

func NewService(parentCtx context.Context, addr string, router http.Handler) *Service {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Service{
		Ctx:    svcCtx,
		cancel: svcCancel,
		state:  svc.StateREADY,
		done:   make(chan error, 1),
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func (s *Service) Name() string {
	return "WebService"
}

// Start binds the listener and serves in the background.
// Bootstrapping errors are returned immediately.
// Runtime errors are pushed into Done().
func (s *Service) Start() error {
	listener, err := net.Listen("tcp", s.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen(%q) failed: %w", s.Server.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.state = svc.StateRUNNING
	s.mu.Unlock()
	go s.run()
	return nil
}

func (s *Service) Stop() {
	s.cancel()
	s.mu.Lock()
	s.state = svc.StateSTOPPED
	s.mu.Unlock()
	log.Println("[INFO][WEB] service stopped")
}

func (s *Service) Done() <-chan error {
	return s.done
}

// Addr returns the bound address, useful when listening on port 0
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.Server.Addr
	}
	return s.listener.Addr().String()
}

// run - internal run loop
func (s *Service) run() {
	go func() {
		<-s.Ctx.Done()
		log.Printf("[INFO][WEB] stopping")
		// Stop accepting new requests, in-flight ones get ShutdownTimeout to finish
		ctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		if err := s.Server.Shutdown(ctx); err != nil {
			log.Printf("[ERROR][WEB] server shutdown failed: %v", err)
		}
	}()

	log.Printf("[INFO][WEB] listening on %s ...", s.Addr())
	err := s.Server.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		s.done <- nil // clean shutdown
		return
	}
	s.done <- err
}
