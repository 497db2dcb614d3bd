package uds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/zeptools/gw-dbconn/svc"
)

// Service serves line based admin commands on a unix socket.
// One command per connection: the connection is closed after it runs.
type Service struct {
	Ctx        context.Context    // Service Context
	cancel     context.CancelFunc // Service Context CancelFunc
	mu         sync.Mutex
	state      int        // internal service state
	done       chan error // Shutdown Error Channel
	SocketPath string
	CmdMap     map[string]CmdHnd
	listener   net.Listener
}

var _ svc.Service = (*Service)(nil)

func (s *Service) Name() string {
	return "UDSService"
}

func NewService(parentCtx context.Context, sockPath string, cmdMap map[string]CmdHnd) *Service {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Service{
		Ctx:        svcCtx,
		cancel:     svcCancel,
		state:      svc.StateREADY,
		done:       make(chan error, 1),
		SocketPath: sockPath,
		CmdMap:     cmdMap,
	}
}

// Start the unix socket service in the background.
// Bootstrapping errors are returned immediately.
// Runtime errors are pushed into Done().
func (s *Service) Start() error {
	// clean up old socket if any
	_ = os.Remove(s.SocketPath)
	listener, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("listen(%q) failed: %w", s.SocketPath, err)
	}
	// owner only
	if err = os.Chmod(s.SocketPath, 0600); err != nil {
		_ = listener.Close()
		_ = os.Remove(s.SocketPath)
		return fmt.Errorf("chmod(%q) failed: %w", s.SocketPath, err)
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
	log.Println("[INFO][UDS] service stopped")
}

func (s *Service) Done() <-chan error {
	return s.done
}

// run - internal run loop
func (s *Service) run() {
	go func() {
		<-s.Ctx.Done()
		log.Printf("[INFO][UDS] stopping")
		if err := s.listener.Close(); err != nil {
			log.Printf("[ERROR][UDS] cannot close listener: %v", err)
		}
		// remove without checking first, the file may already be gone
		if err := os.Remove(s.SocketPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[ERROR][UDS] cannot remove socket file: %v", err)
		}
	}()

	log.Printf("[INFO][UDS] listening on %q ...", s.SocketPath)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				log.Printf("[INFO][UDS] socket closed")
				s.done <- nil // also a clean shutdown
				return
			}
			log.Println("[ERROR][UDS] accept failed:", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Service) handleConn(c net.Conn) {
	connCtx, connCancel := context.WithCancel(s.Ctx)
	defer connCancel()
	go func() {
		<-connCtx.Done()
		_ = c.Close()
	}()

	reader := bufio.NewReader(io.LimitReader(c, 1<<20)) // 1 MB max per line
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Printf("[ERROR][UDS] read error: %v", err)
			}
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit":
			return
		case "help":
			s.writeHelp(c)
			continue
		}
		cmdHnd, ok := s.CmdMap[args[0]]
		if !ok {
			_, _ = fmt.Fprintf(c, "unknown command: %s\n", args[0])
			continue // give another chance
		}
		log.Printf("[INFO][UDS] requested command `%s`", args[0])
		if err := cmdHnd.Fn(connCtx, args[1:], c); err != nil {
			log.Printf("[WARN][UDS] command `%s` failed: %v", args[0], err)
			_, _ = fmt.Fprintf(c, "error: %v\n", err)
		}
		return
	}
}

func (s *Service) writeHelp(w io.Writer) {
	keys := make([]string, 0, len(s.CmdMap))
	for k := range s.CmdMap {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		h := s.CmdMap[k]
		usage := k
		if h.Usage != "" {
			usage = h.Usage
		}
		_, _ = fmt.Fprintf(w, "%-24s %s\n", usage, h.Desc)
	}
}
