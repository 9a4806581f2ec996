// Package server implements the remote sync endpoint.
//
// Two operations are exposed: fetch-latest returns the authoritative
// copy for a user, and push/merge applies last-write-wins conflict
// resolution against it. The server is the sole authority for the
// timestamp persisted after any write; client timestamps are used for
// the comparison only.
package server

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/Jayasuryanarayana/BudgetBox/internal/server/storage"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080". ":0" picks a free port.
	Addr string

	// Logger for request and error logging.
	Logger *log.Logger

	// Now returns the authoritative server time in milliseconds since
	// epoch. Defaults to the wall clock; injectable for tests.
	Now func() int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:   ":8080",
		Logger: log.New(os.Stderr, "[server] ", log.LstdFlags),
	}
}

// Server is the HTTP sync endpoint.
type Server struct {
	store  storage.Store
	logger *log.Logger
	now    func() int64

	addr     string
	listener net.Listener
	httpSrv  *http.Server
	wg       sync.WaitGroup

	// Striped per-user locks serialize push/merge so the timestamp
	// comparison and the following write are atomic per user key.
	// Users hash onto a fixed set of mutexes, so memory stays bounded
	// regardless of how many user keys are ever seen; two users sharing
	// a stripe merely serialize against each other.
	locks [64]sync.Mutex
}

// New creates a Server over the given authoritative store.
func New(store storage.Store, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[server] ", log.LstdFlags)
	}
	now := config.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Server{
		store:  store,
		logger: config.Logger,
		now:    now,
		addr:   config.Addr,
	}
}

// Start begins listening and serving in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/api/budget/sync", s.handleSync)
	mux.HandleFunc("/api/budget/latest", s.handleLatest)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Handler:      s.logRequests(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Sync endpoint listening on %s", ln.Addr())
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	s.logger.Println("Stopping sync endpoint")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.wg.Wait()
	s.logger.Println("Sync endpoint stopped")
	return nil
}

// Addr returns the actual listen address, useful with ":0".
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// userLock returns the mutex serializing merges for userID.
func (s *Server) userLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// logRequests wraps a handler with method/path/duration logging.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
