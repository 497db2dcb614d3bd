package db

import (
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
)

type scoped struct {
	name string
	c    io.Closer
}

// Scope collects resources as they are acquired and releases them
// in reverse acquisition order on Close.
//
//	scope := db.NewScope("report")
//	defer scope.Close()
//	scope.Add("conn", conn)
//	scope.Add("stmt", stmt)
//	scope.Add("rows", rows)
type Scope struct {
	ID   string
	Name string

	mu        sync.Mutex
	resources []scoped
	closed    bool
}

// Ensure Scope can be nested into another Scope
var _ io.Closer = (*Scope)(nil)

func NewScope(name string) *Scope {
	return &Scope{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// Add registers c. nil resources are ignored.
// Adding to an already closed Scope releases c immediately.
func (s *Scope) Add(name string, c io.Closer) {
	if isNil(c) {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		log.Printf("[WARN][scope %s] %q added after close, releasing now", s.ID, name)
		Close(name, c)
		return
	}
	s.resources = append(s.resources, scoped{name: name, c: c})
	s.mu.Unlock()
}

// Len returns the number of resources still held
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}

// Close releases every held resource, last acquired first.
// Safe to call more than once. Always returns nil.
func (s *Scope) Close() error {
	s.mu.Lock()
	resources := s.resources
	s.resources = nil
	s.closed = true
	s.mu.Unlock()

	if len(resources) == 0 {
		return nil
	}
	failed := 0
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		if err := closeOne(r.c); err != nil {
			log.Printf("[WARN][scope %s] Failed to Close `%s`: %v", s.ID, r.name, err)
			failed++
		}
	}
	log.Printf("[INFO][scope %s] %q released %d resources (%d failed)", s.ID, s.Name, len(resources), failed)
	return nil
}
