package exec

import (
	"context"
	"fmt"
	"sync"
)

// Reply is a canned command result.
type Reply struct {
	Output string
	Err    error
}

// Scripted is a Runner that answers from a table keyed by CommandLine.
// Commands missing from the table fail.
type Scripted struct {
	mu      sync.Mutex
	replies map[string]Reply
	calls   []string
}

// NewScripted creates a runner answering with outputs.
func NewScripted(outputs map[string]string) *Scripted {
	s := &Scripted{replies: make(map[string]Reply, len(outputs))}
	for cmd, out := range outputs {
		s.replies[cmd] = Reply{Output: out}
	}
	return s
}

// Set registers a reply for a command line.
func (s *Scripted) Set(cmdline string, r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[cmdline] = r
}

func (s *Scripted) Run(_ context.Context, name string, args ...string) (string, error) {
	line := CommandLine(name, args...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, line)
	r, ok := s.replies[line]
	if !ok {
		return "", fmt.Errorf("unscripted command: %s", line)
	}
	return r.Output, r.Err
}

// Calls returns every command line run so far.
func (s *Scripted) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
