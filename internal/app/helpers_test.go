package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"relay/internal/core"
)

// fakeSender records every frame enqueued for a connection.
type fakeSender struct {
	mu     sync.Mutex
	open   bool
	frames []core.Frame
}

func newFakeSender() *fakeSender { return &fakeSender{open: true} }

func (s *fakeSender) TrySend(f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return errors.New("connection closed")
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *fakeSender) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *fakeSender) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *fakeSender) messages(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.frames))
	for _, f := range s.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

// byType filters recorded messages on the type discriminator.
func (s *fakeSender) byType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, m := range s.messages(t) {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (s *fakeSender) last(t *testing.T) map[string]any {
	t.Helper()
	msgs := s.messages(t)
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func newTestConn(id string) (*core.Conn, *fakeSender) {
	s := newFakeSender()
	return core.NewConn(id, s), s
}
