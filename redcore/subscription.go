package redcore

import (
	"sync"

	"github.com/gomodule/redcore/internal/state"
)

// Message is a published message delivered on a subscribed channel or a
// pattern that matches it. Pattern is set only for a PMESSAGE push.
type Message struct {
	Channel string
	Pattern string
	Data    []byte
}

// MessageListener receives every Message pushed on a subscribed channel
// or pattern. It must not block the read loop; slow listeners should
// hand off to their own goroutine.
type MessageListener func(Message)

// subscriptions tracks the channel/pattern names currently subscribed,
// so the session restorer (restorer.go) knows what to replay after a
// reconnect, and dispatches incoming MESSAGE/PMESSAGE pushes to the
// registered listener.
type subscriptions struct {
	mu       sync.Mutex
	channels map[string]bool
	patterns map[string]bool
	listener MessageListener
}

func newSubscriptions() *subscriptions {
	return &subscriptions{
		channels: make(map[string]bool),
		patterns: make(map[string]bool),
	}
}

func (s *subscriptions) setListener(l MessageListener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// applyAck updates the tracked subscription set from a (p)subscribe or
// (p)unsubscribe acknowledgement push. name is the channel or pattern the
// ack names; Redis's running subscription count in the same push is not
// itself recorded, only which names are currently subscribed.
func (s *subscriptions) applyAck(kind state.PushKind, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case state.Subscribe:
		s.channels[name] = true
	case state.PSubscribe:
		s.patterns[name] = true
	case state.Unsubscribe:
		delete(s.channels, name)
	case state.PUnsubscribe:
		delete(s.patterns, name)
	}
}

// dispatch routes a MESSAGE/PMESSAGE push to the registered listener. It
// is a no-op if no listener is registered.
func (s *subscriptions) dispatch(kind state.PushKind, fields []string, data []byte) {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return
	}
	switch kind {
	case state.Message:
		if len(fields) < 1 {
			return
		}
		l(Message{Channel: fields[0], Data: data})
	case state.PMessage:
		if len(fields) < 2 {
			return
		}
		l(Message{Pattern: fields[0], Channel: fields[1], Data: data})
	}
}

// snapshot returns the channel and pattern names currently subscribed,
// for the restorer to replay after a reconnect.
func (s *subscriptions) snapshot() (channels, patterns []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.channels {
		channels = append(channels, c)
	}
	for p := range s.patterns {
		patterns = append(patterns, p)
	}
	return channels, patterns
}

// count reports how many channels and patterns are tracked, for
// Endpoint.Stats.
func (s *subscriptions) count() (channels, patterns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels), len(s.patterns)
}
