package tutor

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Session holds the conversation with one learner
type Session struct {
	persona string
	catalog Catalog
	gen     Generator
	window  Window

	mu       sync.Mutex
	history  []Turn
	topic    string
	hasTopic bool
	epoch    uint64 // bumped on every history change
}

// Option configures a Session
type Option func(*Session)

// WithWindow trims outgoing requests with w
func WithWindow(w Window) Option {
	return func(s *Session) {
		s.window = w
	}
}

// NewSession creates an empty session with no topic
func NewSession(persona string, catalog Catalog, gen Generator, opts ...Option) *Session {
	s := &Session{
		persona: persona,
		catalog: catalog,
		gen:     gen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTopic discards the history and starts over with a single system turn
// Pass FreeForm for open conversation
func (s *Session) SetTopic(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topic = name
	s.hasTopic = true
	s.history = []Turn{{Role: RoleSystem, Content: systemPrompt(s.persona, name)}}
	s.epoch++
}

// GetResponse sends the history plus userText to the generator
// Both turns are appended only when a reply is returned without error
func (s *Session) GetResponse(ctx context.Context, userText string) (string, error) {
	s.mu.Lock()
	if !s.hasTopic {
		s.mu.Unlock()
		return "", ErrNoTopic
	}

	userTurn := Turn{Role: RoleUser, Content: userText}
	request := make([]Turn, 0, len(s.history)+1)
	request = append(request, s.history...)
	request = append(request, userTurn)
	if s.window != nil {
		request = s.window.Trim(request)
	}
	epoch := s.epoch
	s.mu.Unlock()

	reply, err := s.gen.Generate(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyReply
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return reply, ErrSuperseded
	}
	s.history = append(s.history, userTurn, Turn{Role: RoleAssistant, Content: reply})
	s.epoch++

	return reply, nil
}

// Reset clears the topic and history
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.topic = ""
	s.hasTopic = false
	s.epoch++
}

// History returns a copy of the conversation so far
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// HistoryLen returns the number of stored turns
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// CurrentTopic returns the active topic, if any
func (s *Session) CurrentTopic() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic, s.hasTopic
}

// Topics lists the catalog in definition order
func (s *Session) Topics() []string {
	return s.catalog.List()
}

// TopicDescription describes a catalog topic
func (s *Session) TopicDescription(name string) string {
	return s.catalog.Describe(name)
}
