package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lexiqai/voice-tutor/internal/topic"
)

const testPersona = "You are a friendly English tutor."

type fakeGenerator struct {
	replies  []string
	err      error
	requests [][]Turn
	onCall   func()
}

func (g *fakeGenerator) Generate(ctx context.Context, turns []Turn) (string, error) {
	g.requests = append(g.requests, turns)
	if g.onCall != nil {
		g.onCall()
	}
	if g.err != nil {
		return "", g.err
	}
	reply := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return reply, nil
}

func newTestCatalog(t *testing.T) *topic.Catalog {
	t.Helper()
	c, err := topic.New([]topic.Topic{
		{Name: "Ordering Coffee", Description: "Order drinks at a cafe."},
		{Name: "Airport", Description: "Check in for a flight."},
	})
	if err != nil {
		t.Fatalf("topic.New() failed: %v", err)
	}
	return c
}

func TestSession_OrderingCoffeeScenario(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Great choice!"}}
	s := NewSession(testPersona, newTestCatalog(t), gen)

	s.SetTopic("Ordering Coffee")
	reply, err := s.GetResponse(context.Background(), "I want a latte")
	if err != nil {
		t.Fatalf("GetResponse() failed: %v", err)
	}
	if reply != "Great choice!" {
		t.Errorf("Expected reply 'Great choice!', got %q", reply)
	}

	history := s.History()
	if len(history) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(history))
	}
	if history[0].Role != RoleSystem {
		t.Errorf("Expected first turn to be system, got %s", history[0].Role)
	}
	if history[1] != (Turn{Role: RoleUser, Content: "I want a latte"}) {
		t.Errorf("Unexpected user turn %+v", history[1])
	}
	if history[2] != (Turn{Role: RoleAssistant, Content: "Great choice!"}) {
		t.Errorf("Unexpected assistant turn %+v", history[2])
	}

	if len(gen.requests) != 1 || len(gen.requests[0]) != 2 {
		t.Fatalf("Expected one request with 2 turns, got %v", gen.requests)
	}
	if gen.requests[0][1].Content != "I want a latte" {
		t.Errorf("Expected pending user turn last in request, got %+v", gen.requests[0][1])
	}
}

func TestSession_SetTopicResetsToSystemTurn(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"ok"}}
	s := NewSession(testPersona, newTestCatalog(t), gen)

	s.SetTopic("Airport")
	for i := 0; i < 3; i++ {
		if _, err := s.GetResponse(context.Background(), "hello"); err != nil {
			t.Fatalf("GetResponse() failed: %v", err)
		}
	}

	s.SetTopic("Ordering Coffee")
	history := s.History()
	if len(history) != 1 || history[0].Role != RoleSystem {
		t.Fatalf("Expected exactly one system turn, got %+v", history)
	}
	if !strings.Contains(history[0].Content, "Ordering Coffee") {
		t.Error("Expected system turn to name the new topic")
	}

	name, ok := s.CurrentTopic()
	if !ok || name != "Ordering Coffee" {
		t.Errorf("Expected current topic 'Ordering Coffee', got %q (%v)", name, ok)
	}
}

func TestSession_HistoryAlternates(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"one", "two", "three", "four"}}
	s := NewSession(testPersona, newTestCatalog(t), gen)
	s.SetTopic(FreeForm)

	const n = 4
	for i := 0; i < n; i++ {
		if _, err := s.GetResponse(context.Background(), "turn"); err != nil {
			t.Fatalf("GetResponse() failed: %v", err)
		}
	}

	if s.HistoryLen() != 1+2*n {
		t.Errorf("Expected HistoryLen %d, got %d", 1+2*n, s.HistoryLen())
	}
	history := s.History()
	if len(history) != 1+2*n {
		t.Fatalf("Expected %d turns, got %d", 1+2*n, len(history))
	}
	for i := 1; i < len(history); i++ {
		want := RoleUser
		if i%2 == 0 {
			want = RoleAssistant
		}
		if history[i].Role != want {
			t.Errorf("Expected turn %d to be %s, got %s", i, want, history[i].Role)
		}
	}
	if history[len(history)-1].Content != "four" {
		t.Errorf("Expected last reply 'four', got %q", history[len(history)-1].Content)
	}
}

func TestSession_FreeFormUsesPersonaOnly(t *testing.T) {
	s := NewSession(testPersona, newTestCatalog(t), &fakeGenerator{})
	s.SetTopic(FreeForm)

	history := s.History()
	if history[0].Content != testPersona {
		t.Errorf("Expected system turn to equal persona, got %q", history[0].Content)
	}
}

func TestSession_TopicSupplement(t *testing.T) {
	s := NewSession(testPersona, newTestCatalog(t), &fakeGenerator{})
	s.SetTopic("Airport")

	content := s.History()[0].Content
	if !strings.HasPrefix(content, testPersona+"\n") {
		t.Errorf("Expected system turn to start with persona and newline, got %q", content)
	}
	if !strings.Contains(content, "in the context of Airport") {
		t.Error("Expected system turn to name the topic")
	}

	directives := []string{
		"1. Use natural, conversational English",
		"2. Introduce and explain key vocabulary",
		"3. Provide examples",
		"4. Correct any mistakes gently",
		"5. Gradually increase the complexity",
		"6. Encourage the learner to form complete sentences",
		"7. Offer cultural insights",
		"8. Ask questions",
		"9. Provide positive reinforcement",
		"10. Summarize key learning points",
	}
	last := -1
	for _, d := range directives {
		idx := strings.Index(content, d)
		if idx < 0 {
			t.Errorf("Missing directive %q", d)
			continue
		}
		if idx <= last {
			t.Errorf("Directive %q out of order", d)
		}
		last = idx
	}
}

func TestSession_GetResponseWithoutTopic(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"hi"}}
	s := NewSession(testPersona, newTestCatalog(t), gen)

	_, err := s.GetResponse(context.Background(), "hello")
	if !errors.Is(err, ErrNoTopic) {
		t.Errorf("Expected ErrNoTopic, got %v", err)
	}
	if len(gen.requests) != 0 {
		t.Error("Expected generator not to be called")
	}
}

func TestSession_FailedGenerationLeavesHistory(t *testing.T) {
	boom := errors.New("service unavailable")
	gen := &fakeGenerator{replies: []string{"first"}}
	s := NewSession(testPersona, newTestCatalog(t), gen)
	s.SetTopic("Airport")

	if _, err := s.GetResponse(context.Background(), "hello"); err != nil {
		t.Fatalf("GetResponse() failed: %v", err)
	}
	before := s.History()

	gen.err = boom
	_, err := s.GetResponse(context.Background(), "again")
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped generator error, got %v", err)
	}

	after := s.History()
	if len(after) != len(before) {
		t.Errorf("Expected history length %d after failure, got %d", len(before), len(after))
	}
}

func TestSession_EmptyReply(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"  \n"}}
	s := NewSession(testPersona, newTestCatalog(t), gen)
	s.SetTopic(FreeForm)

	_, err := s.GetResponse(context.Background(), "hello")
	if !errors.Is(err, ErrEmptyReply) {
		t.Errorf("Expected ErrEmptyReply, got %v", err)
	}
	if len(s.History()) != 1 {
		t.Errorf("Expected history to stay at 1 turn, got %d", len(s.History()))
	}
}

func TestSession_ResetDuringGeneration(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"late reply"}}
	s := NewSession(testPersona, newTestCatalog(t), gen)
	s.SetTopic("Airport")
	gen.onCall = s.Reset

	reply, err := s.GetResponse(context.Background(), "hello")
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded, got %v", err)
	}
	if reply != "late reply" {
		t.Errorf("Expected reply to be returned, got %q", reply)
	}
	if len(s.History()) != 0 {
		t.Errorf("Expected empty history after reset, got %d turns", len(s.History()))
	}
}

func TestSession_Reset(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"ok"}}
	s := NewSession(testPersona, newTestCatalog(t), gen)

	s.Reset()
	if len(s.History()) != 0 {
		t.Error("Expected empty history from fresh reset")
	}

	s.SetTopic("Airport")
	s.GetResponse(context.Background(), "hello")
	s.Reset()

	if len(s.History()) != 0 {
		t.Errorf("Expected empty history, got %d turns", len(s.History()))
	}
	if _, ok := s.CurrentTopic(); ok {
		t.Error("Expected no topic after reset")
	}
	if _, err := s.GetResponse(context.Background(), "hello"); !errors.Is(err, ErrNoTopic) {
		t.Errorf("Expected ErrNoTopic after reset, got %v", err)
	}
}

func TestSession_HistoryIsCopy(t *testing.T) {
	s := NewSession(testPersona, newTestCatalog(t), &fakeGenerator{})
	s.SetTopic(FreeForm)

	h := s.History()
	h[0].Content = "tampered"

	if s.History()[0].Content != testPersona {
		t.Error("Expected History to return a copy")
	}
}

func TestSession_TopicDelegation(t *testing.T) {
	catalog := newTestCatalog(t)
	s := NewSession(testPersona, catalog, &fakeGenerator{})

	for _, name := range catalog.List() {
		s.SetTopic(name)
		if got := s.TopicDescription(name); got != catalog.Describe(name) {
			t.Errorf("Expected description %q, got %q", catalog.Describe(name), got)
		}
	}
	if got := s.TopicDescription("Nowhere"); got != topic.NoDescription {
		t.Errorf("Expected NoDescription, got %q", got)
	}
	if len(s.Topics()) != 2 || s.Topics()[0] != "Ordering Coffee" {
		t.Errorf("Unexpected topics %v", s.Topics())
	}
}

func TestSession_WindowTrimsRequestOnly(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"a"}}
	s := NewSession(testPersona, newTestCatalog(t), gen, WithWindow(KeepLastTurns(2)))
	s.SetTopic(FreeForm)

	for i := 0; i < 4; i++ {
		if _, err := s.GetResponse(context.Background(), "hello"); err != nil {
			t.Fatalf("GetResponse() failed: %v", err)
		}
	}

	if len(s.History()) != 9 {
		t.Errorf("Expected stored history of 9 turns, got %d", len(s.History()))
	}

	last := gen.requests[len(gen.requests)-1]
	if last[0].Role != RoleSystem {
		t.Error("Expected trimmed request to keep the system turn")
	}
	if len(last) > 3 {
		t.Errorf("Expected at most 3 turns in trimmed request, got %d", len(last))
	}
}
