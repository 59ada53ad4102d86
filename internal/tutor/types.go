package tutor

import (
	"context"
	"errors"
)

// Role identifies the author of a turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FreeForm selects open conversation with no topic supplement
const FreeForm = "자유주제/대화"

var (
	// ErrNoTopic is returned by GetResponse before any SetTopic call
	ErrNoTopic = errors.New("no topic selected")
	// ErrEmptyReply is returned when the generator produced only whitespace
	ErrEmptyReply = errors.New("empty reply from generator")
	// ErrSuperseded is returned alongside a reply that was not committed because
	// the session was reset or re-topiced while the reply was being generated
	ErrSuperseded = errors.New("session changed during generation")
)

// Turn is one message in the conversation
type Turn struct {
	Role    Role
	Content string
}

// Generator produces the next assistant message for a conversation
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}

// Catalog is the read-only topic source a session delegates to
type Catalog interface {
	List() []string
	Describe(name string) string
}
