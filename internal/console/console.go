package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#268BD2"))
	tutorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#859900"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B58900"))
	titleStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#874BFD")).
			Padding(0, 1)
)

// Console prints the conversation transcript for the operator
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a console writing to out
func New(out io.Writer) *Console {
	return &Console{out: out}
}

// Title prints a banner line
func (c *Console) Title(text string) {
	c.println(titleStyle.Render(text))
}

// User prints what the learner said
func (c *Console) User(text string) {
	c.println(userStyle.Render("You:") + " " + text)
}

// Tutor prints the tutor's reply
func (c *Console) Tutor(text string) {
	c.println(tutorStyle.Render("Tutor:") + " " + text)
}

// Notice prints an operator message
func (c *Console) Notice(msg string) {
	c.println(noticeStyle.Render(msg))
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}
