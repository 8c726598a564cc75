package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrCancelled is returned when the operator declines a confirmation that
// gates the whole operation. Commands treat it as a clean exit.
var ErrCancelled = errors.New("operation cancelled by user")

// Oracle answers yes/no questions.
type Oracle interface {
	Confirm(prompt string) bool
}

// Func adapts a function to Oracle.
type Func func(prompt string) bool

func (f Func) Confirm(prompt string) bool { return f(prompt) }

// Always returns an oracle that answers v without asking.
func Always(v bool) Oracle {
	return Func(func(string) bool { return v })
}

// Forced returns an oracle that answers yes when force is set and defers to
// next otherwise.
func Forced(force bool, next Oracle) Oracle {
	if force {
		return Always(true)
	}
	return next
}

// Prompt asks on out and reads a line from in. Only "y" and "yes"
// (case-insensitive) confirm; EOF or a read error counts as no.
type Prompt struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompt creates a line-based prompt.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{reader: bufio.NewReader(in), out: out}
}

func (p *Prompt) Confirm(prompt string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "\n%s [y/N]: ", prompt)
	response, err := p.reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Require returns ErrCancelled unless the oracle confirms prompt.
func Require(o Oracle, prompt string) error {
	if o.Confirm(prompt) {
		return nil
	}
	return ErrCancelled
}
