package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"homebudget/internal/core"
	"homebudget/internal/ledger"
)

// Prompter asks confirmations and amounts on a terminal. With AssumeYes
// every confirmation is accepted without reading input.
type Prompter struct {
	mu        sync.Mutex
	in        *bufio.Reader
	out       io.Writer
	AssumeYes bool
}

var _ ledger.Confirmer = (*Prompter)(nil)

func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, AssumeYes: assumeYes}
}

func (p *Prompter) Confirm(_ context.Context, message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.AssumeYes {
		fmt.Fprintf(p.out, "%s [s/N]: s\n", message)
		return true
	}
	fmt.Fprintf(p.out, "%s [s/N]: ", message)
	line, ok := p.readLine()
	if !ok {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(line) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}

// PromptAmount shows current as the default; an empty answer keeps it.
// End of input cancels, as does an empty answer with no current value.
func (p *Prompter) PromptAmount(_ context.Context, message string, current core.Money) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current.Cents > 0 {
		fmt.Fprintf(p.out, "%s [%s]: ", message, current)
	} else {
		fmt.Fprintf(p.out, "%s ", message)
	}
	line, ok := p.readLine()
	if !ok {
		fmt.Fprintln(p.out)
		return "", false
	}
	if line == "" {
		if current.Cents > 0 {
			return current.String(), true
		}
		return "", false
	}
	return line, true
}

func (p *Prompter) readLine() (string, bool) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
