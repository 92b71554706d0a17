// Package notify renders controller notifications and confirmation prompts
// on a terminal.
package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	gosync "sync"

	"videobelajar/internal/logger"
	cs "videobelajar/internal/sync"
)

// Toast prints notifications to Out and logs them.
type Toast struct {
	Out io.Writer

	mu gosync.Mutex
}

func NewToast(out io.Writer) *Toast {
	return &Toast{Out: out}
}

func (t *Toast) Notify(n cs.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	icon := "✓"
	if n.Kind == cs.KindError {
		icon = "✗"
		logger.Warn("notification", slog.String("kind", n.Kind.String()), slog.String("message", n.Message))
	} else {
		logger.Debug("notification", slog.String("kind", n.Kind.String()), slog.String("message", n.Message))
	}
	if t.Out != nil {
		fmt.Fprintf(t.Out, "%s %s\n", icon, n.Message)
	}
}

// Prompt asks yes/no questions on a line-oriented terminal. Only "y" and
// "ya"/"yes" (any case) confirm; EOF or a canceled context declines.
// Use it through a pointer: every Confirm shares one reader on In.
type Prompt struct {
	In  io.Reader
	Out io.Writer

	once  gosync.Once
	lines chan string
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{In: in, Out: out}
}

func (p *Prompt) Confirm(ctx context.Context, prompt string) bool {
	if p.Out != nil {
		fmt.Fprintf(p.Out, "%s [y/N] ", prompt)
	}
	if p.In == nil {
		return false
	}
	p.once.Do(p.startReader)

	select {
	case <-ctx.Done():
		// the pending read stays blocked on In; its line answers the next Confirm
		return false
	case line, ok := <-p.lines:
		if !ok {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "ya", "yes":
			return true
		}
		return false
	}
}

// startReader hands In to one goroutine for the life of the Prompt, so
// bytes buffered past a newline are kept for later prompts.
func (p *Prompt) startReader() {
	p.lines = make(chan string)
	go func() {
		defer close(p.lines)
		r := bufio.NewReader(p.In)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				p.lines <- line
			}
			if err != nil {
				return
			}
		}
	}()
}

// Always confirms without asking; used for -yes.
type Always struct{}

func (Always) Confirm(context.Context, string) bool { return true }
