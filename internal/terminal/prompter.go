// Package terminal drives a study session over a line based console.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/conorfennell/knolbox/internal/domain"
	"github.com/conorfennell/knolbox/internal/session"
)

const helpText = `Commands:
  y  correct       the card moves towards the next box
  n  incorrect     the card drops back and is retried at the end
  s  skip          show the same card again
  e  edit          change the front or back text
  h  help          show this text
  q  quit          pause; the session can be resumed later
  Ctrl-C           pause at any prompt, same as quit
`

// Prompter implements session.Interaction over a reader and a writer.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	now func() time.Time
}

var _ session.Interaction = (*Prompter)(nil)

// New returns a Prompter reading commands from in and printing to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, now: time.Now}
}

// ParseDecision maps a typed command to a decision kind.
func ParseDecision(input string) (domain.DecisionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes", "c", "correct":
		return domain.DecisionCorrect, true
	case "n", "no", "i", "incorrect":
		return domain.DecisionIncorrect, true
	case "s", "skip":
		return domain.DecisionSkip, true
	case "e", "edit":
		return domain.DecisionEdit, true
	case "h", "help", "?":
		return domain.DecisionHelp, true
	case "q", "quit":
		return domain.DecisionQuit, true
	default:
		return "", false
	}
}

// PresentCard shows one side, waits for the reveal and asks for a verdict.
// Commands other than y/n are accepted at the reveal prompt too.
func (p *Prompter) PresentCard(ctx context.Context, card *domain.Card, side domain.Side, progress session.Progress) (domain.Decision, error) {
	start := p.now()

	label := fmt.Sprintf("[%d/%d]", progress.Position, progress.Total)
	if progress.Retry {
		label += " retry"
	}
	fmt.Fprintf(p.out, "\n%s box %d\n%s:\n%s\n\n", label, card.CurrentBox, side, card.SideText(side))
	fmt.Fprint(p.out, "Press Enter to reveal... ")

	line, err := p.readLine(ctx)
	if err != nil {
		return domain.Decision{}, err
	}
	if kind, ok := ParseDecision(line); ok && kind != domain.DecisionCorrect && kind != domain.DecisionIncorrect {
		return domain.Decision{Kind: kind, ResponseTime: p.now().Sub(start)}, nil
	}

	fmt.Fprintf(p.out, "%s:\n%s\n\n", side.Other(), card.SideText(side.Other()))
	for {
		fmt.Fprint(p.out, "Correct? [y/n/s/e/h/q]: ")
		line, err := p.readLine(ctx)
		if err != nil {
			return domain.Decision{}, err
		}
		if kind, ok := ParseDecision(line); ok {
			return domain.Decision{Kind: kind, ResponseTime: p.now().Sub(start)}, nil
		}
		fmt.Fprintf(p.out, "Unknown command %q, type h for help.\n", strings.TrimSpace(line))
	}
}

// RequestResumeChoice asks whether to continue a paused session. Enter resumes.
func (p *Prompter) RequestResumeChoice(ctx context.Context, existing *domain.SessionState) (domain.ResumeChoice, error) {
	fmt.Fprintf(p.out, "A paused session from %s exists: %d of %d cards studied.\n",
		existing.SessionStartTime.Local().Format(time.DateTime),
		existing.Statistics.CardsStudied, existing.Statistics.TotalCards)
	for {
		fmt.Fprint(p.out, "Resume it? [Y/n]: ")
		line, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes", "r", "resume":
			return domain.ResumeChoiceResume, nil
		case "n", "no", "restart":
			return domain.ResumeChoiceRestart, nil
		}
	}
}

// NotifyEdit lets the learner rewrite both sides. A blank line keeps the old text.
func (p *Prompter) NotifyEdit(ctx context.Context, card *domain.Card) error {
	for _, side := range []domain.Side{domain.SideFront, domain.SideBack} {
		fmt.Fprintf(p.out, "%s [%s]: ", side, card.SideText(side))
		line, err := p.readLine(ctx)
		if err != nil {
			return err
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if side == domain.SideFront {
			card.Front = text
		} else {
			card.Back = text
		}
	}
	return nil
}

// NotifyHelp prints the command list.
func (p *Prompter) NotifyHelp(ctx context.Context) error {
	_, err := io.WriteString(p.out, helpText)
	return err
}

// Summary prints the end of session report.
func (p *Prompter) Summary(result domain.SessionResult) {
	st := result.Statistics
	fmt.Fprintf(p.out, "\n%s\n", result.Message)
	fmt.Fprintf(p.out, "Studied:   %d of %d\n", st.CardsStudied, st.TotalCards)
	fmt.Fprintf(p.out, "Correct:   %d\n", st.CorrectAnswers)
	fmt.Fprintf(p.out, "Incorrect: %d\n", st.IncorrectAnswers)
	fmt.Fprintf(p.out, "Success:   %.0f%%\n", st.SuccessRate())
	fmt.Fprintf(p.out, "Avg time:  %s\n", st.AverageResponseTime().Round(100*time.Millisecond))
}

type readResult struct {
	line string
	err  error
}

// readLine returns one line without its terminator. A final line without a
// newline is returned as is; EOF on an empty read is an error. Cancelling ctx
// returns at once; the pending read is abandoned.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan readResult, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		done <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out, "\nInterrupted, saving progress.")
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, io.EOF) && r.line != "" {
				return strings.TrimRight(r.line, "\r\n"), nil
			}
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}
