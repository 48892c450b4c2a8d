// Package cli reads text from stdin and prints the spelled portfolios with
// every character highlighted by its role.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/tickerspell/pkg/portfolio"
	"github.com/bastiangx/tickerspell/pkg/strategy"
	"github.com/bastiangx/tickerspell/pkg/tag"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Styles maps each role to its highlight.
type Styles struct {
	Normal    lipgloss.Style
	Ticker    lipgloss.Style
	InBetween lipgloss.Style
	Outside   lipgloss.Style
	Header    lipgloss.Style
}

// DefaultStyles returns the highlight palette bound to r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Normal:    r.NewStyle(),
		Ticker:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F1FA8C")).Background(lipgloss.Color("#44475A")),
		InBetween: r.NewStyle().Foreground(lipgloss.Color("#6272A4")),
		Outside:   r.NewStyle().Faint(true).Underline(true),
		Header:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BE9FD")),
	}
}

func (s Styles) forRole(role tag.Role) lipgloss.Style {
	switch role {
	case tag.Ticker:
		return s.Ticker
	case tag.InBetween:
		return s.InBetween
	case tag.OutsideTicker:
		return s.Outside
	default:
		return s.Normal
	}
}

// InputHandler processes user input from stdin and prints one highlighted
// portfolio per configured strategy.
type InputHandler struct {
	engine       *portfolio.Engine
	strategies   []strategy.Strategy
	in           io.Reader
	out          io.Writer
	styles       Styles
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler. An empty
// strategies list prints all five.
func NewInputHandler(engine *portfolio.Engine, strategies []strategy.Strategy, in io.Reader, out io.Writer) *InputHandler {
	if len(strategies) == 0 {
		strategies = strategy.All
	}
	return &InputHandler{
		engine:     engine,
		strategies: strategies,
		in:         in,
		out:        out,
		styles:     DefaultStyles(lipgloss.NewRenderer(out)),
	}
}

// Start begins the interface loop. It returns nil once the input ends.
func (h *InputHandler) Start(ctx context.Context) error {
	log.Print("TickerSpell CLI")
	log.Print("type some text and press Enter to spell a portfolio (Ctrl+C to exit):")

	scanner := bufio.NewScanner(h.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := h.handleInput(ctx, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (h *InputHandler) handleInput(ctx context.Context, text string) error {
	h.requestCount++
	for _, s := range h.strategies {
		start := time.Now()
		p, err := h.engine.Build(ctx, text, s)
		if err != nil {
			return err
		}
		log.Debugf("Took [ %v ] for %v", time.Since(start), s)
		fmt.Fprintln(h.out, h.Render(p))
	}
	return nil
}

// Render formats p as a header line followed by the highlighted text.
func (h *InputHandler) Render(p *portfolio.Portfolio) string {
	var b strings.Builder

	tickers := "none"
	if len(p.Tickers) > 0 {
		tickers = strings.Join(p.Tickers, ", ")
	}
	b.WriteString(h.styles.Header.Render(fmt.Sprintf("%s  score %.2f  [%s]", p.Strategy, p.Score, tickers)))
	b.WriteByte('\n')

	// Runs of equal role are styled together.
	var run strings.Builder
	role := tag.Normal
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(h.styles.forRole(role).Render(run.String()))
			run.Reset()
		}
	}
	for _, tok := range p.Tokens {
		if tok.Role != role {
			flush()
			role = tok.Role
		}
		run.WriteString(tok.Char)
	}
	flush()
	return b.String()
}
