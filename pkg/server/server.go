package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/tickerspell/internal/logger"
	"github.com/bastiangx/tickerspell/pkg/portfolio"
	"github.com/bastiangx/tickerspell/pkg/strategy"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Options tune the server.
type Options struct {
	// Workers bounds concurrent builds.
	Workers int
	// DefaultStrategy is used when a request names none. Empty means all.
	DefaultStrategy string
}

// Server handles the IPC for ticker spelling
type Server struct {
	engine     *portfolio.Engine
	runner     *portfolio.Runner
	strategies []strategy.Strategy
	dec        *msgpack.Decoder
	enc        *msgpack.Encoder
	writer     *bufio.Writer
	logger     *log.Logger
	requests   int

	mu       sync.Mutex // guards enc and writer
	inflight sync.WaitGroup
}

// NewServer creates a new spelling server using stdin/stdout for IPC
func NewServer(engine *portfolio.Engine, opts Options) (*Server, error) {
	return NewServerWithIO(engine, opts, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over arbitrary streams.
func NewServerWithIO(engine *portfolio.Engine, opts Options, r io.Reader, w io.Writer) (*Server, error) {
	var defaults []strategy.Strategy
	if opts.DefaultStrategy != "" {
		s, err := strategy.Parse(opts.DefaultStrategy)
		if err != nil {
			return nil, fmt.Errorf("default strategy: %w", err)
		}
		defaults = []strategy.Strategy{s}
	}

	bw := bufio.NewWriter(w)
	return &Server{
		engine:     engine,
		runner:     portfolio.NewRunner(engine, opts.Workers),
		strategies: defaults,
		dec:        msgpack.NewDecoder(bufio.NewReader(r)),
		enc:        msgpack.NewEncoder(bw),
		writer:     bw,
		logger:     logger.New("ipc"),
	}, nil
}

// Start begins listening for IPC requests and returns when the input ends
// or ctx is cancelled. Spell requests run on the runner, up to Workers at a
// time, and each response is written as soon as its build completes, so
// responses may arrive out of request order. In-flight builds are drained
// before Start returns.
func (s *Server) Start(ctx context.Context) error {
	defer s.runner.Close()
	defer s.inflight.Wait()
	s.logger.Debug("Starting Server.")

	if err := s.send(ReadyFrame{Status: "ready"}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			s.logger.Errorf("Reading from stdin: %v", err)
			return err
		}
		s.requests++

		var req SpellRequest
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Errorf("Unmarshaling request: %v", err)
			if err := s.sendError("", "Invalid msgpack request", 400); err != nil {
				return err
			}
			continue
		}

		if err := s.handleRequest(ctx, req); err != nil {
			return err
		}
	}
}

// handleRequest dispatches on the request action. The returned error is a
// write failure; request errors are reported to the client.
func (s *Server) handleRequest(ctx context.Context, req SpellRequest) error {
	switch req.Action {
	case "", ActionSpell:
		return s.handleSpell(ctx, req)
	case ActionHealth:
		return s.send(HealthResponse{
			ID:       req.ID,
			Status:   "ok",
			Tickers:  s.engine.Size(),
			Requests: s.requests,
		})
	default:
		return s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleSpell(ctx context.Context, req SpellRequest) error {
	strategies := s.strategies
	if req.Strategy != "" {
		st, err := strategy.Parse(req.Strategy)
		if err != nil {
			s.logger.Debugf("Request %s: %v", req.ID, err)
			return s.sendError(req.ID, err.Error(), 400)
		}
		strategies = []strategy.Strategy{st}
	}

	start := time.Now()
	done, err := s.runner.Submit(ctx, portfolio.Job{
		ID:         req.ID,
		Text:       req.Text,
		Strategies: strategies,
	})
	if err != nil {
		return s.sendError(req.ID, err.Error(), 500)
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		res := <-done
		if err := s.sendResult(res, start); err != nil {
			s.logger.Errorf("Writing response %s: %v", res.JobID, err)
		}
	}()
	return nil
}

func (s *Server) sendResult(res portfolio.Result, start time.Time) error {
	if res.Err != nil {
		code := 500
		if errors.Is(res.Err, strategy.ErrUnknownStrategy) {
			code = 400
		}
		s.logger.Errorf("Request %s failed: %v", res.JobID, res.Err)
		return s.sendError(res.JobID, res.Err.Error(), code)
	}

	resp := SpellResponse{
		ID:         res.JobID,
		Portfolios: make([]PortfolioEntry, len(res.Portfolios)),
		TimeTaken:  time.Since(start).Milliseconds(),
	}
	for i, p := range res.Portfolios {
		resp.Portfolios[i] = toEntry(p)
	}
	return s.send(resp)
}

func toEntry(p *portfolio.Portfolio) PortfolioEntry {
	tokens := make([]TokenEntry, len(p.Tokens))
	for i, tok := range p.Tokens {
		tokens[i] = TokenEntry{Char: tok.Char, Role: uint8(tok.Role)}
	}
	return PortfolioEntry{
		Strategy: p.Strategy.String(),
		Tickers:  p.Tickers,
		Score:    p.Score,
		Tokens:   tokens,
	}
}

// send encodes one frame and flushes it to the client.
func (s *Server) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(v); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return err
	}
	return s.writer.Flush()
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) error {
	return s.send(SpellError{ID: id, Error: message, Code: code})
}
