package repl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"monkey/internal/evaluator"
	"monkey/internal/history"
	"monkey/internal/object"
	"monkey/internal/parser"
	"monkey/internal/util"
	"strconv"
	"time"
)

// Recorder is the part of history.Store a Session uses.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
	Recent(ctx context.Context, session string, n int) ([]history.Entry, error)
}

// Session owns one top-level environment. It is not safe for concurrent use.
type Session struct {
	ID       string
	Config   util.Configuration
	History  Recorder
	out      io.Writer
	env      *object.Environment
	ctx      context.Context
	evalSeen int
}

func NewSession(ctx context.Context, out io.Writer, config util.Configuration, recorder Recorder) *Session {
	return &Session{
		ID:      strconv.FormatInt(time.Now().UnixNano(), 36),
		Config:  config,
		History: recorder,
		out:     out,
		env:     object.NewEnvironment(),
		ctx:     ctx,
	}
}

func (s *Session) Env() *object.Environment {
	return s.env
}

// Reset drops every binding made so far.
func (s *Session) Reset() {
	s.env = object.NewEnvironment()
}

// Eval parses and evaluates src in the session environment. When parsing
// fails the result is nil and the messages are returned instead.
func (s *Session) Eval(src string) (object.Object, []string) {
	program, errs := parser.Parse(src)
	if len(errs) != 0 {
		return nil, errs
	}

	s.evalSeen++
	evaluated := evaluator.Eval(program, s.env)
	slog.Debug("evaluated input",
		slog.String("session", s.ID),
		slog.Int("n", s.evalSeen),
		slog.String("type", string(evaluated.Type())))

	return evaluated, nil
}

// Handle runs one complete input, either a command or source. It reports
// whether the session should end.
func (s *Session) Handle(input string) (quit bool) {
	if isCommand(input) {
		return s.handleCommand(input)
	}

	evaluated, errs := s.Eval(input)
	if errs != nil {
		PrintParserErrors(s.out, input, errs)
		s.record(input, errs[0], true)
		return false
	}

	rendered := evaluated.Inspect()
	io.WriteString(s.out, rendered)
	io.WriteString(s.out, "\n")
	s.record(input, rendered, evaluated.Type() == object.ERROR_OBJ)
	return false
}

func (s *Session) record(input, result string, isError bool) {
	if s.History == nil {
		return
	}
	_, err := s.History.Record(s.ctx, history.Entry{
		Session: s.ID,
		Input:   input,
		Result:  result,
		IsError: isError,
	})
	if err != nil {
		slog.Warn("could not record history",
			slog.String("session", s.ID),
			slog.Any("error", err))
	}
}

// PrintParserErrors lists errs and shows where in src the first one occurred.
func PrintParserErrors(out io.Writer, src string, errs []string) {
	io.WriteString(out, "Woops! We ran into some monkey business here!\n")
	io.WriteString(out, " parser errors:\n")
	for _, msg := range errs {
		io.WriteString(out, "\t"+msg+"\n")
	}

	var line, col int
	if _, err := fmt.Sscanf(errs[0], "[%d:%d]", &line, &col); err == nil {
		io.WriteString(out, util.GetContextLines(src, line, col))
		io.WriteString(out, "\n")
	}
}
