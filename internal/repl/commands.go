package repl

import (
	"fmt"
	"io"
	"monkey/internal/lexer"
	"monkey/internal/parser"
	"monkey/internal/util"
	"strconv"
	"strings"
)

const defaultHistoryCount = 10

const helpText = `Commands:
  :help            Show this help
  :quit, :exit     Leave the REPL
  :reset           Start over with an empty environment
  :tokens <src>    Show the tokens of <src>
  :ast <src>       Show the syntax tree of <src>
  :history [n]     Show the last n inputs of this session (default 10)
`

func isCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), ":")
}

func (s *Session) handleCommand(input string) (quit bool) {
	trimmed := strings.TrimSpace(input)
	fields := strings.Fields(trimmed)
	cmd := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))

	switch cmd {
	case ":help":
		io.WriteString(s.out, helpText)

	case ":quit", ":exit":
		return true

	case ":reset":
		s.Reset()
		io.WriteString(s.out, "environment reset.\n")

	case ":tokens":
		s.printTokens(rest)

	case ":ast":
		s.printAST(rest)

	case ":history":
		s.printHistory(rest)

	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for help.\n", cmd)
	}
	return false
}

func (s *Session) printTokens(src string) {
	for _, tok := range lexer.Tokenize(src) {
		line, col := util.GetLineAndColumn(src, tok.Position)
		fmt.Fprintf(s.out, "[%3d:%2d] %-9s %q\n", line, col, tok.Type, tok.Literal)
	}
}

func (s *Session) printAST(src string) {
	program, errs := parser.Parse(src)
	if len(errs) != 0 {
		PrintParserErrors(s.out, src, errs)
		return
	}

	format := s.Config.DebugAST
	if format == "" {
		format = "json"
	}
	if err := parser.WriteAST(s.out, program, format); err != nil {
		fmt.Fprintf(s.out, "could not render ast: %v\n", err)
	}
}

func (s *Session) printHistory(arg string) {
	if s.History == nil {
		io.WriteString(s.out, "history is not enabled.\n")
		return
	}

	n := defaultHistoryCount
	if arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed < 1 {
			fmt.Fprintf(s.out, "usage: :history [n]\n")
			return
		}
		n = parsed
	}

	entries, err := s.History.Recent(s.ctx, s.ID, n)
	if err != nil {
		fmt.Fprintf(s.out, "could not read history: %v\n", err)
		return
	}
	for _, e := range entries {
		fmt.Fprintf(s.out, "%4d  %s => %s\n", e.ID, strings.ReplaceAll(e.Input, "\n", " "), e.Result)
	}
}
