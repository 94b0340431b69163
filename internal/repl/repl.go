package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"monkey/internal/evaluator"
	"monkey/internal/lexer"
	"monkey/internal/token"
	"monkey/internal/util"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

const ContinuationPrompt = ".. "

// NeedsMore reports whether src has unclosed parentheses, braces or
// brackets, meaning the user is still typing.
func NeedsMore(src string) bool {
	depth := 0
	for _, tok := range lexer.Tokenize(src) {
		switch tok.Type {
		case token.LPAREN, token.LBRACE, token.LBRACKET:
			depth++
		case token.RPAREN, token.RBRACE, token.RBRACKET:
			depth--
		}
	}
	return depth > 0
}

// Start runs a fresh session with default settings over plain streams.
func Start(in io.Reader, out io.Writer) {
	NewSession(context.Background(), out, util.DefaultConfiguration(), nil).Run(in)
}

// Run reads inputs from in until it is exhausted or the user quits.
func (s *Session) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder

	for {
		if buf.Len() == 0 {
			fmt.Fprint(s.out, s.prompt())
		} else {
			fmt.Fprint(s.out, ContinuationPrompt)
		}
		if !scanner.Scan() {
			// an entry still open at end of input is evaluated as is
			if strings.TrimSpace(buf.String()) != "" {
				fmt.Fprintln(s.out)
				s.Handle(buf.String())
			}
			return
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(scanner.Text())

		src := buf.String()
		if !isCommand(src) && NeedsMore(src) {
			continue
		}
		buf.Reset()

		if strings.TrimSpace(src) == "" {
			continue
		}
		if s.Handle(src) {
			return
		}
	}
}

// StartInteractive drives s through a line editor with persistent line
// history in s.Config.HistoryFile.
func StartInteractive(s *Session) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)
	ln.SetWordCompleter(s.complete)

	histPath := s.Config.HistoryFile
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		src, ok := s.readInput(ln)
		if !ok {
			fmt.Fprintln(s.out)
			if strings.TrimSpace(src) != "" {
				ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
				s.Handle(src)
			}
			break
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if s.Handle(src) {
			break
		}
	}

	if histPath == "" {
		return nil
	}
	f, err := os.Create(histPath)
	if err != nil {
		return fmt.Errorf("write line history: %w", err)
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		return fmt.Errorf("write line history: %w", err)
	}
	return nil
}

// readInput collects lines until brackets balance. ok is false on EOF, with
// any lines already collected returned in src.
func (s *Session) readInput(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := s.prompt()
		if b.Len() > 0 {
			prompt = ContinuationPrompt
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return b.String(), false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			slog.Error("could not read input", slog.Any("error", err))
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if isCommand(src) || !NeedsMore(src) {
			return src, true
		}
	}
}

func (s *Session) prompt() string {
	if s.Config.Prompt != "" {
		return s.Config.Prompt
	}
	return util.DefaultPrompt
}

// complete offers bindings, builtins and keywords that extend the word
// under the cursor.
func (s *Session) complete(line string, pos int) (head string, completions []string, tail string) {
	head, tail = line[:pos], line[pos:]

	start := len(head)
	for start > 0 && isWordByte(head[start-1]) {
		start--
	}
	word := head[start:]
	head = head[:start]
	if word == "" {
		return head, nil, tail
	}

	candidates := append(s.env.Names(), evaluator.BuiltinNames()...)
	candidates = append(candidates, "fn", "let", "true", "false", "if", "else", "return")

	seen := map[string]bool{}
	for _, c := range candidates {
		if strings.HasPrefix(c, word) && !seen[c] {
			seen[c] = true
			completions = append(completions, c)
		}
	}
	sort.Strings(completions)
	return head, completions, tail
}

func isWordByte(b byte) bool {
	return b == '_' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}
