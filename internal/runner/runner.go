package runner

import (
	"context"
	"fmt"
	"log/slog"
	"monkey/internal/evaluator"
	"monkey/internal/object"
	"monkey/internal/parser"
	"os"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of evaluating one program.
type Result struct {
	Name        string
	Source      string
	ParseErrors []string
	Output      string
	IsError     bool
}

// Failed reports whether the program did not parse or evaluated to an Error.
func (r Result) Failed() bool {
	return len(r.ParseErrors) > 0 || r.IsError
}

// RunSource evaluates src in a fresh environment. A program with parse
// errors is not evaluated.
func RunSource(name, src string) Result {
	result := Result{Name: name, Source: src}

	program, errs := parser.Parse(src)
	if len(errs) != 0 {
		result.ParseErrors = errs
		return result
	}

	evaluated := evaluator.Eval(program, object.NewEnvironment())
	result.Output = evaluated.Inspect()
	result.IsError = evaluated.Type() == object.ERROR_OBJ
	return result
}

// RunFiles evaluates each file with at most jobs running at once. Results
// come back in the order of paths. A file that cannot be read fails the
// whole run.
func RunFiles(ctx context.Context, paths []string, jobs int) ([]Result, error) {
	if jobs < 1 {
		jobs = 1
	}

	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			results[i] = RunSource(path, string(src))
			slog.Debug("program finished",
				slog.String("file", path),
				slog.Bool("failed", results[i].Failed()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
