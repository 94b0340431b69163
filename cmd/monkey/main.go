package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"monkey/internal/history"
	"monkey/internal/lexer"
	"monkey/internal/log"
	"monkey/internal/parser"
	"monkey/internal/repl"
	"monkey/internal/runner"
	"monkey/internal/util"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

var (
	// Version is stamped at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile    string
	evalSource    string
	showTokens    bool
	debugAST      string
	historyDriver string
	historyDSN    string
	jobs          int
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "Read settings from a TOML file")
	// evaluator config
	flag.StringVar(&evalSource, "e", "", "Evaluate the given source and exit")
	flag.IntVar(&jobs, "jobs", 0, "Number of files evaluated at once")
	// parser config
	flag.BoolVar(&showTokens, "tokens", false, "Print the tokens of each program instead of running it")
	flag.StringVar(&debugAST, "debug-ast", "", "Print the AST of each program as json or yaml instead of running it")
	// repl config
	flag.StringVar(&historyDriver, "history-driver", "", "History database driver: sqlite3, mysql, postgres")
	flag.StringVar(&historyDSN, "history-dsn", "", "History database DSN (disabled when empty)")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "monkey: %v\n", err)
		os.Exit(2)
	}

	closeLog, err := log.Setup(config.LogLevel, config.LogFile, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; falling back to stderr\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := run(ctx, config, flag.Args(), os.Stdout)
	stop()
	closeLog()
	os.Exit(status)
}

// loadConfiguration layers defaults, the optional TOML file and the flags
// that were set explicitly.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	if home, err := os.UserHomeDir(); err == nil {
		config.HistoryFile = filepath.Join(home, ".monkey_history")
	}

	if configFile != "" {
		var err error
		config, err = util.LoadConfigFile(configFile, config)
		if err != nil {
			return config, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug-ast":
			config.DebugAST = debugAST
		case "history-driver":
			config.HistoryDriver = historyDriver
		case "history-dsn":
			config.HistoryDSN = historyDSN
		case "jobs":
			config.Jobs = jobs
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		}
	})

	return config, config.Validate()
}

func run(ctx context.Context, config util.Configuration, args []string, out io.Writer) int {
	switch {
	case evalSource != "" && len(args) > 0:
		fmt.Fprintln(os.Stderr, "monkey: -e cannot be combined with file arguments")
		return 2

	case evalSource != "":
		return runSources(out, config, []runner.Result{{Name: "-e", Source: evalSource}})

	case len(args) > 0:
		if showTokens || config.DebugAST != "" {
			var sources []runner.Result
			for _, path := range args {
				src, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "monkey: %v\n", err)
					return 1
				}
				sources = append(sources, runner.Result{Name: path, Source: string(src)})
			}
			return runSources(out, config, sources)
		}

		results, err := runner.RunFiles(ctx, args, config.Jobs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "monkey: %v\n", err)
			return 1
		}
		return printResults(out, results, len(args) > 1)

	default:
		return runREPL(ctx, config, out)
	}
}

// runSources handles inline programs and the -tokens and -debug-ast modes.
func runSources(out io.Writer, config util.Configuration, sources []runner.Result) int {
	status := 0
	for _, s := range sources {
		switch {
		case showTokens:
			for _, tok := range lexer.Tokenize(s.Source) {
				line, col := util.GetLineAndColumn(s.Source, tok.Position)
				fmt.Fprintf(out, "[%3d:%2d] %-9s %q\n", line, col, tok.Type, tok.Literal)
			}

		case config.DebugAST != "":
			program, errs := parser.Parse(s.Source)
			if len(errs) != 0 {
				repl.PrintParserErrors(os.Stderr, s.Source, errs)
				status = 1
				continue
			}
			if err := parser.WriteAST(out, program, config.DebugAST); err != nil {
				fmt.Fprintf(os.Stderr, "monkey: %v\n", err)
				status = 1
			}

		default:
			if printResults(out, []runner.Result{runner.RunSource(s.Name, s.Source)}, false) != 0 {
				status = 1
			}
		}
	}
	return status
}

func printResults(out io.Writer, results []runner.Result, named bool) int {
	status := 0
	for _, r := range results {
		if named {
			fmt.Fprintf(out, "==> %s\n", r.Name)
		}
		if len(r.ParseErrors) != 0 {
			repl.PrintParserErrors(os.Stderr, r.Source, r.ParseErrors)
		} else {
			fmt.Fprintln(out, r.Output)
		}
		if r.Failed() {
			status = 1
		}
	}
	return status
}

func runREPL(ctx context.Context, config util.Configuration, out io.Writer) int {
	var recorder repl.Recorder
	if config.HistoryDSN != "" {
		store, err := history.Open(ctx, config.HistoryDriver, config.HistoryDSN)
		if err != nil {
			slog.Warn("history disabled", slog.Any("error", err))
			fmt.Fprintf(os.Stderr, "monkey: history disabled: %v\n", err)
		} else {
			defer store.Close()
			recorder = store
		}
	}

	session := repl.NewSession(ctx, out, config, recorder)
	slog.Info("session started", slog.String("session", session.ID))

	fmt.Fprintf(out, "Monkey %s. Type :help for commands.\n", config.Version)
	if err := repl.StartInteractive(session); err != nil {
		slog.Error("repl stopped", slog.Any("error", err))
		return 1
	}
	return 0
}

func printVersion() {
	fmt.Printf("monkey version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: monkey [options] [file...]

Options:
  -e <source>             Evaluate <source> and print the result.
  -tokens                 Print the tokens of each program instead of running it.
  -debug-ast <format>     Print the AST of each program as json or yaml.
  -jobs <n>               Number of files evaluated at once. Default is 4.
  -config <path>          Read settings from a TOML file.
  -history-driver <name>  REPL history database: sqlite3, mysql or postgres. Default is sqlite3.
  -history-dsn <dsn>      REPL history database DSN. History is off when empty.
  -help                   Display this help information and exit.
  -version                Display version information and exit.
  -log-level <level>      Set the log level: debug, info, warn, error, none. Default is 'none'.
  -log-file <path>        Specify a log file to write logs. Default is stderr.

Details:
Without files or -e an interactive REPL starts. -e and file arguments are
exclusive. Each file runs in its own environment. The exit status is 1 when
a program fails to parse or evaluates to an error, and 2 on a usage or
configuration error.

Examples:
  monkey                                   Start the REPL
  monkey -e 'len([1, 2, 3])'               Evaluate a snippet
  monkey a.monkey b.monkey                 Run two programs
  monkey -history-dsn ~/.monkey.db         Keep REPL history in sqlite

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
