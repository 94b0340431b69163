package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// LevelNone sits above every slog level, so nothing is emitted.
const LevelNone = slog.Level(12)

// FileWriter is an io.Writer over a log file that can be reopened in place
// after the file has been moved by a rotation tool.
type FileWriter struct {
	path string
	mu   sync.Mutex
	fh   *os.File
}

func OpenFile(path string) (*FileWriter, error) {
	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for '%s': %w", path, err)
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file '%s': %w", path, err)
	}
	return &FileWriter{path: path, fh: fh}, nil
}

func (w *FileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh == nil {
		return 0, os.ErrClosed
	}
	return w.fh.Write(p)
}

// Reopen closes the current handle and opens path again.
func (w *FileWriter) Reopen() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh != nil {
		_ = w.fh.Close()
	}
	fh, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		w.fh = nil
		return fmt.Errorf("could not reopen log file: %w", err)
	}
	w.fh = fh
	return nil
}

func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fh == nil {
		return nil
	}
	err := w.fh.Close()
	w.fh = nil
	return err
}

// watchRotation reopens w on every SIGHUP until stop is closed.
//
//	mv monkey.log monkey.bak && kill -HUP <pid>
func watchRotation(w *FileWriter, stop <-chan struct{}) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-sigs:
				if err := w.Reopen(); err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
				}
			case <-stop:
				return
			}
		}
	}()
}

func LevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// NewLogger builds a JSON logger writing to out.
func NewLogger(out io.Writer, level string) *slog.Logger {
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     LevelFromString(level),
	}
	return slog.New(slog.NewJSONHandler(out, loggerOptions))
}

// Setup installs the default slog logger. With an empty file the logger
// writes to fallback. The returned func releases the log file.
func Setup(level, file string, fallback io.Writer) (func(), error) {
	if file == "" {
		slog.SetDefault(NewLogger(fallback, level))
		return func() {}, nil
	}

	w, err := OpenFile(file)
	if err != nil {
		slog.SetDefault(NewLogger(fallback, level))
		return func() {}, err
	}

	slog.SetDefault(NewLogger(w, level))

	stop := make(chan struct{})
	watchRotation(w, stop)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			_ = w.Close()
		})
	}, nil
}
