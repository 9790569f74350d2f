// Package bridge hosts the MPXJ schedule reader in an external JVM and
// decodes the task dump it writes.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mppkit/mppconvert/pkg/config"
	"github.com/mppkit/mppconvert/pkg/schedule"
)

var (
	// ErrNoJars means the library directory holds no jar to put on the class path.
	ErrNoJars = errors.New("bridge: no jars found")
	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("bridge: runtime closed")
)

// Runtime is a started reader environment. It must be released with
// Close on every path, including failures.
type Runtime struct {
	java      string
	classPath string
	mainClass string
	jvmArgs   []string
	timeout   time.Duration
	workDir   string
	logger    *slog.Logger

	mu     sync.Mutex
	trace  bytes.Buffer
	closed bool
	once   sync.Once
}

// Option configures a Runtime.
type Option func(*Runtime)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// Open resolves the JVM launcher and the reader class path.
func Open(ctx context.Context, cfg config.BridgeConfig, opts ...Option) (*Runtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	java, err := exec.LookPath(cfg.Java)
	if err != nil {
		return nil, fmt.Errorf("bridge: java launcher %q: %w", cfg.Java, err)
	}

	jars, err := filepath.Glob(filepath.Join(cfg.LibDir, "*.jar"))
	if err != nil {
		return nil, fmt.Errorf("bridge: scan %s: %w", cfg.LibDir, err)
	}
	if len(jars) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoJars, cfg.LibDir)
	}

	workDir, err := os.MkdirTemp("", "mppconvert-bridge-")
	if err != nil {
		return nil, fmt.Errorf("bridge: create work dir: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	r := &Runtime{
		java:      java,
		classPath: strings.Join(jars, string(os.PathListSeparator)),
		mainClass: cfg.MainClass,
		jvmArgs:   cfg.JVMArgs,
		timeout:   timeout,
		workDir:   workDir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger.Debug("bridge opened", "java", java, "jars", len(jars), "main_class", cfg.MainClass)
	return r, nil
}

// Read runs the reader over one schedule file and decodes its dump.
func (r *Runtime) Read(ctx context.Context, path string) (*schedule.Dump, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out := filepath.Join(r.workDir, "dump.json")
	args := append([]string{}, r.jvmArgs...)
	args = append(args, "-cp", r.classPath, r.mainClass, path, out)

	cmd := exec.CommandContext(ctx, r.java, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.trace.Write(stderr.Bytes())
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("bridge: read %s: %w", path, ctx.Err())
		}
		msg := strings.TrimSpace(lastLine(stderr.String()))
		if msg == "" {
			return nil, fmt.Errorf("bridge: read %s: %w", path, err)
		}
		return nil, fmt.Errorf("bridge: read %s: %s: %w", path, msg, err)
	}
	r.logger.Debug("bridge read complete", "path", path, "elapsed", time.Since(start))

	defer os.Remove(out)
	return ReadFile(out)
}

// Trace returns everything the reader wrote to stderr so far.
func (r *Runtime) Trace() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trace.String()
}

// Close removes the work directory. It is safe to call more than once.
func (r *Runtime) Close() error {
	var err error
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		err = os.RemoveAll(r.workDir)
		r.logger.Debug("bridge closed")
	})
	return err
}

// ReadFile decodes a task dump that was written ahead of time.
func ReadFile(path string) (*schedule.Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a task dump document.
func Decode(r io.Reader) (*schedule.Dump, error) {
	var d schedule.Dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("bridge: decode dump: %w", err)
	}
	return &d, nil
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
