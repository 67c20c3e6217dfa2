package comicfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// defaultToolTimeout bounds a single external tool invocation.
const defaultToolTimeout = 30 * time.Second

// ExtractTool locates and invokes the external RAR extraction tool.
//
// Resolution happens once per tool instance; the outcome (including a
// missing tool) is cached so RAR locators fail fast for the rest of the
// session instead of probing the environment on every open.
type ExtractTool struct {
	names    []string
	lookPath func(string) (string, error)
	timeout  time.Duration

	once sync.Once
	path string
	err  error
}

// NewExtractTool creates a resolver that tries the given executable
// names in order on PATH.
func NewExtractTool(names ...string) *ExtractTool {
	return &ExtractTool{
		names:    names,
		lookPath: exec.LookPath,
		timeout:  defaultToolTimeout,
	}
}

// defaultExtractTool is the session-wide resolver used when no tool is
// injected via WithExtractTool.
var defaultExtractTool = NewExtractTool("unrar")

// Resolve returns the tool's executable path, or [ErrExternalToolMissing].
func (t *ExtractTool) Resolve() (string, error) {
	t.once.Do(func() {
		for _, name := range t.names {
			if p, err := t.lookPath(name); err == nil {
				t.path = p
				return
			}
		}
		t.err = fmt.Errorf("%w: no %s on PATH", ErrExternalToolMissing, strings.Join(t.names, " or "))
	})
	return t.path, t.err
}

// List returns the entry names of archivePath via the tool's bare
// listing mode.
func (t *ExtractTool) List(ctx context.Context, archivePath string) ([]string, error) {
	out, err := t.run(ctx, "lb", "-c-", archivePath)
	if err != nil {
		return nil, err
	}
	var names []string
	for line := range strings.Lines(string(out)) {
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// ExtractFile extracts a single entry into a scoped temporary directory,
// reads it, and removes the directory on every exit path.
func (t *ExtractTool) ExtractFile(ctx context.Context, archivePath, name string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "comicfs-rar-")
	if err != nil {
		return nil, fmt.Errorf("comicfs: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	// A trailing separator makes the tool treat the argument as the
	// destination directory.
	if _, err := t.run(ctx, "x", "-y", archivePath, name, dir+string(os.PathSeparator)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q not produced by extraction", ErrExternalToolFailure, name)
		}
		return nil, fmt.Errorf("comicfs: read extracted %q: %w", name, err)
	}
	return data, nil
}

func (t *ExtractTool) run(ctx context.Context, args ...string) ([]byte, error) {
	path, err := t.Resolve()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %s timed out after %s", ErrExternalToolFailure, args[0], t.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrExternalToolFailure, args[0], msg)
	}
	return stdout.Bytes(), nil
}
