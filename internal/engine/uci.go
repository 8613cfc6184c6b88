package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

var errNotStarted = errors.New("engine not started")

// UCIEngine is a session with one UCI engine subprocess.
type UCIEngine struct {
	path string
	args []string

	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	// readErr is set before lines is closed.
	readErr error

	searchTimeout time.Duration
}

func NewUCIEngine(path string, args []string) *UCIEngine {
	return &UCIEngine{path: path, args: args}
}

// Name is the engine binary's base name, for logs.
func (e *UCIEngine) Name() string {
	return engineDisplayName(e.path, "engine")
}

func (e *UCIEngine) Start(ctx context.Context) error {
	e.cmd = exec.CommandContext(ctx, e.path, e.args...)
	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return err
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", e.path, err)
	}

	e.lines = make(chan string, 64)
	go e.readLoop(stdout)

	if err := e.Send("uci"); err != nil {
		return err
	}
	if _, err := e.ReadUntilPrefix(ctx, "uciok", 5*time.Second); err != nil {
		return err
	}

	return nil
}

func (e *UCIEngine) readLoop(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		e.lines <- sc.Text()
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	e.readErr = err
	close(e.lines)
}

func (e *UCIEngine) Close() error {
	if e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	if e.stdin != nil {
		_ = e.Send("quit")
		_ = e.stdin.Close()
	}

	done := make(chan error, 1)
	go func() {
		// drain so the reader goroutine can finish
		for range e.lines {
		}
		done <- e.cmd.Wait()
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		_ = e.cmd.Process.Kill()
		return <-done
	}
}

func (e *UCIEngine) Send(line string) error {
	if e.stdin == nil {
		return errNotStarted
	}
	_, err := io.WriteString(e.stdin, line+"\n")
	return err
}

// ReadLine returns the next line from the engine. A zero timeout waits until
// ctx is done.
func (e *UCIEngine) ReadLine(ctx context.Context, timeout time.Duration) (string, error) {
	if e.lines == nil {
		return "", errNotStarted
	}
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-deadline:
		return "", errTimeout
	case line, ok := <-e.lines:
		if !ok {
			return "", e.readErr
		}
		return strings.TrimSpace(line), nil
	}
}

func (e *UCIEngine) ReadUntilPrefix(ctx context.Context, prefix string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return "", fmt.Errorf("timeout waiting for %q", prefix)
		}
		line, err := e.ReadLine(ctx, left)
		if errors.Is(err, errTimeout) {
			return "", fmt.Errorf("timeout waiting for %q", prefix)
		}
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, prefix) {
			return line, nil
		}
	}
}

func (e *UCIEngine) IsReady(ctx context.Context) error {
	if err := e.Send("isready"); err != nil {
		return err
	}
	_, err := e.ReadUntilPrefix(ctx, "readyok", 30*time.Second)
	return err
}

func (e *UCIEngine) NewGame(ctx context.Context) error {
	if err := e.Send("ucinewgame"); err != nil {
		return err
	}
	return e.IsReady(ctx)
}
