// Package shell supervises the backend process for the desktop build.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// InstallPathEnv carries the installation directory to the backend.
const InstallPathEnv = "PCQUOTE_INSTALL_PATH"

const (
	DefaultReadyTimeout = 30 * time.Second
	DefaultPollInterval = time.Second
	DefaultStopTimeout  = 5 * time.Second
)

var (
	ErrAlreadyStarted = errors.New("backend already started")
	ErrNotStarted     = errors.New("backend not started")
	ErrExited         = errors.New("backend exited")
	ErrNotReady       = errors.New("backend not ready")
)

type Options struct {
	Binary      string
	Args        []string
	Env         []string
	InstallPath string
	HealthURL   string

	ReadyTimeout time.Duration
	PollInterval time.Duration
	StopTimeout  time.Duration

	Stdout io.Writer
	Stderr io.Writer
	Log    logrus.FieldLogger
}

type Supervisor struct {
	opts   Options
	client *http.Client

	mu      sync.Mutex
	cmd     *exec.Cmd
	done    chan struct{}
	exitErr error
}

func NewSupervisor(opts Options) *Supervisor {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Supervisor{
		opts:   opts,
		client: &http.Client{Timeout: opts.PollInterval},
		done:   make(chan struct{}),
	}
}

// Start spawns the backend. The child outlives ctx; use Stop to end it.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil {
		return ErrAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(s.opts.Binary, s.opts.Args...)
	cmd.Env = append(os.Environ(), s.opts.Env...)
	if s.opts.InstallPath != "" {
		cmd.Env = append(cmd.Env, InstallPathEnv+"="+s.opts.InstallPath)
		cmd.Dir = s.opts.InstallPath
	}
	cmd.Stdout = s.opts.Stdout
	cmd.Stderr = s.opts.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start backend %s: %w", s.opts.Binary, err)
	}
	s.cmd = cmd
	s.opts.Log.WithFields(logrus.Fields{"pid": cmd.Process.Pid, "binary": s.opts.Binary}).Info("backend started")

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.exitErr = err
		s.mu.Unlock()
		s.opts.Log.WithError(err).Info("backend exited")
		close(s.done)
	}()
	return nil
}

// Done is closed once the child has exited.
func (s *Supervisor) Done() <-chan struct{} { return s.done }

// Err returns the child's exit error after Done is closed.
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitErr
}

func (s *Supervisor) started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// WaitReady polls the health URL until it answers 2xx, the ready timeout
// elapses or the child exits.
func (s *Supervisor) WaitReady(ctx context.Context) error {
	if !s.started() {
		return ErrNotStarted
	}
	backoff := retry.WithMaxDuration(s.opts.ReadyTimeout, retry.NewConstant(s.opts.PollInterval))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		select {
		case <-s.done:
			return ErrExited
		default:
		}
		if err := s.checkHealth(ctx); err != nil {
			s.opts.Log.WithError(err).Debugf("health check %d failed", attempt)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrExited) || errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w after %s: %v", ErrNotReady, s.opts.ReadyTimeout, err)
	}
	s.opts.Log.WithField("attempts", attempt).Info("backend ready")
	return nil
}

func (s *Supervisor) checkHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.HealthURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}

// Stop interrupts the child and kills it when it outlives the grace period
// or ctx.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()
	if cmd == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	default:
	}

	if err := interrupt(cmd.Process); err != nil {
		s.opts.Log.WithError(err).Warn("interrupt failed, killing backend")
		return s.kill(cmd)
	}

	grace := time.NewTimer(s.opts.StopTimeout)
	defer grace.Stop()
	select {
	case <-s.done:
		return nil
	case <-grace.C:
		s.opts.Log.Warnf("backend still running after %s, killing", s.opts.StopTimeout)
		return s.kill(cmd)
	case <-ctx.Done():
		if err := s.kill(cmd); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Supervisor) kill(cmd *exec.Cmd) error {
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill backend: %w", err)
	}
	<-s.done
	return nil
}

func interrupt(p *os.Process) error {
	// os.Interrupt is not delivered on windows.
	if runtime.GOOS == "windows" {
		return p.Kill()
	}
	return p.Signal(os.Interrupt)
}

// InstallPath returns the directory holding the running executable.
func InstallPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// ResolveBinary locates name inside dir unless it is already absolute.
func ResolveBinary(dir, name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
