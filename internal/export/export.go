// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package export runs the application's scheduler:export console command
// for a store and decodes the jobs and categories it prints.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spryker/cronicle-hook/internal/logging"
	"github.com/spryker/cronicle-hook/internal/model"
)

// Data is the payload printed by scheduler:export.
type Data struct {
	Jobs       []model.Job      `json:"jobData"`
	Categories []model.Category `json:"categoryData"`
}

// ParsePayload decodes the export output. Anything the console prints
// before the payload is ignored, including notices such as
// "[WARNING] ..." that contain brackets themselves.
func ParsePayload(out []byte) (*Data, error) {
	start := bytes.IndexAny(out, "[{")
	if start < 0 {
		return nil, errors.New("export output contains no JSON")
	}
	var firstErr error
	for start >= 0 {
		d, err := decodeAt(out[start:])
		if err == nil {
			return d, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		next := bytes.IndexAny(out[start+1:], "[{")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, fmt.Errorf("decode export output: %w", firstErr)
}

func decodeAt(b []byte) (*Data, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var d Data
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Command describes one console invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the current process environment.
	Env []string
}

// Runner executes a Command and returns its stdout and stderr.
type Runner interface {
	Run(ctx context.Context, cmd Command) (stdout, stderr []byte, err error)
}

// waitDelay bounds how long Run waits for the output pipes to close once the
// command was cancelled. Children of a wrapper script can keep them open.
const waitDelay = 2 * time.Second

// ExecRunner runs commands with os/exec. On cancellation the whole process
// group is killed where the platform supports it.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Command) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ExportError is returned when the export command fails.
type ExportError struct {
	Store    string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExportError) Error() string {
	msg := fmt.Sprintf("scheduler export for store %s failed", e.Store)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExportError) Unwrap() error { return e.Err }

// Options configure an Exporter.
type Options struct {
	ProjectRoot string
	Console     string
	Scheduler   string
	Timeout     time.Duration
}

// Exporter fetches the export of one store at a time.
type Exporter struct {
	runner Runner
	opts   Options
}

// New returns an Exporter. A nil runner uses ExecRunner.
func New(runner Runner, opts Options) *Exporter {
	if runner == nil {
		runner = ExecRunner{}
	}
	if opts.Console == "" {
		opts.Console = "vendor/bin/console"
	}
	return &Exporter{runner: runner, opts: opts}
}

// Command returns the invocation used for store.
func (x *Exporter) Command(store string) Command {
	return Command{
		Name: x.opts.Console,
		Args: []string{"scheduler:export", x.opts.Scheduler},
		Dir:  x.opts.ProjectRoot,
		Env:  []string{"APPLICATION_STORE=" + store},
	}
}

// Export runs the export for store.
func (x *Exporter) Export(ctx context.Context, store string) (*Data, error) {
	if x.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.opts.Timeout)
		defer cancel()
	}

	c := x.Command(store)
	logging.Debugf("export: APPLICATION_STORE=%s %s %s (in %s)", store, c.Name, strings.Join(c.Args, " "), c.Dir)
	stdout, stderr, err := x.runner.Run(ctx, c)
	errText := strings.TrimSpace(string(stderr))
	if err != nil {
		xe := &ExportError{Store: store, Stderr: errText, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			xe.ExitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			xe.Err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return nil, xe
	}
	if errText != "" {
		logging.Warnf("export for store %s wrote to stderr: %s", store, errText)
	}

	data, err := ParsePayload(stdout)
	if err != nil {
		return nil, &ExportError{Store: store, Err: err}
	}
	logging.Debugf("export: store %s returned %d jobs, %d categories", store, len(data.Jobs), len(data.Categories))
	return data, nil
}
