// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"bytes"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

// TestLoggingHelpers_WriteToBuffer verifies the package helper functions write
// formatted messages to the package-level logger `L`. The test swaps `L` with
// a buffer-backed logger and restores it afterwards.
func TestLoggingHelpers_WriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	L.SetLevel(clog.DebugLevel)
	defer func() { L = prev }()

	Debugf("hello %s", "dbg")
	Infof("info %d", 1)
	Warnf("warn")
	Errorf("err %v", "E")

	out := buf.String()
	for _, want := range []string{"hello dbg", "info 1", "warn", "err E"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output; got: %s", want, out)
		}
	}
}

func TestSetup_Levels(t *testing.T) {
	prev := L
	defer func() { L = prev }()

	var buf bytes.Buffer
	Setup(Options{Quiet: true, Output: &buf})
	Infof("should not appear")
	Errorf("boom")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatalf("quiet mode must drop info lines: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("quiet mode must keep errors: %s", buf.String())
	}

	buf.Reset()
	Setup(Options{Verbose: true, Output: &buf})
	Debugf("details %d", 42)
	if !strings.Contains(buf.String(), "details 42") {
		t.Fatalf("verbose mode must emit debug lines: %s", buf.String())
	}
	// a bytes.Buffer is not a terminal, so lines are logfmt
	if !strings.Contains(buf.String(), "level=debug") {
		t.Fatalf("expected logfmt output, got: %s", buf.String())
	}
}
