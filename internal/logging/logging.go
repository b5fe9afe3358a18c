// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	clog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Options controls Setup.
type Options struct {
	// Quiet only lets errors through.
	Quiet bool
	// Verbose enables debug output.
	Verbose bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Setup replaces L according to opts. Output that is not a terminal (the
// hook usually runs inside a container entrypoint) is written as logfmt.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := clog.InfoLevel
	switch {
	case opts.Quiet:
		level = clog.ErrorLevel
	case opts.Verbose:
		level = clog.DebugLevel
	}

	l := clog.NewWithOptions(out, clog.Options{
		ReportTimestamp: true,
		Prefix:          "hook",
		Level:           level,
	})
	if isTerminal(out) {
		l.SetStyles(levelStyles())
	} else {
		l.SetFormatter(clog.LogfmtFormatter)
	}
	L = l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func levelStyles() *clog.Styles {
	st := clog.DefaultStyles()
	st.Levels[clog.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("204")).
		Foreground(lipgloss.Color("0"))
	st.Levels[clog.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(lipgloss.Color("214"))
	return st
}
