// Package ui renders console output: a spinner-backed progress logger
// and the end-of-run summary table.
package ui

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Logger writes progress to stderr so stdout stays clean for the summary.
// One spinner can be active at a time; log lines while it spins are
// printed above it.
type Logger struct {
	mu       sync.Mutex
	msg      string
	spinning bool
	done     chan struct{}
	plain    bool
}

// NewLogger creates a console logger. Plain mode disables the spinner
// animation and colors survive lipgloss's own TTY detection.
func NewLogger(plain bool) *Logger {
	return &Logger{plain: plain}
}

// Log prints an informational line. An active spinner repaints on its
// next tick.
func (l *Logger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearLine()
	fmt.Fprintln(os.Stderr, infoStyle.Render(msg))
}

// Warn prints a highlighted warning line.
func (l *Logger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearLine()
	fmt.Fprintln(os.Stderr, warnStyle.Render("! "+msg))
}

// StartSpinner begins an animated status line.
func (l *Logger) StartSpinner(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.spinning {
		l.stopLocked()
	}
	l.msg = msg
	l.spinning = true
	if l.plain {
		fmt.Fprintln(os.Stderr, infoStyle.Render("… "+msg))
		return
	}
	l.done = make(chan struct{})
	go l.spin(l.done)
}

// UpdateSpinner replaces the active status text.
func (l *Logger) UpdateSpinner(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msg = msg
}

// StopSpinner ends the spinner with a success mark.
func (l *Logger) StopSpinner(msg string) {
	l.finish(okStyle.Render("✓ " + msg))
}

// StopSpinnerFail ends the spinner with a failure mark.
func (l *Logger) StopSpinnerFail(msg string) {
	l.finish(failStyle.Render("✗ " + msg))
}

func (l *Logger) finish(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
	fmt.Fprintln(os.Stderr, line)
}

func (l *Logger) stopLocked() {
	if !l.spinning {
		return
	}
	l.spinning = false
	if l.done != nil {
		close(l.done)
		l.done = nil
	}
	l.clearLine()
}

func (l *Logger) spin(done chan struct{}) {
	ticker := time.NewTicker(90 * time.Millisecond)
	defer ticker.Stop()
	frame := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			l.mu.Lock()
			if l.spinning {
				fmt.Fprintf(os.Stderr, "\r\033[K%s %s",
					spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), l.msg)
			}
			l.mu.Unlock()
			frame++
		}
	}
}

func (l *Logger) clearLine() {
	if !l.plain {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}
