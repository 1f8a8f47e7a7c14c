package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// ANSI color/style codes
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	cyan   = "\033[36m"
	green  = "\033[32m"
	red    = "\033[31m"
	white  = "\033[97m"
	yellow = "\033[33m"
)

var (
	mu    sync.Mutex
	out   io.Writer = os.Stderr
	color           = isTerminal(os.Stderr)
)

// SetOutput redirects all messages to w. Color is kept only when w is a
// terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	color = isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// s wraps text with ANSI codes only when the output is a TTY.
func s(codes, text string) string {
	if !color {
		return text
	}
	return codes + text + reset
}

func printf(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, format, a...)
}

// Banner prints the startup line of a worker.
//
//	keep-awake v0.1.0  pid 4242
func Banner(version string, pid int) {
	printf("%s %s  %s\n", s(bold+cyan, "keep-awake"), s(dim, "v"+version), s(dim, fmt.Sprintf("pid %d", pid)))
}

// KeyValue prints a labeled line:  ▸ label  value
func KeyValue(label, value string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "  %s %-11s %s\n", s(cyan, "▸"), s(dim, label), s(white, value))
}

// Success prints a success line:  ✔ message
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	printf("  %s %s\n", s(green, "✔"), msg)
}

// Warn prints a warning line:  ▲ message
func Warn(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	printf("  %s %s\n", s(yellow, "▲"), msg)
}

// Error prints an error line:  ✖ message
func Error(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	printf("  %s %s\n", s(red, "✖"), msg)
}
