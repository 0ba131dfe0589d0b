package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// colorizeConfidence wraps a rendered confidence cell in a color matching its
// label when the writer is a terminal.
func colorizeConfidence(value string, label string, colorize bool) string {
	if !colorize {
		return value
	}
	switch label {
	case "High":
		return ansiGreen + value + ansiReset
	case "Medium":
		return ansiYellow + value + ansiReset
	default:
		return ansiRed + value + ansiReset
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatConfidence(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04")
}

func formatOptional(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
