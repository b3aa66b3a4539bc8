package cliagent

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	colorUser      = color.New(color.FgCyan, color.Bold)
	colorAssistant = color.New(color.FgGreen)
	colorSystem    = color.New(color.FgWhite, color.Faint)
	colorError     = color.New(color.FgRed)
)

func formatUser(s string) string      { return colorUser.Sprint(s) }
func formatAssistant(s string) string { return colorAssistant.Sprint(s) }
func formatSystem(s string) string    { return colorSystem.Sprint(s) }
func formatError(s string) string     { return colorError.Sprint(s) }

// termWidth returns the terminal width, or a sensible default if detection
// fails (piped output, non-tty stdout).
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// wrapToWidth breaks text into lines of at most width runes. Japanese
// sentences carry no word-separating spaces, so this wraps by rune count
// rather than the teacher's space-delimited word wrap.
func wrapToWidth(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	for _, rawLine := range strings.Split(text, "\n") {
		runes := []rune(rawLine)
		if len(runes) == 0 {
			lines = append(lines, "")
			continue
		}
		for len(runes) > width {
			lines = append(lines, string(runes[:width]))
			runes = runes[width:]
		}
		lines = append(lines, string(runes))
	}
	return lines
}
