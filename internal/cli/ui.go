package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives all user-facing output. Logs go to the CLI logger.
var stdout io.Writer = os.Stdout

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorText   = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)

	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

// status is the leading marker of a one-line message.
type status struct {
	icon  string
	style lipgloss.Style
	tint  bool // also colour the message
}

var (
	statusOK   = status{"✓", lipgloss.NewStyle().Foreground(colorOK), false}
	statusFail = status{"✗", lipgloss.NewStyle().Foreground(colorFail), false}
	statusWarn = status{"!", lipgloss.NewStyle().Foreground(colorWarn), true}
	statusInfo = status{"›", lipgloss.NewStyle().Foreground(colorLabel), false}
)

func (s status) println(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.tint {
		msg = s.style.Render(msg)
	}
	fmt.Fprintln(stdout, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { statusOK.println(format, args...) }
func printError(format string, args ...any)   { statusFail.println(format, args...) }
func printWarning(format string, args ...any) { statusWarn.println(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.println(format, args...) }

// printDetail prints an indented, muted line under a status message.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written artifact.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints a hierarchy summary line such as
// "40 clusters · 3 levels · 2 excluded · cached".
func printStats(clusters, levels, excluded int, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d clusters", clusters)),
		StyleDim.Render(fmt.Sprintf("%d levels", levels)),
	}
	if excluded > 0 {
		parts = append(parts, statusWarn.style.Render(fmt.Sprintf("%d excluded", excluded)))
	}
	if cached {
		parts = append(parts, statusOK.style.Render("cached"))
	} else {
		parts = append(parts, StyleDim.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+StyleHighlight.Render(cmd))
}

// levelColors cycles through depths in the tree, table and point map.
var levelColors = []lipgloss.Color{"36", "75", "176", "179", "114", "210"}

func levelStyle(depth int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(levelColors[depth%len(levelColors)])
}
