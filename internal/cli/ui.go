package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/photocollage/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

// printTitle prints a bold heading.
func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, styleTitle.Render(title))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printKeyValues prints labeled values with the labels padded to the
// longest key, so arbitrary setting names are never wrapped.
func printKeyValues(w io.Writer, keys []string, value func(string) string) {
	width := 0
	for _, k := range keys {
		width = max(width, lipgloss.Width(k))
	}
	style := styleKey.Width(width)
	for _, k := range keys {
		fmt.Fprintln(w, style.Render(k)+" "+styleValue.Render(value(k)))
	}
}

// printStats prints collage statistics on a single line.
func printStats(w io.Writer, stats pipeline.Stats, ci pipeline.CacheInfo) {
	parts := []string{
		styleNumber.Render(fmt.Sprintf("%d", stats.Photos)) + styleDim.Render(" photos"),
		styleDim.Render(fmt.Sprintf("%d×%d grid", stats.Cols, stats.Rows)),
		styleDim.Render(fmt.Sprintf("%d merged", stats.Merged)),
	}
	switch {
	case ci.Hits > 0 && ci.Misses == 0:
		parts = append(parts, styleCached.Render("cached"))
	case ci.Hits > 0:
		parts = append(parts, styleCached.Render(fmt.Sprintf("%d cached", ci.Hits)))
	default:
		parts = append(parts, styleComputed.Render("fresh"))
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, styleDim.Render(" · ")))
}

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, styleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
