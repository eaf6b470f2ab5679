package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/qatrack/internal/models"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	infoColor    = lipgloss.Color("#6366F1")
	mutedColor   = lipgloss.Color("#6B7280")
	lightFg      = lipgloss.Color("#111827")
	darkFg       = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(darkFg).
			Padding(0, 1)

	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(darkFg).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	fg := lightFg
	if a.dark {
		fg = darkFg
	}
	rowStyle := lipgloss.NewStyle().Foreground(fg)

	// Header
	header := titleStyle.Render("QATRACK Module Quality Dashboard")
	header += "  " + mutedStyle.Render("release:") + " " + a.release
	header += "  " + a.renderEnvTabs()
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", maxInt(a.width, 20)) + "\n")

	// Summary bar
	b.WriteString(a.renderSummary() + "\n")

	// Filter line
	filterLine := fmt.Sprintf(" Filter: [%s]  Sort: [%s]", statusFilters[a.filterIdx], sortNames[a.sortIdx])
	if a.search.Value() != "" || a.searching {
		filterLine += "  Search: " + a.search.View()
	}
	b.WriteString(mutedStyle.Render(filterLine) + "\n\n")

	// Module table
	b.WriteString(a.renderTable(rowStyle))

	// Message bar
	if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString("\n" + msgStyle.Render(a.message) + "\n")
	} else {
		b.WriteString("\n\n")
	}

	// Prompt overlay
	if a.prompt != nil {
		b.WriteString("\n" + a.renderPrompt() + "\n")
	}

	// Status bar
	status := " ↑↓:nav | 1-4:set Passed/Failed/In Progress/Blocked | Tab:env | f:filter | s:sort | /:search | d:delete | t:theme | q:quit"
	b.WriteString("\n" + statusBarStyle.Width(maxInt(a.width, len(status))).Render(status))

	return b.String()
}

func (a *App) renderEnvTabs() string {
	var tabs []string
	for i, env := range models.Environments {
		if i == a.envIdx {
			tabs = append(tabs, selectedStyle.Render(" "+string(env)+" "))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+string(env)+" "))
		}
	}
	return strings.Join(tabs, "")
}

func (a *App) renderSummary() string {
	s := a.summary
	parts := []string{
		fmt.Sprintf("Total: %d", s.Total),
		lipgloss.NewStyle().Foreground(successColor).Render(fmt.Sprintf("Passed: %d", s.Passed)),
		lipgloss.NewStyle().Foreground(errorColor).Render(fmt.Sprintf("Failed: %d", s.Failed)),
		lipgloss.NewStyle().Foreground(warningColor).Render(fmt.Sprintf("In Progress/Blocked: %d", s.InProgressOrBlocked)),
		fmt.Sprintf("Pass Rate: %d%%", s.PassRate),
	}
	return " " + strings.Join(parts, "   ")
}

func (a *App) renderTable(rowStyle lipgloss.Style) string {
	if len(a.modules) == 0 {
		return mutedStyle.Render("  No modules found in " + string(a.environment()) + ".\n")
	}

	var b strings.Builder
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(infoColor)
	b.WriteString("  " + headerStyle.Render(fmt.Sprintf("%-28s %-13s %-26s %8s  %-9s %s",
		"NAME", "STATUS", "REASON", "FAILURES", "CHANNELS", "UPDATED")) + "\n")

	for i, m := range a.modules {
		name := fmt.Sprintf("%-28s", truncate(m.Name, 28))
		statusCell := fmt.Sprintf("%-13s", string(m.Status))
		rest := fmt.Sprintf("%-26s %8d  %-9s %s",
			truncate(orDash(m.Reason), 26),
			m.Failures,
			channelFlags(m.Channels),
			formatWhen(m.LastUpdated),
		)
		if i == a.selectedIdx {
			b.WriteString(selectedStyle.Render("▶ "+name+" "+statusCell+" "+rest) + "\n")
		} else {
			b.WriteString("  " + rowStyle.Render(name) + " " +
				statusStyle(m.Status).Render(statusCell) + " " +
				rowStyle.Render(rest) + "\n")
		}
	}
	return b.String()
}

func (a *App) renderPrompt() string {
	p := a.prompt
	var label string
	if p.stage == 0 {
		label = fmt.Sprintf("Enter reason for %s (optional) — Enter to accept, Esc to skip", p.target)
	} else {
		label = "Update failure count? — Enter to accept, Esc to skip"
	}
	return promptBoxStyle.Render(label + "\n" + p.input.View())
}

func statusStyle(status models.Status) lipgloss.Style {
	switch status {
	case models.StatusPassed:
		return lipgloss.NewStyle().Foreground(successColor)
	case models.StatusFailed:
		return lipgloss.NewStyle().Foreground(errorColor)
	case models.StatusInProgress:
		return lipgloss.NewStyle().Foreground(warningColor)
	case models.StatusBlocked:
		return lipgloss.NewStyle().Foreground(infoColor)
	default:
		return mutedStyle
	}
}

// channelFlags renders the channel map as a fixed-order letter set, with a
// dot for unavailable channels, e.g. "v s . e".
func channelFlags(channels map[string]bool) string {
	var parts []string
	for _, name := range models.ChannelNames {
		if channels[name] {
			parts = append(parts, name[:1])
		} else {
			parts = append(parts, ".")
		}
	}
	return strings.Join(parts, " ")
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
