// Package tui provides the interactive terminal dashboard for qatrack.
package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/policy"
	"github.com/fentz26/qatrack/internal/query"
	"github.com/fentz26/qatrack/internal/registry"
	"github.com/fentz26/qatrack/internal/report"
	"github.com/fentz26/qatrack/internal/store"
)

var statusFilters = []string{query.StatusAll, "Passed", "Failed", "In Progress", "Blocked"}

var sortKeys = []string{"", query.SortNameAsc, query.SortNameDesc, query.SortStatus, query.SortFailuresDesc}
var sortNames = []string{"NONE", "NAME A-Z", "NAME Z-A", "STATUS", "FAILURES"}

// promptState tracks an in-flight quick-update prompt sequence. Answers are
// collected stage by stage and replayed through the policy as a script, so
// the applied patch is identical to a blocking-prompt flow.
type promptState struct {
	id        string
	name      string
	target    models.Status
	stage     int // 0 = reason prompt, 1 = failure count prompt
	input     textinput.Model
	responses []policy.Response
}

// App is the dashboard TUI model.
type App struct {
	reg *registry.Registry
	st  *store.Store

	release string
	dark    bool

	envIdx      int
	filterIdx   int
	sortIdx     int
	search      textinput.Model
	searching   bool
	modules     []models.Module
	selectedIdx int
	summary     report.Summary
	prompt      *promptState
	message     string
	width       int
	height      int
}

// New creates the dashboard. env selects the starting environment context.
func New(reg *registry.Registry, st *store.Store, env models.Environment) *App {
	ti := textinput.New()
	ti.Placeholder = "search by name"
	ti.CharLimit = 64
	ti.Width = 30

	envIdx := 0
	for i, e := range models.Environments {
		if e == env {
			envIdx = i
		}
	}

	a := &App{reg: reg, st: st, envIdx: envIdx, search: ti}
	a.release, _ = st.Release()
	a.dark, _ = st.Dark()
	a.refresh()
	return a
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		if a.prompt != nil {
			return a.updatePrompt(msg)
		}
		if a.searching {
			return a.updateSearch(msg)
		}
		return a.updateList(msg)
	}
	return a, nil
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit

	case "up", "k":
		if a.selectedIdx > 0 {
			a.selectedIdx--
		}

	case "down", "j":
		if a.selectedIdx < len(a.modules)-1 {
			a.selectedIdx++
		}

	case "tab":
		a.envIdx = (a.envIdx + 1) % len(models.Environments)
		a.selectedIdx = 0
		a.refresh()

	case "f":
		a.filterIdx = (a.filterIdx + 1) % len(statusFilters)
		a.refresh()

	case "s":
		a.sortIdx = (a.sortIdx + 1) % len(sortKeys)
		a.refresh()

	case "/":
		a.searching = true
		a.search.Focus()
		return a, textinput.Blink

	case "1", "2", "3", "4":
		n, _ := strconv.Atoi(msg.String())
		return a.startQuickUpdate(models.Statuses[n-1])

	case "d":
		if m, ok := a.selected(); ok {
			if err := a.reg.Remove(m.ID); err != nil {
				a.message = "Error: " + err.Error()
			} else {
				a.message = fmt.Sprintf("Deleted %s", m.Name)
			}
			a.refresh()
		}

	case "t":
		a.dark = !a.dark
		if err := a.st.SetDark(a.dark); err != nil {
			a.message = "Error: " + err.Error()
		}

	case "r":
		a.refresh()
		a.message = "Refreshed"
	}
	return a, nil
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searching = false
		a.search.Blur()
		return a, nil
	case "esc":
		a.searching = false
		a.search.SetValue("")
		a.search.Blur()
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.refresh()
	return a, cmd
}

// startQuickUpdate begins the prompt sequence for moving the selected
// module to target. Transitions without prompts apply immediately.
func (a *App) startQuickUpdate(target models.Status) (tea.Model, tea.Cmd) {
	m, ok := a.selected()
	if !ok {
		return a, nil
	}
	if m.Status == target {
		a.message = fmt.Sprintf("%s is already %s", m.Name, target)
		return a, nil
	}

	if target != models.StatusFailed && target != models.StatusBlocked {
		a.applyQuickUpdate(m.ID, m.Name, target, nil)
		return a, nil
	}

	ti := textinput.New()
	ti.SetValue(m.Reason)
	ti.CharLimit = 200
	ti.Width = 50
	ti.Focus()

	a.prompt = &promptState{
		id:     m.ID,
		name:   m.Name,
		target: target,
		input:  ti,
	}
	return a, textinput.Blink
}

func (a *App) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.prompt

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		p.responses = append(p.responses, policy.Cancelled())
		return a.advancePrompt()

	case "enter":
		p.responses = append(p.responses, policy.Accept(p.input.Value()))
		return a.advancePrompt()
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return a, cmd
}

// advancePrompt moves to the failure-count stage for Failed transitions, or
// applies the collected answers.
func (a *App) advancePrompt() (tea.Model, tea.Cmd) {
	p := a.prompt
	if p.target == models.StatusFailed && p.stage == 0 {
		m, ok := a.reg.Get(p.id)
		if !ok {
			a.prompt = nil
			return a, nil
		}
		p.stage = 1
		ti := textinput.New()
		ti.SetValue(strconv.Itoa(m.Failures + 1))
		ti.CharLimit = 10
		ti.Width = 10
		ti.Focus()
		p.input = ti
		return a, textinput.Blink
	}

	id, name, target, responses := p.id, p.name, p.target, p.responses
	a.prompt = nil
	a.applyQuickUpdate(id, name, target, responses)
	return a, nil
}

func (a *App) applyQuickUpdate(id, name string, target models.Status, responses []policy.Response) {
	if err := policy.Apply(a.reg, id, target, &policy.Script{Responses: responses}); err != nil {
		a.message = "Error: " + err.Error()
	} else {
		a.message = fmt.Sprintf("%s set to %s", name, target)
	}
	a.refresh()
}

// refresh re-derives the visible module list and summary from the registry.
func (a *App) refresh() {
	all := a.reg.All()
	env := a.environment()

	a.modules = query.Filter(all, query.Options{
		Environment: env,
		Status:      statusFilters[a.filterIdx],
		Search:      a.search.Value(),
		Sort:        sortKeys[a.sortIdx],
	})

	scoped := query.Filter(all, query.Options{Environment: env})
	a.summary = report.Summarize(scoped)

	if a.selectedIdx >= len(a.modules) {
		a.selectedIdx = maxInt(0, len(a.modules)-1)
	}
}

func (a *App) environment() models.Environment {
	return models.Environments[a.envIdx]
}

func (a *App) selected() (models.Module, bool) {
	if len(a.modules) == 0 {
		return models.Module{}, false
	}
	return a.modules[a.selectedIdx], true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
