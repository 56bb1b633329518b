package cli

import (
	"fmt"
	"time"

	"styledetect/internal/core/ports"
	"styledetect/internal/engine/styled"
	"styledetect/internal/shared/util"
	"styledetect/internal/ui/report/formats"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type panel int

const (
	panelMatches panel = iota
	panelFailures
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	matchList   list.Model
	failureList list.Model
	mode        panel
	projectRoot string

	// Latest report per path; updates only carry the files that changed.
	reports    map[string]*styled.FileReport
	failures   map[string]ports.FileFailure
	fileCount  int
	matchCount int
	lastUpdate time.Time
}

type updateMsg struct {
	update ports.WatchUpdate
}

func initialModel(projectRoot string, initial []*styled.FileReport) model {
	matches := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	matches.Title = "Styled templates"
	matches.SetShowStatusBar(false)
	matches.SetFilteringEnabled(true)

	failures := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	failures.Title = "Failed files"
	failures.SetShowStatusBar(false)
	failures.SetFilteringEnabled(false)

	m := model{
		matchList:   matches,
		failureList: failures,
		projectRoot: projectRoot,
		reports:     make(map[string]*styled.FileReport, len(initial)),
		failures:    make(map[string]ports.FileFailure),
		lastUpdate:  time.Now(),
	}
	for _, r := range initial {
		m.reports[r.Path] = r
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if m.mode == panelMatches {
				m.mode = panelFailures
			} else {
				m.mode = panelMatches
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.matchList.SetSize(msg.Width-h, msg.Height-v-4)
		m.failureList.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.apply(msg.update)
		return m, nil
	}

	var cmd tea.Cmd
	if m.mode == panelMatches {
		m.matchList, cmd = m.matchList.Update(msg)
	} else {
		m.failureList, cmd = m.failureList.Update(msg)
	}
	return m, cmd
}

func (m *model) apply(u ports.WatchUpdate) {
	for _, path := range u.Removed {
		delete(m.reports, path)
		delete(m.failures, path)
	}
	for _, r := range u.Reports {
		m.reports[r.Path] = r
		delete(m.failures, r.Path)
	}
	for _, f := range u.Failures {
		m.failures[f.Path] = f
	}
	if !u.Timestamp.IsZero() {
		m.lastUpdate = u.Timestamp
	}
	m.refresh()
}

func (m *model) refresh() {
	matchItems := []list.Item{}
	m.matchCount = 0
	for _, path := range util.SortedStringKeys(m.reports) {
		rel := util.RelativeSlashPath(m.projectRoot, path)
		for _, match := range m.reports[path].Matches() {
			m.matchCount++
			matchItems = append(matchItems, item{
				title: match.Kind.String(),
				desc:  formats.MatchLine(rel, match),
			})
		}
	}
	m.fileCount = len(m.reports)
	m.matchList.SetItems(matchItems)

	failureItems := []list.Item{}
	for _, path := range util.SortedStringKeys(m.failures) {
		failureItems = append(failureItems, item{
			title: util.RelativeSlashPath(m.projectRoot, path),
			desc:  m.failures[path].Error,
		})
	}
	m.failureList.SetItems(failureItems)
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d templates",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.matchCount))

	summary := successStyle.Render("all files analyzed")
	if n := len(m.failures); n > 0 {
		summary = failureStyle.Render(fmt.Sprintf("%d files failed", n))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Styled Template Monitor"), status, summary)
	body := m.matchList.View()
	if m.mode == panelFailures {
		body = m.failureList.View()
	}
	return docStyle.Render(header + "\n" + body)
}
