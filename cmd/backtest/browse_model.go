package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rxtech-lab/argo-backtest/internal/report"
)

// Browser states.
const (
	StateFolderInput = iota
	StateRunList
	StateRunDetail
)

// Model is the Bubble Tea model of the results browser.
type Model struct {
	state       int
	folderInput textinput.Model
	runList     list.Model
	detailTable table.Model
	folder      string
	runs        []RunEntry
	selected    RunEntry
	err         error
	width       int
	height      int
}

// NewModel creates a browser for folder. With an empty folder it starts by asking for one.
func NewModel(folder string) Model {
	m := Model{
		state:       StateFolderInput,
		folderInput: NewFolderInput(folder),
		runList:     NewRunList(),
		detailTable: NewDetailTable(),
		folder:      folder,
	}

	if folder != "" {
		m.state = StateRunList
		m.folderInput.Blur()
	}

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.state == StateRunList {
		return loadRuns(m.folder)
	}

	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateFolderInput && !m.runList.SettingFilter() {
				return m, tea.Quit
			}
		case "esc":
			if !m.runList.SettingFilter() {
				return m.handleEsc()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runList.SetSize(msg.Width, msg.Height-4)
		m.detailTable.SetWidth(msg.Width)
		m.detailTable.SetHeight(msg.Height - 6)

		return m, nil

	case RunsLoadedMsg:
		m.folder = msg.Folder
		m.runs = msg.Runs
		m.err = nil
		m.state = StateRunList
		m.folderInput.Blur()

		return m, m.runList.SetItems(RunListItems(msg.Runs))

	case LoadErrorMsg:
		m.err = msg.Err
		m.state = StateFolderInput
		m.folderInput.Focus()

		return m, textinput.Blink
	}

	switch m.state {
	case StateFolderInput:
		return m.updateFolderInput(msg)
	case StateRunList:
		return m.updateRunList(msg)
	case StateRunDetail:
		return m.updateRunDetail(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateRunList:
		m.runs = nil
		m.err = nil
		m.state = StateFolderInput
		m.folderInput.Focus()

		return m, tea.Batch(m.runList.SetItems(nil), textinput.Blink)
	case StateRunDetail:
		m.state = StateRunList
	}

	return m, nil
}

func (m Model) updateFolderInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		folder := strings.TrimSpace(m.folderInput.Value())
		if folder != "" {
			return m, loadRuns(folder)
		}
	}

	var cmd tea.Cmd
	m.folderInput, cmd = m.folderInput.Update(msg)

	return m, cmd
}

func (m Model) updateRunList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && !m.runList.SettingFilter() {
		if item, ok := m.runList.SelectedItem().(runItem); ok {
			m.selected = item.entry
			m.detailTable.SetRows(DetailRows(item.entry))
			m.detailTable.GotoTop()
			m.state = StateRunDetail

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.runList, cmd = m.runList.Update(msg)

	return m, cmd
}

func (m Model) updateRunDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.detailTable, cmd = m.detailTable.Update(msg)

	return m, cmd
}

// loadRuns returns a command that reads the runs stored in folder.
func loadRuns(folder string) tea.Cmd {
	return func() tea.Msg {
		runs, err := LoadRuns(folder)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return RunsLoadedMsg{Folder: folder, Runs: runs}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateFolderInput:
		s.WriteString(report.TitleStyle.Render("Browse Backtest Results"))
		s.WriteString("\n\n")
		s.WriteString("Enter the results folder:\n\n")
		s.WriteString(m.folderInput.View())
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(report.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(report.HelpStyle.Render("Press Enter to load, ctrl+c to quit"))

	case StateRunList:
		if len(m.runs) == 0 {
			s.WriteString(fmt.Sprintf("Loading %s...\n", m.folder))
			break
		}

		s.WriteString(m.runList.View())
		s.WriteString("\n")
		s.WriteString(report.HelpStyle.Render(fmt.Sprintf("Enter: details | /: filter | Esc: change folder | q: quit | %d runs in %s", len(m.runs), m.folder)))

	case StateRunDetail:
		summary := m.selected.Summary
		s.WriteString(report.TitleStyle.Render(fmt.Sprintf("%s · %s · %s", summary.ConfigName, summary.Symbol, summary.Strategy)))
		s.WriteString("\n\n")
		s.WriteString(m.detailTable.View())
		s.WriteString("\n")
		s.WriteString(report.HelpStyle.Render("Esc: back | q: quit"))
	}

	return s.String()
}
