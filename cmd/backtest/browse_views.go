package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/writers"
	"github.com/rxtech-lab/argo-backtest/internal/report"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RunEntry is one persisted run and the folder holding its result files.
type RunEntry struct {
	Folder  string
	Summary types.RunSummary
}

// runItem implements list.Item for a backtest run.
type runItem struct {
	entry RunEntry
}

func (i runItem) Title() string {
	return fmt.Sprintf("%s · %s", i.entry.Summary.ConfigName, i.entry.Summary.Symbol)
}

func (i runItem) Description() string {
	stats := i.entry.Summary.Stats

	return fmt.Sprintf("%s · %d trades · %s", i.entry.Summary.Strategy, stats.NumberOfTrades, report.FormatProfit(stats.TotalProfit))
}

func (i runItem) FilterValue() string { return i.Title() }

// LoadRuns collects the run summaries stored anywhere below folder, ordered by
// configuration name, symbol and folder.
func LoadRuns(folder string) ([]RunEntry, error) {
	runs := make([]RunEntry, 0)

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || d.Name() != writers.StatsFileName {
			return nil
		}

		summary, err := types.ReadRunSummary(path)
		if err != nil {
			return err
		}

		runs = append(runs, RunEntry{Folder: filepath.Dir(path), Summary: summary})

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read results in %s", folder)
	}

	if len(runs) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no backtest results found in %s", folder)
	}

	sort.Slice(runs, func(a, b int) bool {
		ra, rb := runs[a].Summary, runs[b].Summary
		if ra.ConfigName != rb.ConfigName {
			return ra.ConfigName < rb.ConfigName
		}

		if ra.Symbol != rb.Symbol {
			return ra.Symbol < rb.Symbol
		}

		return runs[a].Folder < runs[b].Folder
	})

	return runs, nil
}

// NewFolderInput creates a new text input for the results folder.
func NewFolderInput(folder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "results"
	ti.SetValue(folder)
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60
	ti.Prompt = "> "

	return ti
}

// NewRunList creates a new list for run selection.
func NewRunList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Backtest Runs"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	return l
}

// RunListItems converts runs into list items.
func RunListItems(runs []RunEntry) []list.Item {
	items := make([]list.Item, 0, len(runs))
	for _, run := range runs {
		items = append(items, runItem{entry: run})
	}

	return items
}

// NewDetailTable creates a new table for the statistics of one run.
func NewDetailTable() table.Model {
	columns := []table.Column{
		{Title: "Metric", Width: 18},
		{Title: "Value", Width: 44},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(16),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// DetailRows describes the run followed by its statistics.
func DetailRows(run RunEntry) []table.Row {
	summary := run.Summary

	rows := []table.Row{
		{"Strategy", string(summary.Strategy)},
		{"Data", summary.DataPath},
		{"Bars", fmt.Sprintf("%d (%d with signals)", summary.Bars, summary.SignalBars)},
		{"Executed", summary.Timestamp.Format("2006-01-02 15:04:05")},
		{"Results", run.Folder},
	}

	for _, line := range report.StatsRows(summary.Stats) {
		rows = append(rows, table.Row{line[0], line[1]})
	}

	return rows
}
