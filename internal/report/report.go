package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// RunRow is one line of the comparison table.
type RunRow struct {
	Name     string
	Symbol   string
	Strategy types.StrategyType
	Stats    types.TradeStats
}

// RenderResult writes the statistics block followed by the trade table of result.
func RenderResult(w io.Writer, result types.BacktestResult) error {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s · %s", result.Symbol, result.Strategy)))
	b.WriteString("\n")
	b.WriteString(SummaryStyle.Render(summaryLines(result.Stats)))
	b.WriteString("\n")

	if !result.HasTrades() {
		b.WriteString(HelpStyle.Render("No trades"))
		b.WriteString("\n")
	} else {
		b.WriteString(tradesTable(result).View())
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// RenderComparison writes one row of headline statistics per run.
func RenderComparison(w io.Writer, rows []RunRow) error {
	columns := []table.Column{
		{Title: "Name", Width: 16},
		{Title: "Symbol", Width: 10},
		{Title: "Strategy", Width: 10},
		{Title: "Trades", Width: 7},
		{Title: "Win rate", Width: 9},
		{Title: "Total profit", Width: 16},
		{Title: "Max drawdown", Width: 13},
		{Title: "Buy & hold", Width: 16},
	}

	tableRows := make([]table.Row, 0, len(rows))

	for _, row := range rows {
		tableRows = append(tableRows, table.Row{
			row.Name,
			row.Symbol,
			string(row.Strategy),
			fmt.Sprintf("%d", row.Stats.NumberOfTrades),
			fmt.Sprintf("%.2f%%", row.Stats.WinRate),
			FormatProfit(row.Stats.TotalProfit),
			fmt.Sprintf("%.4f", row.Stats.MaxDrawdown),
			FormatProfit(row.Stats.BuyAndHoldProfit),
		})
	}

	t := newStaticTable(columns, tableRows)

	_, err := io.WriteString(w, t.View()+"\n")

	return err
}

// StatsRows returns the label and formatted value of every statistic shown in a summary.
func StatsRows(stats types.TradeStats) [][2]string {
	return [][2]string{
		{"Trades", fmt.Sprintf("%d (%d won, %d lost)", stats.NumberOfTrades, stats.NumberOfWinningTrades, stats.NumberOfLosingTrades)},
		{"Win rate", fmt.Sprintf("%.2f%%", stats.WinRate)},
		{"Total profit", FormatProfit(stats.TotalProfit)},
		{"Average profit", fmt.Sprintf("%.4f", stats.AverageProfit)},
		{"Best trade", fmt.Sprintf("%.4f", stats.MaximumProfit)},
		{"Worst trade", fmt.Sprintf("%.4f", stats.MaximumLoss)},
		{"Max drawdown", fmt.Sprintf("%.4f", stats.MaxDrawdown)},
		{"Buy & hold", FormatProfit(stats.BuyAndHoldProfit)},
		{"Holding time", fmt.Sprintf("min %s, avg %s, max %s",
			formatDays(stats.TradeHoldingTime.Min),
			formatDays(stats.TradeHoldingTime.Avg),
			formatDays(stats.TradeHoldingTime.Max))},
	}
}

func summaryLines(stats types.TradeStats) string {
	lines := StatsRows(stats)

	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(line[0]), line[1]))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func tradesTable(result types.BacktestResult) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Entry", Width: 12},
		{Title: "Entry price", Width: 12},
		{Title: "Exit", Width: 12},
		{Title: "Exit price", Width: 12},
		{Title: "Profit", Width: 16},
		{Title: "Cumulative", Width: 12},
		{Title: "Forced", Width: 6},
	}

	rows := make([]table.Row, 0, len(result.Trades))

	for i, trade := range result.Trades {
		forced := ""
		if trade.Forced {
			forced = "yes"
		}

		cumulative := ""
		if i < len(result.CumulativeProfit) {
			cumulative = fmt.Sprintf("%.4f", result.CumulativeProfit[i])
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			trade.EntryTime.Format(time.DateOnly),
			fmt.Sprintf("%.4f", trade.EntryPrice),
			trade.ExitTime.Format(time.DateOnly),
			fmt.Sprintf("%.4f", trade.ExitPrice),
			FormatProfit(trade.Profit),
			cumulative,
			forced,
		})
	}

	return newStaticTable(columns, rows)
}

// newStaticTable builds a table tall enough to show every row at once.
func newStaticTable(columns []table.Column, rows []table.Row) table.Model {
	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithStyles(tableStyles()),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2),
	)
}

func formatDays(seconds int) string {
	days := float64(seconds) / (24 * time.Hour).Seconds()

	return fmt.Sprintf("%.1fd", days)
}
