// Package report prints the measurement summary and the optional
// per-worker balance table.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/Iron-Ham/eigenbench/internal/costmodel"
	"github.com/Iron-Ham/eigenbench/internal/scheduler"
)

// WriteSummary prints the three summary lines. Their format is consumed by
// existing scripts and must not change.
func WriteSummary(w io.Writer, dimension, iterations int, elapsed time.Duration) error {
	_, err := fmt.Fprintf(w, "array dimension = %d\nnumber of iterations = %d\nwall time = %f\n",
		dimension, iterations, elapsed.Seconds())
	return err
}

// WorkerRow is one line of the balance table.
type WorkerRow struct {
	Worker int
	Chunks int
	Tasks  int
	Cost   float64 // nominal, sum of m^3 over the worker's tasks
	Busy   time.Duration
}

// Balance joins the scheduler trace with the task sizes.
func Balance(stats []scheduler.WorkerStats, claims []scheduler.Claim, tasks []costmodel.TaskDescriptor) []WorkerRow {
	rows := make([]WorkerRow, len(stats))
	byWorker := make(map[int]int, len(stats))
	for i, s := range stats {
		rows[i] = WorkerRow{Worker: s.Worker, Chunks: s.Chunks, Tasks: s.Tasks, Busy: s.Busy}
		byWorker[s.Worker] = i
	}
	for _, c := range claims {
		i, ok := byWorker[c.Worker]
		if !ok {
			continue
		}
		for j := c.Start; j < c.End && j < len(tasks); j++ {
			rows[i].Cost += costmodel.Cost(tasks[j].ProblemSize)
		}
	}
	return rows
}

// Imbalance returns max(busy)/mean(busy). 1.0 is perfect balance; 0 means
// no work was recorded.
func Imbalance(rows []WorkerRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	var total, peak time.Duration
	for _, r := range rows {
		total += r.Busy
		peak = max(peak, r.Busy)
	}
	if total == 0 {
		return 0
	}
	return float64(peak) * float64(len(rows)) / float64(total)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	headerColor = lipgloss.Color("12")
	hotColor    = lipgloss.Color("9")
	mutedColor  = lipgloss.Color("8")
)

// WriteBalance renders rows as a table. styled adds a rounded border and
// highlights the busiest worker; otherwise the table is plain ASCII.
func WriteBalance(w io.Writer, rows []WorkerRow, styled bool) error {
	var totalCost float64
	var busiest int
	for i, r := range rows {
		totalCost += r.Cost
		if r.Busy > rows[busiest].Busy {
			busiest = i
		}
	}

	renderer := lipgloss.NewRenderer(w)
	base := renderer.NewStyle().Padding(0, 1)

	t := table.New().
		Headers("WORKER", "CHUNKS", "TASKS", "COST SHARE", "BUSY (s)").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := base
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			if !styled {
				return s
			}
			switch {
			case row == table.HeaderRow:
				return s.Bold(true).Foreground(headerColor)
			case row == busiest && len(rows) > 1:
				return s.Foreground(hotColor)
			default:
				return s
			}
		})
	if styled {
		t = t.Border(lipgloss.RoundedBorder()).BorderStyle(renderer.NewStyle().Foreground(mutedColor))
	} else {
		t = t.Border(lipgloss.ASCIIBorder())
	}

	for _, r := range rows {
		share := 0.0
		if totalCost > 0 {
			share = 100 * r.Cost / totalCost
		}
		t = t.Row(
			strconv.Itoa(r.Worker),
			strconv.Itoa(r.Chunks),
			strconv.Itoa(r.Tasks),
			fmt.Sprintf("%.1f%%", share),
			fmt.Sprintf("%.6f", r.Busy.Seconds()),
		)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "imbalance (max/mean busy) = %.3f\n", Imbalance(rows))
	return err
}
