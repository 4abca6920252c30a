package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	pb "github.com/dmitrijs2005/corral/internal/proto"
	"golang.org/x/term"
)

const barWidth = 20

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
)

// terminalWidth is a test seam; 0 means unknown.
var terminalWidth = func() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// percent returns the event's percent, if it carries one.
func percent(ev *pb.TaskEvent) (int, bool) {
	return int(ev.GetPercent()), ev.GetPercentKnown()
}

func bar(pct int) string {
	n := pct * barWidth / 100
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", barWidth-n) + "]"
}

// describe renders one progress event as a single line.
func describe(ev *pb.TaskEvent) string {
	state := ev.GetState()
	switch outcome := ev.GetOutcome(); outcome {
	case "SUCCESS":
		return doneStyle.Render(state + " " + outcome)
	case "FAILURE", "CANCELLED":
		return failStyle.Render(state + " " + outcome)
	}

	parts := []string{state}
	if ch := ev.GetChannel(); ch != "" && ch != "NONE" {
		parts = append(parts, ch)
	}
	if pct, ok := percent(ev); ok {
		parts = append(parts, fmt.Sprintf("%s %3d%%", bar(pct), pct))
	} else if state == "TRANSFERRING" {
		parts = append(parts, mutedStyle.Render("size unknown"))
	}
	return strings.Join(parts, " ")
}

func progressCell(ev *pb.TaskEvent) string {
	if pct, ok := percent(ev); ok {
		return fmt.Sprintf("%3d%%", pct)
	}
	return "-"
}

// renderTasks draws the status table, fitted to width when it is known.
func renderTasks(tasks []*pb.TaskEvent, width int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("OBJECT", "CONTENT", "STATE", "CHANNEL", "PROGRESS")
	for _, ev := range tasks {
		t.Row(ev.GetObjectId(), shorten(ev.GetContentId(), 12), ev.GetState(), ev.GetChannel(), progressCell(ev))
	}
	if width > 0 {
		t.Width(width)
	}
	return t.String()
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
