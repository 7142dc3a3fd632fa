package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"maintportal/internal/models"
	"maintportal/internal/urgency"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print categories ordered by urgency",
	Long: `Print every configured category, most overdue first.

Examples:
  # Rank as of now
  maintportal rank

  # Rank as of a given day
  maintportal rank --at 2025-03-10

  # JSON output for scripting
  maintportal rank --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		now := time.Now()
		if at != "" {
			d, err := models.ParseDate(at)
			if err != nil {
				return fmt.Errorf("--at must be YYYY-MM-DD: %w", err)
			}
			now = d.Time().Add(24*time.Hour - time.Nanosecond)
		}

		cfg, err := setup()
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		records, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer records.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		names, err := records.Categories(ctx)
		if err != nil {
			return err
		}
		entries, err := urgency.Rank(ctx, names, records.ListByCategory, cat.Lookup, now)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if entries == nil {
				entries = []urgency.Entry{}
			}
			return enc.Encode(entries)
		}
		printRankTable(out, entries)
		return nil
	},
}

func init() {
	rankCmd.Flags().String("at", "", "rank as of this date (YYYY-MM-DD) instead of today")
	rankCmd.Flags().Bool("json", false, "output as JSON")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[urgency.Status]lipgloss.Style{
		urgency.StatusOverdue: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		urgency.StatusDueSoon: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		urgency.StatusOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		urgency.StatusNever:   mutedStyle,
	}
)

// printRankTable writes the ranking as an aligned, colored table.
func printRankTable(w io.Writer, entries []urgency.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No configured categories.")
		return
	}

	maxName := len("CATEGORY")
	for _, e := range entries {
		if n := lipgloss.Width(e.Category); n > maxName {
			maxName = n
		}
	}

	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		headerStyle.Render(padRight("CATEGORY", maxName)),
		headerStyle.Render(padRight("STATUS", 9)),
		headerStyle.Render(padLeft("SINCE", 7)),
		headerStyle.Render(padLeft("EVERY", 7)),
		headerStyle.Render(padLeft("OVERDUE", 8)),
	)
	fmt.Fprintln(w, strings.Repeat("-", maxName+41))

	for _, e := range entries {
		status := e.Status()
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			padRight(e.Category, maxName),
			statusStyles[status].Render(padRight(string(status), 9)),
			padLeft(days(e.DaysSince), 7),
			padLeft(strconv.Itoa(e.IntervalDays)+"d", 7),
			padLeft(days(e.OverdueDays), 8),
		)
	}

	s := urgency.Summarize(entries)
	fmt.Fprintln(w)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d categories: %d overdue, %d due soon, %d never serviced",
		s.Total, s.Overdue, s.DueSoon, s.Never)))
}

func days(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n) + "d"
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
