package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crossflow/pkg/pipeline"
	"github.com/matzehuels/crossflow/pkg/table"
)

const sampleValues = 3

// columnSummary describes one column of a table.
type columnSummary struct {
	Name     string
	Distinct int
	Empty    int
	Samples  []string
}

// summarizeColumns counts distinct and empty values per column, keeping the
// first few distinct values in row order.
func summarizeColumns(t *table.Table) []columnSummary {
	out := make([]columnSummary, len(t.Columns))
	for i, name := range t.Columns {
		seen := map[string]bool{}
		s := columnSummary{Name: name}
		for _, row := range t.Rows {
			v := row.Get(name)
			if v == "" {
				s.Empty++
				continue
			}
			if seen[v] {
				continue
			}
			seen[v] = true
			if len(s.Samples) < sampleValues {
				s.Samples = append(s.Samples, v)
			}
		}
		s.Distinct = len(seen)
		out[i] = s
	}
	return out
}

// columnsCommand creates the columns command.
func (c *CLI) columnsCommand() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "columns <file>",
		Short: "List the columns of a table and the default selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strategy != pipeline.ColumnsFirstTwo && strategy != pipeline.ColumnsKeywords {
				return fmt.Errorf("unknown column strategy %q (want first-two or keywords)", strategy)
			}
			t, _, err := pipeline.Read(args[0])
			if err != nil {
				return err
			}
			sel, err := pipeline.ResolveSelection(t, pipeline.Options{Columns: strategy})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printColumns(w, summarizeColumns(t))
			printKeyValue(w, "Rows", strconv.Itoa(t.Len()))
			if sel.Complete() {
				printKeyValue(w, "Selection", sel.Source+" "+iconArrow+" "+sel.Target)
			} else {
				printWarning(w, "no default selection: the table needs at least two columns")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "columns", pipeline.DefaultColumns, "default column strategy: first-two, keywords")
	return cmd
}

func printColumns(w io.Writer, cols []columnSummary) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	numberStyle := lipgloss.NewStyle().Foreground(colorCyan)

	rows := make([][]string, len(cols))
	for i, col := range cols {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			col.Name,
			strconv.Itoa(col.Distinct),
			strconv.Itoa(col.Empty),
			strings.Join(col.Samples, ", "),
		}
	}

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Column", "Distinct", "Empty", "Sample").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return headerStyle
			case col == 2 || col == 3:
				return numberStyle
			case col == 4:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, t.Render())
}
