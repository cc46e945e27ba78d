package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	papio "github.com/matzehuels/papermap/pkg/io"
	"github.com/matzehuels/papermap/pkg/paper"
)

// Table styles
var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableBorderStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const defaultSearchLimit = 25

// searchCommand creates the search command for listing matching papers.
func (c *CLI) searchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [dataset] [term]",
		Short: "List papers whose title or authors contain a term",
		Long: `List papers whose title or authors contain a term.

Matching is case-insensitive and uses the same rule as the map's search
highlight, so the listed papers are exactly the ones 'render --search'
draws in red.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), args[0], strings.Join(args[1:], " "), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultSearchLimit, "maximum rows to show (0 for all)")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, input, term string, limit int) error {
	logger := loggerFromContext(ctx)

	src, err := papio.ParseSource(input)
	if err != nil {
		return err
	}
	ds, err := papio.ImportJSON(src.Path)
	if err != nil {
		return err
	}
	if len(ds.Skipped) > 0 {
		logger.Warn("skipped malformed entries", "count", len(ds.Skipped))
	}

	matches := searchRecords(ds.Records, term)
	if len(matches) == 0 {
		printWarning("No papers match %q", term)
		return nil
	}

	printKeyValue("Dataset", src.Name)
	printKeyValue("Search", term)
	printKeyValue("Matches", fmt.Sprintf("%d of %d", len(matches), len(ds.Records)))
	printNewline()

	shown := matches
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	fmt.Println(matchTable(shown).Render())

	if len(shown) < len(matches) {
		printDetail("%d more not shown (use --limit 0 for all)", len(matches)-len(shown))
	}
	printNewline()
	printNextStep("Render them highlighted", fmt.Sprintf("%s render %s --search %q", appName, input, term))
	return nil
}

// searchRecords returns the records matched by term in dataset order.
func searchRecords(records []paper.Record, term string) []paper.Record {
	hl := paper.Search(records, term)
	var out []paper.Record
	for _, r := range records {
		if hl.Has(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// matchTable lays out records as a bordered table.
func matchTable(records []paper.Record) *table.Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{string(r.ID), truncate(r.Title, 60), truncate(r.Authors, 40), r.Session, r.Location}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "Title", "Authors", "Session", "Location").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case col == 0:
				return StyleNumber
			case col == 1:
				return StyleValue
			}
			return StyleDim
		})
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 1 {
		return string(rs[:n])
	}
	return string(rs[:n-1]) + "…"
}
