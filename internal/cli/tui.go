package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	papio "github.com/matzehuels/papermap/pkg/io"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DatasetListModel - Interactive dataset selection
// =============================================================================

// DatasetListModel is the bubbletea model for picking the dataset the
// explorer starts with.
type DatasetListModel struct {
	Datasets []*papio.Dataset
	Cursor   int
	Selected int // -1 until a dataset is chosen
}

// NewDatasetListModel creates a new dataset list model.
func NewDatasetListModel(datasets []*papio.Dataset) DatasetListModel {
	return DatasetListModel{Datasets: datasets, Selected: -1}
}

func (m DatasetListModel) Init() tea.Cmd {
	return nil
}

func (m DatasetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Datasets)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m DatasetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Dataset"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.Datasets))
	for i, ds := range m.Datasets {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		skipped := "—"
		if len(ds.Skipped) > 0 {
			skipped = fmt.Sprintf("%d", len(ds.Skipped))
		}
		rows[i] = []string{cursor, ds.Name, fmt.Sprintf("%d", len(ds.Records)), skipped}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("", "Dataset", "Papers", "Skipped").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Datasets))))

	return b.String()
}
