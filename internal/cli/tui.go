package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// List styles.
var (
	listSelectedStyle = styleTitle
	listNormalStyle   = styleValue
	listDimStyle      = styleDim
)

// packageListModel is the bubbletea model for interactive package
// selection from search results.
type packageListModel struct {
	packages []packageItem
	cursor   int
	height   int
	offset   int
	selected string
}

// packageItem is one row of the picker: a package name and its direct
// dependency count.
type packageItem struct {
	name     string
	depCount int
}

func newPackageListModel(items []packageItem) packageListModel {
	return packageListModel{packages: items, height: 15}
}

func (m packageListModel) Init() tea.Cmd {
	return nil
}

func (m packageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.packages)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.selected = m.packages[m.cursor].name
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m packageListModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Select Package"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.packages) {
		end = len(m.packages)
	}

	for i := m.offset; i < end; i++ {
		item := m.packages[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-40s %s", cursor, item.name,
			listDimStyle.Render(fmt.Sprintf("%d deps", item.depCount)))

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.packages))))

	return b.String()
}
