package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lepinkainen/bookfinder/internal/book"
)

const (
	savedButtonText = "This book has already been saved!"
	saveButtonText  = "Save this Book!"
)

type bookItem struct {
	book.Record
}

func (i bookItem) Title() string       { return i.Record.Title }
func (i bookItem) FilterValue() string { return i.Record.Title }
func (i bookItem) Description() string { return i.Record.Description }

// saveState answers the per-item questions the delegate needs to draw the
// save button.
type saveState interface {
	CanSave() bool
	IsSaved(bookID string) bool
}

type itemStyles struct {
	normal      lipgloss.Style
	selected    lipgloss.Style
	titleStyle  lipgloss.Style
	authorStyle lipgloss.Style
	descStyle   lipgloss.Style
	saveButton  lipgloss.Style
	savedButton lipgloss.Style
	imageStyle  lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		authorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")),
		descStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("248")),
		saveButton: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("39")).
			Bold(true),
		savedButton: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		imageStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Faint(true),
	}
}

type bookDelegate struct {
	styles itemStyles
	saves  saveState
}

func newDelegate(saves saveState) bookDelegate {
	return bookDelegate{styles: newItemStyles(), saves: saves}
}

func (d bookDelegate) Height() int                         { return 6 }
func (d bookDelegate) Spacing() int                        { return 1 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	it, ok := item.(bookItem)
	if !ok {
		return
	}
	width := m.Width() - 4

	lines := []string{
		d.styles.titleStyle.Render(truncate(it.Record.Title, width)),
		d.styles.authorStyle.Render(truncate("Authors: "+strings.Join(it.Authors, ", "), width)),
		d.styles.descStyle.Render(truncate(it.Record.Description, width)),
	}
	if it.Image != "" {
		lines = append(lines, d.styles.imageStyle.Render(truncate("Cover: "+it.Image, width)))
	}
	if button := d.button(it.BookID); button != "" {
		lines = append(lines, button)
	}

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

// button is empty when the user cannot save at all.
func (d bookDelegate) button(bookID string) string {
	if d.saves == nil || !d.saves.CanSave() {
		return ""
	}
	if d.saves.IsSaved(bookID) {
		return d.styles.savedButton.Render(savedButtonText)
	}
	return d.styles.saveButton.Render(" " + saveButtonText + " ")
}

// truncate collapses whitespace and cuts value to width terminal cells,
// never splitting a rune.
func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
