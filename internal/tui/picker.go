package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/epubpress/internal/db"
)

// BookItem wraps a ledger row for the list component
type BookItem struct {
	Book *db.Book
}

func (b BookItem) Title() string {
	if b.Book.Title == "" {
		return "Untitled book"
	}
	return b.Book.Title
}

func (b BookItem) Description() string {
	parts := []string{
		string(b.Book.Status),
		b.Book.Filetype,
		fmt.Sprintf("%d urls", len(b.Book.URLs)),
	}
	if b.Book.RemoteID != "" {
		parts = append(parts, "id "+b.Book.RemoteID)
	}
	parts = append(parts, b.Book.CreatedAt.Format("2006-01-02 15:04"))

	return DimStyle.Render(strings.Join(parts, " | "))
}

func (b BookItem) FilterValue() string { return b.Book.Title }

// BookDelegate handles rendering of book items
type BookDelegate struct{}

func (d BookDelegate) Height() int                             { return 2 }
func (d BookDelegate) Spacing() int                            { return 1 }
func (d BookDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d BookDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	book, ok := item.(BookItem)
	if !ok {
		return
	}

	title := truncate(book.Title(), 70)

	var str string
	if index == m.Index() {
		str = SelectedStyle.Render(fmt.Sprintf("  ➤ #%d %s", book.Book.ID, title))
	} else {
		str = NormalStyle.Render(fmt.Sprintf("    #%d %s", book.Book.ID, title))
	}
	str += "\n" + DimStyle.Render(fmt.Sprintf("      %s", book.Description()))

	fmt.Fprint(w, str)
}

// PickerModel is the Bubble Tea model for choosing a published book
type PickerModel struct {
	list     list.Model
	selected *db.Book
	quitting bool
}

// NewPicker creates a book picker over ledger rows
func NewPicker(books []*db.Book, title string) PickerModel {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = BookItem{Book: b}
	}

	l := list.New(items, BookDelegate{}, 80, 20)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	return PickerModel{list: l}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(BookItem); ok {
				m.selected = item.Book
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m PickerModel) View() string {
	if m.selected != nil {
		return SuccessStyle.Render(fmt.Sprintf("\n  ✓ Selected: #%d %s\n", m.selected.ID, m.selected.Title))
	}

	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	help := HelpStyle.Render("  ↑/↓: navigate • enter: select • /: filter • q: cancel")

	var view strings.Builder
	view.WriteString("\n")
	view.WriteString(m.list.View())
	view.WriteString("\n")
	view.WriteString(help)

	return view.String()
}

// Selected returns the chosen book, or nil if the picker was cancelled
func (m PickerModel) Selected() *db.Book {
	return m.selected
}

// RunPicker displays the picker and returns the chosen book
func RunPicker(books []*db.Book, title string) (*db.Book, error) {
	if len(books) == 0 {
		return nil, fmt.Errorf("no books to choose from")
	}

	finalModel, err := tea.NewProgram(NewPicker(books, title)).Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(PickerModel).Selected(), nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
