package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/epubpress/internal/press"
)

// SectionItem is one fetched page offered for inclusion
type SectionItem struct {
	Index   int
	Section press.Section
	Heading string
}

func (s SectionItem) Title() string {
	if s.Heading != "" {
		return s.Heading
	}
	return s.Section.URL
}

func (s SectionItem) Description() string {
	return DimStyle.Render(fmt.Sprintf("%s | %s", s.Section.URL, FormatSize(int64(len(s.Section.HTML)))))
}

func (s SectionItem) FilterValue() string { return s.Title() }

// sectionDelegate renders items with a checkbox reflecting the chosen set
type sectionDelegate struct {
	chosen map[int]bool
}

func (d sectionDelegate) Height() int                             { return 2 }
func (d sectionDelegate) Spacing() int                            { return 0 }
func (d sectionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d sectionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	section, ok := item.(SectionItem)
	if !ok {
		return
	}

	box := "[ ]"
	if d.chosen[section.Index] {
		box = "[x]"
	}
	title := truncate(section.Title(), 60)

	var str string
	if index == m.Index() {
		str = SelectedStyle.Render(fmt.Sprintf("  ➤ %s %s", box, title))
	} else {
		str = NormalStyle.Render(fmt.Sprintf("    %s %s", box, title))
	}
	str += "\n" + DimStyle.Render(fmt.Sprintf("        %s", section.Description()))

	fmt.Fprint(w, str)
}

// SectionPickerModel lets the user choose which sections go into a book.
// Every section starts chosen.
type SectionPickerModel struct {
	list      list.Model
	sections  []press.Section
	chosen    map[int]bool
	confirmed bool
	quitting  bool
}

// NewSectionPicker creates a multi-select over sections. headings may be
// nil or shorter than sections.
func NewSectionPicker(sections []press.Section, headings []string) SectionPickerModel {
	chosen := make(map[int]bool, len(sections))
	items := make([]list.Item, len(sections))
	for i, s := range sections {
		item := SectionItem{Index: i, Section: s}
		if i < len(headings) {
			item.Heading = headings[i]
		}
		items[i] = item
		chosen[i] = true
	}

	l := list.New(items, sectionDelegate{chosen: chosen}, 80, 4+len(sections)*2)
	l.Title = "Choose sections to include"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	return SectionPickerModel{list: l, sections: sections, chosen: chosen}
}

func (m SectionPickerModel) Init() tea.Cmd {
	return nil
}

func (m SectionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ", "x":
			if item, ok := m.list.SelectedItem().(SectionItem); ok {
				m.chosen[item.Index] = !m.chosen[item.Index]
			}
			return m, nil
		case "a":
			all := m.count() < len(m.sections)
			for i := range m.sections {
				m.chosen[i] = all
			}
			return m, nil
		case "enter":
			m.confirmed = true
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

func (m SectionPickerModel) count() int {
	n := 0
	for _, ok := range m.chosen {
		if ok {
			n++
		}
	}
	return n
}

func (m SectionPickerModel) View() string {
	if m.confirmed {
		return SuccessStyle.Render(fmt.Sprintf("\n  ✓ %d of %d sections chosen\n", m.count(), len(m.sections)))
	}

	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	help := HelpStyle.Render(fmt.Sprintf("  %d chosen • space: toggle • a: all/none • enter: confirm • q: cancel", m.count()))
	return "\n" + m.list.View() + "\n" + help
}

// Chosen returns the chosen sections in their original order, or nil if the
// picker was cancelled
func (m SectionPickerModel) Chosen() []press.Section {
	if !m.confirmed {
		return nil
	}
	var out []press.Section
	for i, s := range m.sections {
		if m.chosen[i] {
			out = append(out, s)
		}
	}
	return out
}

// RunSectionPicker displays the section picker and returns the chosen sections
func RunSectionPicker(sections []press.Section, headings []string) ([]press.Section, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections to choose from")
	}

	finalModel, err := tea.NewProgram(NewSectionPicker(sections, headings)).Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(SectionPickerModel).Chosen(), nil
}
