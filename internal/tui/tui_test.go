package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/epubpress/internal/db"
	"github.com/billmal071/epubpress/internal/press"
	"github.com/billmal071/epubpress/internal/watch"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.0 KB", FormatSize(1024))
	assert.Equal(t, "1.5 MB", FormatSize(1536*1024))
}

func TestPicker_SelectsCurrent(t *testing.T) {
	books := []*db.Book{
		{ID: 1, Title: "First", Status: db.StatusComplete, Filetype: "epub", CreatedAt: time.Now()},
		{ID: 2, Title: "Second", Status: db.StatusPublished, Filetype: "mobi", CreatedAt: time.Now()},
	}
	m := NewPicker(books, "Books")

	next, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, books[0], next.(PickerModel).Selected())
}

func TestPicker_Cancel(t *testing.T) {
	m := NewPicker([]*db.Book{{ID: 1, Title: "Only"}}, "Books")

	next, _ := m.Update(key("q"))
	assert.Nil(t, next.(PickerModel).Selected())
	assert.Contains(t, next.View(), "Cancelled")
}

func TestSectionPicker_Toggle(t *testing.T) {
	sections := []press.Section{
		{URL: "https://a.example/1", HTML: "<p>1</p>"},
		{URL: "https://a.example/2", HTML: "<p>2</p>"},
		{URL: "https://a.example/3", HTML: "<p>3</p>"},
	}
	var m tea.Model = NewSectionPicker(sections, []string{"One", "Two"})

	m, _ = m.Update(key(" "))
	m, _ = m.Update(key("enter"))

	assert.Equal(t, sections[1:], m.(SectionPickerModel).Chosen())
}

func TestSectionPicker_AllNoneAndCancel(t *testing.T) {
	sections := []press.Section{{URL: "u1"}, {URL: "u2"}}
	var m tea.Model = NewSectionPicker(sections, nil)

	m, _ = m.Update(key("a"))
	assert.Equal(t, 0, m.(SectionPickerModel).count())
	m, _ = m.Update(key("a"))
	assert.Equal(t, 2, m.(SectionPickerModel).count())

	m, _ = m.Update(key("esc"))
	assert.Nil(t, m.(SectionPickerModel).Chosen())
}

func newWatch() WatchModel {
	book := press.NewBook(press.Props{ID: "7", Title: "Weekly"})
	return NewWatchModel(context.Background(), nil, watch.Schedule{Interval: time.Millisecond}, book)
}

func TestWatchModel_Progress(t *testing.T) {
	var m tea.Model = newWatch()

	m, cmd := m.Update(statusMsg{status: &press.Status{Message: "Fetching articles"}})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Fetching articles")

	m, _ = m.Update(statusMsg{status: &press.Status{Message: "Done", Complete: true}})
	status, err := m.(WatchModel).Result()
	require.NoError(t, err)
	assert.Equal(t, "Done", status.Message)
	assert.Contains(t, m.View(), "Ready")
}

func TestWatchModel_BuildFailed(t *testing.T) {
	var m tea.Model = newWatch()

	m, _ = m.Update(statusMsg{status: &press.Status{Message: "bad url", Complete: true, Error: true}})
	_, err := m.(WatchModel).Result()
	assert.ErrorIs(t, err, watch.ErrBuildFailed)
}

func TestWatchModel_Errors(t *testing.T) {
	var m tea.Model = newWatch()
	m, _ = m.Update(statusMsg{err: press.ErrNotFound})
	_, err := m.(WatchModel).Result()
	assert.ErrorIs(t, err, press.ErrNotFound)

	m = newWatch()
	m, _ = m.Update(statusMsg{err: context.DeadlineExceeded})
	_, err = m.(WatchModel).Result()
	assert.ErrorIs(t, err, watch.ErrTimeout)

	m = newWatch()
	m, _ = m.Update(key("q"))
	_, err = m.(WatchModel).Result()
	assert.ErrorIs(t, err, context.Canceled)
}
