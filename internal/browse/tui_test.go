package browse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobrank/internal/model"
)

type fakeSetter struct {
	calls []string
	err   error
}

func (f *fakeSetter) SetStatus(_ context.Context, id string, status model.Status) error {
	f.calls = append(f.calls, id+"="+string(status))
	return f.err
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleJobs() []model.Job {
	posted := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	sim := 0.42
	return []model.Job{
		{ID: "a", Title: "Backend Engineer", Company: "Acme", Location: "Remote", Score: 14, RoleRelevance: 100, Skills: []string{"go", "sql"}, Similarity: &sim, PostedAt: &posted, Description: "Build services in Go.", Status: model.StatusNew},
		{ID: "b", Title: "Data Analyst", Company: "Beta", Location: "Berlin", Score: 3, Status: model.StatusSeen},
	}
}

func sized(m browseModel) browseModel {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(browseModel)
}

func send(t *testing.T, m browseModel, msg tea.Msg) (browseModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(browseModel), cmd
}

func TestBrowseListRendersScores(t *testing.T) {
	m := sized(newBrowseModel("All postings", sampleJobs(), nil))

	view := m.View()
	assert.Contains(t, view, "All postings (2)")
	assert.Contains(t, view, "14.0  Backend Engineer")
	assert.Contains(t, view, "Beta · Berlin · n/a")
}

func TestBrowseCursorClamps(t *testing.T) {
	m := sized(newBrowseModel("All", sampleJobs(), nil))

	for range 5 {
		m, _ = send(t, m, key("down"))
	}
	assert.Equal(t, 1, m.cursor)

	for range 5 {
		m, _ = send(t, m, key("k"))
	}
	assert.Equal(t, 0, m.cursor)
}

func TestBrowseDetailShowsRanking(t *testing.T) {
	m := sized(newBrowseModel("All", sampleJobs(), nil))
	m, _ = send(t, m, key("enter"))
	require.Equal(t, viewDetail, m.view)

	detail := m.renderDetail()
	assert.Contains(t, detail, "14.0")
	assert.Contains(t, detail, "100%")
	assert.Contains(t, detail, "42%")
	assert.Contains(t, detail, "go, sql")
	assert.Contains(t, detail, "press r to read the description")

	m, _ = send(t, m, key("r"))
	assert.Contains(t, m.renderDetail(), "Build services in Go.")

	m, _ = send(t, m, key("esc"))
	assert.Equal(t, viewList, m.view)
}

func TestBrowseMarkApplied(t *testing.T) {
	setter := &fakeSetter{}
	m := sized(newBrowseModel("All", sampleJobs(), setter))

	m, cmd := send(t, m, key("a"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, []string{"a=applied"}, setter.calls)

	m, _ = send(t, m, msg)
	assert.Equal(t, model.StatusApplied, m.jobs[0].Status)
	assert.Contains(t, m.View(), "[applied]")

	// already applied: no further writes
	_, cmd = send(t, m, key("a"))
	assert.Nil(t, cmd)
}

func TestBrowseMarkAppliedFailure(t *testing.T) {
	setter := &fakeSetter{err: errors.New("db locked")}
	m := sized(newBrowseModel("All", sampleJobs(), setter))

	m, cmd := send(t, m, key("a"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, model.StatusNew, m.jobs[0].Status)
	assert.True(t, strings.Contains(m.notice, "db locked"))
}

func TestBrowseWithoutSetterIsReadOnly(t *testing.T) {
	m := sized(newBrowseModel("All", sampleJobs(), nil))
	_, cmd := send(t, m, key("a"))
	assert.Nil(t, cmd)
}

func TestBrowseQuitAndBack(t *testing.T) {
	m := sized(newBrowseModel("All", nil, nil))
	assert.Contains(t, m.View(), "(no postings)")

	back, _ := send(t, m, key("esc"))
	assert.False(t, back.wantQuit)

	quit, _ := send(t, m, key("q"))
	assert.True(t, quit.wantQuit)
}

func TestPickerSelection(t *testing.T) {
	m := pickerModel{choices: StatusChoices, chosen: -1}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})

	final := next.(pickerModel)
	assert.Equal(t, 2, final.chosen)
	assert.Equal(t, model.StatusSeen, StatusChoices[final.chosen].Status)
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four", 9)
	assert.Equal(t, "one two\nthree\nfour", got)
}
