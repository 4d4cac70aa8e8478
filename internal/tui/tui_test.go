package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mailcheck/internal/checklist"
	"github.com/idilsaglam/mailcheck/internal/model"
	"github.com/idilsaglam/mailcheck/internal/store/sqlitestore"
)

func newTestModel(t *testing.T, seedDoc string) (modelTUI, *sqlitestore.Store) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "base.txt")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedDoc), 0o644))

	st, err := sqlitestore.Open(ctx, filepath.Join(dir, "emails.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	m, err := newModel(ctx, st, checklist.Options{SeedPath: seedPath})
	require.NoError(t, err)
	return m, st
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(t *testing.T, m modelTUI, msgs ...tea.Msg) modelTUI {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(modelTUI)
		require.True(t, ok)
	}
	return m
}

func rowEmails(m modelTUI) []string {
	var out []string
	for _, r := range m.view.rows {
		out = append(out, r.Email)
	}
	return out
}

func TestStartupRendersSortedRows(t *testing.T) {
	m, _ := newTestModel(t, "* [x] a@x.com (7)\n* [o] b@x.com\n* [ ] c@x.com\n* [-] d@x.com\n")

	assert.Equal(t, []string{"b@x.com", "c@x.com", "d@x.com", "a@x.com"}, rowEmails(m))
	assert.Contains(t, m.View(), "Email Checklist")
	assert.Contains(t, m.View(), "a@x.com")
}

func TestStatusCycleWritesWithoutResort(t *testing.T) {
	m, st := newTestModel(t, "* [o] a@x.com\n* [ ] b@x.com\n")
	id := m.view.rows[0].ID

	// using -> used
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, rowEmails(m))
	assert.Equal(t, model.StatusUsed, m.view.rows[0].Status)
	e, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUsed, e.Status)

	m = press(t, m, runes("r"))
	assert.Equal(t, []string{"b@x.com", "a@x.com"}, rowEmails(m))
}

func TestInlineNumberEdit(t *testing.T) {
	m, st := newTestModel(t, "* [o] a@x.com (1)\n")

	m = press(t, m, runes("n"))
	require.True(t, m.editing)
	m.editIn.SetValue("  ")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.editing)
	assert.Equal(t, "", m.view.rows[0].Number)
	e, err := st.Get(context.Background(), m.view.rows[0].ID)
	require.NoError(t, err)
	assert.Nil(t, e.Number)
}

func TestAddFormSubmitAndDuplicateAlert(t *testing.T) {
	m, _ := newTestModel(t, "* [o] a@x.com\n")

	m = press(t, m, runes("a"))
	require.Equal(t, focusEmail, m.focus)
	m.emailIn.SetValue("new@x.com")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, model.StatusUsing, m.formStatus)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m.numberIn.SetValue("5")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"a@x.com", "new@x.com"}, rowEmails(m))
	assert.Equal(t, "", m.emailIn.Value())
	assert.Equal(t, "", m.numberIn.Value())
	assert.False(t, m.alert.open)

	m.emailIn.SetValue("a@x.com")
	m.numberIn.SetValue("9")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.alert.open)
	assert.Equal(t, "Duplicate Email", m.alert.title)
	assert.Contains(t, m.View(), "already exists")
	assert.Equal(t, "a@x.com", m.emailIn.Value())
	assert.Equal(t, "9", m.numberIn.Value())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.alert.open)
}

func TestAddBlankEmailAlerts(t *testing.T) {
	m, st := newTestModel(t, "")

	m = press(t, m, runes("a"), tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.alert.open)
	assert.Equal(t, "Missing Email", m.alert.title)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteSelectedWithConfirm(t *testing.T) {
	m, st := newTestModel(t, "* [ ] a@x.com\n* [ ] b@x.com\n* [ ] c@x.com\n* [ ] d@x.com\n* [ ] e@x.com\n")
	down := tea.KeyMsg{Type: tea.KeyDown}
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

	m = press(t, m, down, space, down, down, down, space)
	require.Len(t, m.selected, 2)

	m = press(t, m, runes("d"))
	require.NotNil(t, m.pending)
	assert.Contains(t, m.View(), "Delete 2 selected row(s)?")

	// Cancel keeps everything.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Nil(t, m.pending)
	assert.Len(t, m.view.rows, 5)

	m = press(t, m, runes("d"), runes("y"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.pending)
	assert.Equal(t, []string{"a@x.com", "c@x.com", "d@x.com"}, rowEmails(m))
	assert.Empty(t, m.selected)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeleteWithoutSelectionUsesCursorRow(t *testing.T) {
	m, _ := newTestModel(t, "* [ ] a@x.com\n* [ ] b@x.com\n")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, runes("d"))
	require.NotNil(t, m.pending)
	assert.Equal(t, []int64{m.view.rows[1].ID}, m.pending.IDs)

	// Enter with "No" focused does nothing.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, m.view.rows, 2)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, "")
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestDeleteHelpMentionsCursorFallback(t *testing.T) {
	assert.Equal(t, "delete selected (or cursor row)", defaultKeys().Delete.Help().Desc)
}

func TestEmptyTableHint(t *testing.T) {
	m, _ := newTestModel(t, "")
	assert.Contains(t, m.renderTable(), "no emails, press a to add one")
}
