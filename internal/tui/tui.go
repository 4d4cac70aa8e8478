package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/mailcheck/internal/checklist"
	"github.com/idilsaglam/mailcheck/internal/model"
	"github.com/idilsaglam/mailcheck/internal/store/sqlitestore"
)

type focus int

const (
	focusTable focus = iota
	focusEmail
	focusStatus
	focusNumber
)

type modelTUI struct {
	ctx   context.Context
	ctrl  *checklist.Controller
	view  *tableView
	alert *alertBox
	keys  keyMap
	help  help.Model

	// Entry form
	focus      focus
	emailIn    textinput.Model
	numberIn   textinput.Model
	formStatus model.Status

	// Table
	cursor   int
	offset   int
	selected map[int64]bool

	// Inline number edit
	editing bool
	editID  int64
	editIn  textinput.Model

	// Pending delete, shown as a confirm modal
	pending    *checklist.DeleteRequest
	confirmYes bool

	width, height int
	err           error
}

// Run starts the checklist TUI over store and closes the store on exit.
func Run(ctx context.Context, store checklist.Store, opts checklist.Options) error {
	m, err := newModel(ctx, store, opts)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer func() { _ = m.ctrl.Shutdown() }()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(modelTUI); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func newModel(ctx context.Context, store checklist.Store, opts checklist.Options) (modelTUI, error) {
	view := &tableView{}
	alert := &alertBox{}
	ctrl := checklist.New(store, view, alert, opts)
	if err := ctrl.Startup(ctx); err != nil {
		return modelTUI{}, err
	}

	m := modelTUI{
		ctx:        ctx,
		ctrl:       ctrl,
		view:       view,
		alert:      alert,
		keys:       defaultKeys(),
		help:       help.New(),
		formStatus: model.StatusUnused,
		selected:   map[int64]bool{},
		width:      80,
		height:     24,
	}

	m.emailIn = textinput.New()
	m.emailIn.Prompt = ""
	m.emailIn.Placeholder = "email@example.com"
	m.emailIn.CharLimit = 254
	m.emailIn.Width = 32

	m.numberIn = textinput.New()
	m.numberIn.Prompt = ""
	m.numberIn.Placeholder = "number (optional)"
	m.numberIn.CharLimit = 64
	m.numberIn.Width = 18

	m.editIn = textinput.New()
	m.editIn.Prompt = "> "
	m.editIn.CharLimit = 64
	return m, nil
}

func (m modelTUI) Init() tea.Cmd { return nil }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.help.Width = ws.Width
		m.scrollToCursor()
		return m, nil
	}

	km, isKey := msg.(tea.KeyMsg)
	if isKey && km.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.alert.open:
		if isKey && (key.Matches(km, m.keys.Submit) || key.Matches(km, m.keys.Cancel)) {
			m.alert.dismiss()
		}
		return m, nil
	case m.pending != nil:
		if !isKey {
			return m, nil
		}
		return m.updateConfirm(km)
	case m.editing:
		return m.updateEdit(msg)
	case m.focus != focusTable:
		return m.updateForm(msg)
	}

	if !isKey {
		return m, nil
	}
	return m.updateTable(km)
}

func (m modelTUI) updateTable(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.view.rows
	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.scrollToCursor()
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
		m.scrollToCursor()
	case key.Matches(km, m.keys.Select):
		if row, ok := m.currentRow(); ok {
			if m.selected[row.ID] {
				delete(m.selected, row.ID)
			} else {
				m.selected[row.ID] = true
			}
		}
	case key.Matches(km, m.keys.StatusNext), key.Matches(km, m.keys.StatusPrev):
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		next := row.Status.Next()
		if key.Matches(km, m.keys.StatusPrev) {
			next = row.Status.Prev()
		}
		if err := m.ctrl.ChangeStatus(m.ctx, row.ID, next); err != nil {
			return m.fatal(err)
		}
		// Live edit: the row keeps its place until the next reload.
		m.view.rows[m.cursor].Status = next
	case key.Matches(km, m.keys.EditNumber):
		if row, ok := m.currentRow(); ok {
			m.editing = true
			m.editID = row.ID
			m.editIn.SetValue(row.Number)
			m.editIn.CursorEnd()
			cmd := m.editIn.Focus()
			return m, cmd
		}
	case key.Matches(km, m.keys.Add):
		cmd := m.setFocus(focusEmail)
		return m, cmd
	case key.Matches(km, m.keys.Delete):
		sel := m.selectedRows()
		if len(sel) == 0 {
			if row, ok := m.currentRow(); ok {
				sel = []checklist.Row{row}
			}
		}
		if req, ok := m.ctrl.PrepareDelete(sel); ok {
			m.pending = &req
			m.confirmYes = false
		}
	case key.Matches(km, m.keys.Reload):
		if err := m.ctrl.Reload(m.ctx); err != nil {
			return m.fatal(err)
		}
		m.afterReload()
	}
	return m, nil
}

func (m modelTUI) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch {
		case key.Matches(km, m.keys.Cancel):
			cmd := m.setFocus(focusTable)
			return m, cmd
		case key.Matches(km, m.keys.NextField):
			cmd := m.setFocus(m.focus%3 + 1)
			return m, cmd
		case key.Matches(km, m.keys.PrevField):
			cmd := m.setFocus((m.focus+1)%3 + 1)
			return m, cmd
		case key.Matches(km, m.keys.Submit):
			return m.submitForm()
		}
		if m.focus == focusStatus {
			switch {
			case key.Matches(km, m.keys.StatusNext):
				m.formStatus = m.formStatus.Next()
			case key.Matches(km, m.keys.StatusPrev):
				m.formStatus = m.formStatus.Prev()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusEmail:
		m.emailIn, cmd = m.emailIn.Update(msg)
	case focusNumber:
		m.numberIn, cmd = m.numberIn.Update(msg)
	}
	return m, cmd
}

func (m modelTUI) submitForm() (tea.Model, tea.Cmd) {
	form := checklist.Form{
		Email:  m.emailIn.Value(),
		Status: m.formStatus,
		Number: m.numberIn.Value(),
	}
	err := m.ctrl.Add(m.ctx, &form)
	var verr *checklist.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, sqlitestore.ErrDuplicateEmail):
		// The controller already raised an alert; keep the input for correction.
		return m, nil
	case err != nil:
		return m.fatal(err)
	}
	m.emailIn.SetValue(form.Email)
	m.numberIn.SetValue(form.Number)
	m.afterReload()
	cmd := m.setFocus(focusEmail)
	return m, cmd
}

func (m modelTUI) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Cancel):
			m.editing = false
			m.editIn.Blur()
			return m, nil
		case key.Matches(km, m.keys.Submit):
			m.editing = false
			m.editIn.Blur()
			i := m.view.indexOf(m.editID)
			if i < 0 {
				return m, nil
			}
			if err := m.ctrl.EditNumber(m.ctx, m.view.rows[i], m.editIn.Value()); err != nil {
				return m.fatal(err)
			}
			for _, r := range m.ctrl.Rows() {
				if r.ID == m.editID {
					m.view.rows[i].Number = r.Number
				}
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.editIn, cmd = m.editIn.Update(msg)
	return m, cmd
}

func (m modelTUI) updateConfirm(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(km, m.keys.Yes):
		m.confirmYes = true
	case key.Matches(km, m.keys.No), key.Matches(km, m.keys.Cancel):
		m.pending = nil
		return m, nil
	case key.Matches(km, m.keys.NextField), key.Matches(km, m.keys.StatusNext), key.Matches(km, m.keys.StatusPrev):
		m.confirmYes = !m.confirmYes
		return m, nil
	case key.Matches(km, m.keys.Submit):
	default:
		return m, nil
	}

	req := *m.pending
	m.pending = nil
	if !m.confirmYes {
		return m, nil
	}
	if err := m.ctrl.ConfirmDelete(m.ctx, req); err != nil {
		return m.fatal(err)
	}
	m.selected = map[int64]bool{}
	m.afterReload()
	return m, nil
}

func (m *modelTUI) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.emailIn.Blur()
	m.numberIn.Blur()
	switch f {
	case focusEmail:
		return m.emailIn.Focus()
	case focusNumber:
		return m.numberIn.Focus()
	}
	return nil
}

func (m modelTUI) currentRow() (checklist.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.rows) {
		return checklist.Row{}, false
	}
	return m.view.rows[m.cursor], true
}

// selectedRows returns the selected rows in display order.
func (m modelTUI) selectedRows() []checklist.Row {
	var out []checklist.Row
	for _, r := range m.view.rows {
		if m.selected[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// afterReload drops selections of rows that no longer exist and clamps the cursor.
func (m *modelTUI) afterReload() {
	present := make(map[int64]bool, len(m.view.rows))
	for _, r := range m.view.rows {
		present[r.ID] = true
	}
	for id := range m.selected {
		if !present[id] {
			delete(m.selected, id)
		}
	}
	if m.cursor >= len(m.view.rows) {
		m.cursor = len(m.view.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

func (m *modelTUI) scrollToCursor() {
	h := m.tableHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m modelTUI) fatal(err error) (tea.Model, tea.Cmd) {
	m.err = err
	return m, tea.Quit
}
