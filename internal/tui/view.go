package tui

import "github.com/idilsaglam/mailcheck/internal/checklist"

// tableView is the checklist.View the controller repopulates on reload.
type tableView struct {
	rows []checklist.Row
}

func (v *tableView) Clear()                    { v.rows = v.rows[:0] }
func (v *tableView) AppendRow(r checklist.Row) { v.rows = append(v.rows, r) }

func (v *tableView) indexOf(id int64) int {
	for i, r := range v.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// alertBox is the checklist.Notifier; an open alert blocks all other input
// until dismissed.
type alertBox struct {
	open           bool
	title, message string
}

func (a *alertBox) Warn(title, message string) {
	a.open = true
	a.title = title
	a.message = message
}

func (a *alertBox) dismiss() { *a = alertBox{} }
