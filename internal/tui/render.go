package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/mailcheck/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
	buttonStyle   = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("236"))
	activeButton  = buttonStyle.Background(lipgloss.Color("12")).Foreground(lipgloss.Color("0")).Bold(true)

	statusStyles = map[model.Status]lipgloss.Style{
		model.StatusUnused:   lipgloss.NewStyle().Faint(true),
		model.StatusUsing:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.StatusUsed:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.StatusLeftover: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
)

const (
	statusColWidth = 12
	numberColWidth = 18
	chromeLines    = 9
)

func (m modelTUI) tableHeight() int {
	h := m.height - chromeLines
	if h < 1 {
		h = 1
	}
	return h
}

func (m modelTUI) View() string {
	switch {
	case m.alert.open:
		return m.overlay(m.renderModal(m.alert.title, m.alert.message, "OK", ""))
	case m.pending != nil:
		return m.overlay(m.renderModal("Delete", m.pending.Prompt(), "Yes", "No"))
	}
	return m.screen()
}

func (m modelTUI) screen() string {
	parts := []string{
		m.renderTitle(),
		m.renderForm(),
		"",
		m.renderTable(),
	}
	if m.editing {
		parts = append(parts, accentStyle.Render("Number: ")+m.editIn.View())
	}
	keys := m.keys.tableHelp()
	if m.focus != focusTable {
		keys = m.keys.formHelp()
	}
	parts = append(parts, m.help.ShortHelpView(keys))
	return panelStyle.Width(max(m.width-2, 20)).Render(strings.Join(parts, "\n"))
}

func (m modelTUI) renderTitle() string {
	counts := map[model.Status]int{}
	for _, r := range m.view.rows {
		counts[r.Status]++
	}
	title := fmt.Sprintf("%s   %s %d  %s %d  %s %d  %s %d  %s %d",
		titleStyle.Render("Email Checklist"),
		statusStyles[model.StatusUsing].Render("using"), counts[model.StatusUsing],
		statusStyles[model.StatusUnused].Render("unused"), counts[model.StatusUnused],
		statusStyles[model.StatusLeftover].Render("leftover"), counts[model.StatusLeftover],
		statusStyles[model.StatusUsed].Render("used"), counts[model.StatusUsed],
		accentStyle.Render("total"), len(m.view.rows),
	)
	if n := len(m.selected); n > 0 {
		title += "  " + selectedStyle.Render(fmt.Sprintf("%d selected", n))
	}
	return title
}

func (m modelTUI) renderForm() string {
	label := func(f focus, s string) string {
		if m.focus == f {
			return focusedStyle.Render(s)
		}
		return mutedStyle.Render(s)
	}
	status := fmt.Sprintf("‹ %s ›", m.formStatus)
	if m.focus == focusStatus {
		status = focusedStyle.Render(status)
	}
	return strings.Join([]string{
		label(focusEmail, "Email") + " " + m.emailIn.View(),
		label(focusStatus, "Status") + " " + status,
		label(focusNumber, "Number") + " " + m.numberIn.View(),
	}, "   ")
}

func (m modelTUI) renderTable() string {
	emailW := m.width - statusColWidth - numberColWidth - 12
	if emailW < 16 {
		emailW = 16
	}
	lines := []string{
		"    " + headerStyle.Render(pad("Email", emailW)) + " " +
			headerStyle.Render(pad("Status", statusColWidth)) + " " +
			headerStyle.Render(pad("Number", numberColWidth)),
	}
	if len(m.view.rows) == 0 {
		lines = append(lines, mutedStyle.Render("    no emails, press a to add one"))
		return strings.Join(lines, "\n")
	}

	end := min(m.offset+m.tableHeight(), len(m.view.rows))
	for i := m.offset; i < end; i++ {
		r := m.view.rows[i]
		mark := "  "
		if m.selected[r.ID] {
			mark = selectedStyle.Render("● ")
		}
		status := pad("‹"+string(r.Status)+"›", statusColWidth)
		line := pad(r.Email, emailW) + " " + statusStyles[r.Status].Render(status) + " " + pad(r.Number, numberColWidth)
		prefix := "  "
		if i == m.cursor && m.focus == focusTable {
			prefix = cursorStyle.Render("> ")
		}
		lines = append(lines, prefix+mark+line)
	}
	if len(m.view.rows) > end-m.offset {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("    %d-%d of %d", m.offset+1, end, len(m.view.rows))))
	}
	return strings.Join(lines, "\n")
}

func (m modelTUI) renderModal(title, body, yes, no string) string {
	controls := activeButton.Render(yes)
	if no != "" {
		yesBtn, noBtn := buttonStyle.Render(yes), activeButton.Render(no)
		if m.confirmYes {
			yesBtn, noBtn = activeButton.Render(yes), buttonStyle.Render(no)
		}
		controls = lipgloss.JoinHorizontal(lipgloss.Top, yesBtn, " ", noBtn)
	}
	help := mutedStyle.Render("enter: ok   esc: close")
	if no != "" {
		help = mutedStyle.Render("y/n   tab: switch   enter: select   esc: cancel")
	}
	return modalStyle.Render(strings.Join([]string{
		errorStyle.Render(title),
		"",
		body,
		"",
		controls,
		"",
		help,
	}, "\n"))
}

func (m modelTUI) overlay(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// pad truncates or right-pads s to exactly w terminal cells.
func pad(s string, w int) string {
	if runewidth.StringWidth(s) > w {
		return runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}
