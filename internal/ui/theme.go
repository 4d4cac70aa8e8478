package ui

import (
	"strings"

	"github.com/idilsaglam/mailcheck/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name                                          string
	Title, Muted, Accent, Success, Error, Pending string
	Leftover                                      string
	BoxUnused, BoxUsing, BoxUsed, BoxLeftover     string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
}

var current = classic()

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		disableColor = false
		current = Theme{
			Name:  "neon",
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m", Leftover: fgMagenta,
			BoxUnused: "◻", BoxUsing: "◧", BoxUsed: "◼", BoxLeftover: "◫",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
		}
	case "mono":
		disableColor = true
		current = Theme{
			Name:      "mono",
			BoxUnused: "[ ]", BoxUsing: "[o]", BoxUsed: "[x]", BoxLeftover: "[-]",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
		}
	default:
		disableColor = false
		current = classic()
	}
}

func classic() Theme {
	return Theme{
		Name:  "classic",
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow, Leftover: fgMagenta,
		BoxUnused: "☐", BoxUsing: "◐", BoxUsed: "☑", BoxLeftover: "☒",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
	}
}

// Expose what renderers need
func Current() Theme { return current }

// Box returns the checkbox glyph and colour for a status.
func (t Theme) Box(s model.Status) (glyph, color string) {
	switch s.Display() {
	case model.StatusUsing:
		return t.BoxUsing, t.Pending
	case model.StatusUsed:
		return t.BoxUsed, t.Success
	case model.StatusLeftover:
		return t.BoxLeftover, t.Leftover
	default:
		return t.BoxUnused, t.Muted
	}
}
