package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/mailcheck/internal/checklist"
	"github.com/idilsaglam/mailcheck/internal/model"
	"github.com/idilsaglam/mailcheck/internal/seed"
	"github.com/idilsaglam/mailcheck/internal/store/sqlitestore"
	"github.com/idilsaglam/mailcheck/internal/ui"
)

// collector is the checklist.View for non-interactive commands.
type collector struct{ rows []checklist.Row }

func (c *collector) Clear()                    { c.rows = nil }
func (c *collector) AppendRow(r checklist.Row) { c.rows = append(c.rows, r) }

// warner prints controller warnings as CLI lines.
type warner struct{ warned bool }

func (w *warner) Warn(title, message string) {
	w.warned = true
	ui.Warn(title + ": " + message)
}

type session struct {
	ctrl  *checklist.Controller
	store *sqlitestore.Store
	view  *collector
	warn  *warner
}

// open starts a controller over the configured store. Callers must call close.
func (app *App) open(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	logger := app.logger(cmd.ErrOrStderr())
	st, err := sqlitestore.Open(ctx, app.cfg.DBPath)
	if err != nil {
		logger.Error("open store", "path", app.cfg.DBPath, "err", err)
		return nil, err
	}
	s := &session{store: st, view: &collector{}, warn: &warner{}}
	s.ctrl = checklist.New(st, s.view, s.warn, checklist.Options{SeedPath: app.cfg.SeedPath, Logger: logger})
	if err := s.ctrl.Startup(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) close() { _ = s.ctrl.Shutdown() }

// exists reports whether id is in the store, warning when it is not.
func (s *session) exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.store.Get(ctx, id)
	if errors.Is(err, sqlitestore.ErrNotFound) {
		ui.Warn(fmt.Sprintf("no email with id %d", id))
		return false, nil
	}
	return err == nil, err
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErr("not an id: %s", arg)
	}
	return id, nil
}

func parseStatus(arg string) (model.Status, error) {
	st, ok := model.ParseStatus(strings.ToLower(strings.TrimSpace(arg)))
	if !ok {
		return "", usageErr("unknown status %q (want unused|using|used|leftover)", arg)
	}
	return st, nil
}

// -------------- ls ----------------

func newListCmd(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List emails in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			s, err := app.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			return printRows(cmd, format, s.view.rows)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json|yaml)")
	return cmd
}

func checkFormat(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	}
	return usageErr("unknown format %q (want table|json|yaml)", format)
}

func printRows(cmd *cobra.Command, format string, rows []checklist.Row) error {
	out := cmd.OutOrStdout()
	switch format {
	case "table":
		ui.Panel(tableLines(rows))
	case "json":
		b, err := json.MarshalIndent(rowEntries(rows), "", "  ")
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		fmt.Fprintln(out, string(b))
	case "yaml":
		b, err := yaml.Marshal(rowEntries(rows))
		if err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}
		fmt.Fprint(out, string(b))
	default:
		return checkFormat(format)
	}
	return nil
}

// -------------- show ----------------

func newShowCmd(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			s, err := app.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			e, err := s.store.Get(cmd.Context(), id)
			if errors.Is(err, sqlitestore.ErrNotFound) {
				return &exitError{code: 1, err: fmt.Errorf("no email with id %d", id)}
			}
			if err != nil {
				return err
			}
			row := checklist.Row{ID: e.ID, Email: e.Email, Status: e.Status.Display(), Number: e.NumberText()}
			return printRows(cmd, format, []checklist.Row{row})
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json|yaml)")
	return cmd
}

func rowEntries(rows []checklist.Row) []model.Entry {
	out := make([]model.Entry, 0, len(rows))
	for _, r := range rows {
		e := model.Entry{ID: r.ID, Email: r.Email, Status: r.Status}
		if r.Number != "" {
			n := r.Number
			e.Number = &n
		}
		out = append(out, e)
	}
	return out
}

func tableLines(rows []checklist.Row) []string {
	t := ui.Current()
	counts := map[model.Status]int{}
	for _, r := range rows {
		counts[r.Status]++
	}
	spent := counts[model.StatusUsed] + counts[model.StatusLeftover]

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Emails"),
		ui.C(t.Pending, "using"), counts[model.StatusUsing],
		ui.C(t.Muted, "unused"), counts[model.StatusUnused],
		ui.C(t.Leftover, "leftover"), counts[model.StatusLeftover],
		ui.C(t.Success, "used"), counts[model.StatusUsed],
		ui.C(t.Accent, "Total"), len(rows),
	)
	lines := []string{header, ui.C(t.Muted, ui.ProgressBar(spent, len(rows), 28)), ""}
	if len(rows) == 0 {
		lines = append(lines, ui.C(t.Muted, "no emails"))
	}
	for _, r := range rows {
		glyph, color := t.Box(r.Status)
		line := fmt.Sprintf("%s %s %-9s %s",
			ui.C(t.Muted, fmt.Sprintf("%4d", r.ID)), ui.C(color, glyph), r.Status, r.Email)
		if r.Number != "" {
			line += " " + ui.C(t.Muted, "("+r.Number+")")
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", ui.C(t.Muted, "Tip: add with `mailcheck add someone@example.com`"))
	return lines
}

// -------------- add ----------------

func newAddCmd(app *App) *cobra.Command {
	var status, number string
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Add an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatus(status)
			if err != nil {
				return err
			}
			s, err := app.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			form := &checklist.Form{Email: args[0], Status: st, Number: number}
			if err := s.ctrl.Add(cmd.Context(), form); err != nil {
				var verr *checklist.ValidationError
				switch {
				case errors.As(err, &verr):
					return &exitError{code: 2, err: err, silent: s.warn.warned}
				case errors.Is(err, sqlitestore.ErrDuplicateEmail):
					return &exitError{code: 1, err: err, silent: s.warn.warned}
				}
				return err
			}
			ui.OK("added")
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", string(model.StatusUnused), "Initial status (unused|using|used|leftover)")
	cmd.Flags().StringVar(&number, "number", "", "Optional number")
	return cmd
}

// -------------- status / number ----------------

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the status of an email",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			s, err := app.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if ok, err := s.exists(cmd.Context(), id); !ok {
				return err
			}
			if err := s.ctrl.ChangeStatus(cmd.Context(), id, st); err != nil {
				return err
			}
			ui.OK("status set")
			return nil
		},
	}
}

func newNumberCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "number <id> [number]",
		Short: "Set or clear the number of an email",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			s, err := app.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if ok, err := s.exists(cmd.Context(), id); !ok {
				return err
			}
			if err := s.ctrl.EditNumber(cmd.Context(), checklist.Row{ID: id}, text); err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				ui.OK("number cleared")
			} else {
				ui.OK("number set")
			}
			return nil
		},
	}
}

// -------------- rm ----------------

func newRemoveCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete emails after confirmation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []int64
			for _, a := range args {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			s, err := app.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var selected []checklist.Row
			for _, id := range ids {
				ok, err := s.exists(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ok {
					selected = append(selected, checklist.Row{ID: id})
				}
			}

			in := bufio.NewReader(cmd.InOrStdin())
			confirm := func(prompt string) bool {
				if yes {
					return true
				}
				fmt.Fprint(cmd.OutOrStdout(), prompt+" [y/N] ")
				line, _ := in.ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(line)) {
				case "y", "yes":
					return true
				}
				return false
			}
			deleted, err := s.ctrl.DeleteSelected(cmd.Context(), selected, confirm)
			if err != nil {
				return err
			}
			if !deleted {
				ui.Warn("nothing deleted")
				return nil
			}
			ui.OK("deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// -------------- export ----------------

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write the checklist back out as a seed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return exportRows(args[0], s.view.rows)
		},
	}
}

func exportRows(path string, rows []checklist.Row) error {
	var buf bytes.Buffer
	if err := seed.Format(&buf, rowEntries(rows)); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	ui.OK(fmt.Sprintf("exported %d emails", len(rows)))
	return nil
}
