// Package checklist mediates between the email store and whatever is
// displaying it. Every user action goes through a Controller method, which
// writes to the store and, for add and delete, repopulates the View.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/mailcheck/internal/model"
	"github.com/idilsaglam/mailcheck/internal/seed"
	"github.com/idilsaglam/mailcheck/internal/store/sqlitestore"
)

// Store is the persistence the controller drives.
type Store interface {
	Initialize(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	BulkInsert(ctx context.Context, rows []model.SeedRow) (int, error)
	Insert(ctx context.Context, email string, status model.Status, number string) (int64, error)
	ListAll(ctx context.Context) ([]model.Entry, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	UpdateNumber(ctx context.Context, id int64, number string) error
	DeleteByID(ctx context.Context, id int64) error
	DeleteByIDs(ctx context.Context, ids []int64) error
	Close() error
}

// View receives rows during a reload. Implementations may fire edit events
// while rows are appended; those are ignored until the reload finishes.
type View interface {
	Clear()
	AppendRow(Row)
}

// Notifier shows blocking, user-visible warnings.
type Notifier interface {
	Warn(title, message string)
}

// Mode is the controller state checked at the top of every edit handler.
type Mode int

const (
	ModeInteractive Mode = iota
	ModeReloading
)

func (m Mode) String() string {
	if m == ModeReloading {
		return "reloading"
	}
	return "interactive"
}

// Row is the view-model of one displayed entry. ID is the only handle used to
// address the entry; display position is never used as identity.
type Row struct {
	ID     int64
	Email  string
	Status model.Status
	Number string
}

// Form is the add-entry input.
type Form struct {
	Email  string
	Status model.Status
	Number string
}

// ValidationError reports a blank or otherwise unusable form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

type Options struct {
	// SeedPath is the checklist document imported when the store is empty.
	SeedPath string
	Logger   *log.Logger
}

type Controller struct {
	store  Store
	view   View
	notify Notifier
	opts   Options
	log    *log.Logger
	mode   Mode
	rows   []Row
}

func New(store Store, view View, notify Notifier, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{store: store, view: view, notify: notify, opts: opts, log: logger}
}

func (c *Controller) Mode() Mode { return c.mode }

// Rows returns the rows of the last reload, in display order.
func (c *Controller) Rows() []Row {
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Startup initializes the store, seeds it once when empty, then reloads.
func (c *Controller) Startup(ctx context.Context) error {
	if err := c.store.Initialize(ctx); err != nil {
		return err
	}
	n, err := c.store.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		if err := c.seed(ctx); err != nil {
			return err
		}
	}
	return c.Reload(ctx)
}

func (c *Controller) seed(ctx context.Context) error {
	if c.opts.SeedPath == "" {
		return nil
	}
	rows, err := seed.ParseFile(c.opts.SeedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.log.Warn("seed document not found, starting empty", "path", c.opts.SeedPath)
			return nil
		}
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	inserted, err := c.store.BulkInsert(ctx, rows)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	c.log.Info("seeded store", "path", c.opts.SeedPath, "parsed", len(rows), "inserted", inserted)
	return nil
}

// Reload clears the view and repopulates it from the store.
func (c *Controller) Reload(ctx context.Context) error {
	entries, err := c.store.ListAll(ctx)
	if err != nil {
		return err
	}

	c.mode = ModeReloading
	defer func() { c.mode = ModeInteractive }()

	c.rows = c.rows[:0]
	c.view.Clear()
	for _, e := range entries {
		row := Row{
			ID:     e.ID,
			Email:  e.Email,
			Status: e.Status.Display(),
			Number: e.NumberText(),
		}
		c.rows = append(c.rows, row)
		c.view.AppendRow(row)
	}
	c.log.Debug("reloaded", "rows", len(entries))
	return nil
}

// Add inserts the form's entry. On success the email and number fields are
// cleared and the view reloaded; on failure the form is left as entered.
func (c *Controller) Add(ctx context.Context, f *Form) error {
	email := strings.TrimSpace(f.Email)
	if email == "" {
		err := &ValidationError{Field: "email", Message: "Enter an email address."}
		c.notify.Warn("Missing Email", err.Message)
		return err
	}
	status := f.Status
	if status == "" {
		status = model.StatusUnused
	}

	id, err := c.store.Insert(ctx, email, status, strings.TrimSpace(f.Number))
	if errors.Is(err, sqlitestore.ErrDuplicateEmail) {
		c.notify.Warn("Duplicate Email", "That email already exists in the checklist.")
		return err
	}
	if err != nil {
		return err
	}
	c.log.Debug("added", "id", id, "email", email, "status", status)

	f.Email = ""
	f.Number = ""
	return c.Reload(ctx)
}

// ChangeStatus writes a new status for id. The view is not reloaded, so the
// row keeps its position until the next reload.
func (c *Controller) ChangeStatus(ctx context.Context, id int64, status model.Status) error {
	if c.mode == ModeReloading {
		return nil
	}
	if !status.Valid() {
		return nil
	}
	if err := c.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	c.setRow(id, func(r *Row) { r.Status = status })
	c.log.Debug("status changed", "id", id, "status", status)
	return nil
}

// EditNumber writes the number typed into row's number cell. Blank clears it.
func (c *Controller) EditNumber(ctx context.Context, row Row, text string) error {
	if c.mode == ModeReloading {
		return nil
	}
	number := strings.TrimSpace(text)
	if err := c.store.UpdateNumber(ctx, row.ID, number); err != nil {
		return err
	}
	c.setRow(row.ID, func(r *Row) { r.Number = number })
	c.log.Debug("number changed", "id", row.ID, "number", number)
	return nil
}

// DeleteRequest is a pending deletion waiting for the user to confirm.
type DeleteRequest struct {
	IDs []int64
}

func (r DeleteRequest) Prompt() string {
	return fmt.Sprintf("Delete %d selected row(s)?", len(r.IDs))
}

// PrepareDelete collects the distinct ids of the selected rows.
// It reports false when nothing is selected.
func (c *Controller) PrepareDelete(selected []Row) (DeleteRequest, bool) {
	seen := make(map[int64]bool, len(selected))
	var req DeleteRequest
	for _, r := range selected {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		req.IDs = append(req.IDs, r.ID)
	}
	return req, len(req.IDs) > 0
}

// ConfirmDelete deletes every id in req atomically and reloads the view,
// also when the delete fails.
func (c *Controller) ConfirmDelete(ctx context.Context, req DeleteRequest) error {
	if err := c.store.DeleteByIDs(ctx, req.IDs); err != nil {
		c.log.Error("delete failed", "ids", req.IDs, "err", err)
		// Show what the store actually holds before reporting.
		if rerr := c.Reload(ctx); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	c.log.Debug("deleted", "ids", req.IDs)
	return c.Reload(ctx)
}

// DeleteSelected asks confirm with the request prompt and deletes on yes.
// It reports whether anything was deleted.
func (c *Controller) DeleteSelected(ctx context.Context, selected []Row, confirm func(prompt string) bool) (bool, error) {
	req, ok := c.PrepareDelete(selected)
	if !ok {
		return false, nil
	}
	if !confirm(req.Prompt()) {
		return false, nil
	}
	return true, c.ConfirmDelete(ctx, req)
}

// Shutdown releases the store.
func (c *Controller) Shutdown() error {
	return c.store.Close()
}

func (c *Controller) setRow(id int64, fn func(*Row)) {
	for i := range c.rows {
		if c.rows[i].ID == id {
			fn(&c.rows[i])
			return
		}
	}
}
