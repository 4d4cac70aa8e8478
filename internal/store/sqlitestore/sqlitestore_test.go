package sqlitestore

import (
	"context"
	"os"
	"sort"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mailcheck/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "emails.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func statuses(entries []model.Entry) []model.Status {
	out := make([]model.Status, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Status)
	}
	return out
}

func TestOpen_CreatesFileAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "emails.db")

	for i := 0; i < 3; i++ {
		s, err := Open(ctx, path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Close())
	}
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestInsert_DuplicateEmailLeavesExistingRow(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Insert(ctx, "a@x.com", model.StatusUsing, "7")
	require.NoError(t, err)

	_, err = s.Insert(ctx, "a@x.com", model.StatusUsed, "9")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUsing, got.Status)
	require.NotNil(t, got.Number)
	assert.Equal(t, "7", *got.Number)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsert_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Insert(ctx, "a@x.com", model.StatusUnused, "")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "A@x.com", model.StatusUnused, "")
	assert.NoError(t, err)
}

func TestInsert_RejectsUnknownStatus(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Insert(context.Background(), "a@x.com", model.Status("nope"), "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListAll_OrdersByStatusRankThenID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i, st := range []model.Status{model.StatusUsed, model.StatusUnused, model.StatusUsing, model.StatusLeftover} {
		_, err := s.Insert(ctx, string(st)+"@x.com", st, "")
		require.NoError(t, err, "insert %d", i)
	}

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t,
		[]model.Status{model.StatusUsing, model.StatusUnused, model.StatusLeftover, model.StatusUsed},
		statuses(got))
}

// The SQL ORDER BY and model.Less must agree, unknown statuses included.
func TestListAll_MatchesModelLess(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	mixed := []model.Status{
		model.StatusUsed, "archived", model.StatusUsing, model.StatusUnused,
		model.StatusLeftover, model.StatusUsing, model.StatusUsed, model.StatusUnused,
	}
	for i, st := range mixed {
		_, err := s.db.ExecContext(ctx, `INSERT INTO emails(email, status) VALUES(?, ?)`,
			string(st)+string(rune('a'+i))+"@x.com", string(st))
		require.NoError(t, err)
	}

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(mixed))
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return model.Less(got[i], got[j]) }))
	assert.Equal(t, "archived", string(got[len(got)-1].Status))
}

func TestListAll_UnknownStatusRanksLastAndIsNotRewritten(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.db.ExecContext(ctx, `INSERT INTO emails(email, status) VALUES('odd@x.com', 'archived')`)
	require.NoError(t, err)
	_, err = s.Insert(ctx, "b@x.com", model.StatusUsed, "")
	require.NoError(t, err)

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b@x.com", got[0].Email)
	assert.Equal(t, model.Status("archived"), got[1].Status)
	assert.Equal(t, model.StatusUnused, got[1].Status.Display())
}

func TestUpdateStatus_MovesEntryOnNextList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a, err := s.Insert(ctx, "a@x.com", model.StatusUsing, "")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "b@x.com", model.StatusUnused, "")
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, a, model.StatusUsed))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[1].ID)
	assert.Equal(t, model.StatusUsed, got[1].Status)
}

func TestUpdateStatus_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	assert.NoError(t, s.UpdateStatus(ctx, 99, model.StatusUsed))
	assert.ErrorIs(t, s.UpdateStatus(ctx, 99, model.Status("x")), ErrInvalidStatus)
}

func TestUpdateNumber_BlankBecomesAbsent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Insert(ctx, "a@x.com", model.StatusUnused, "   ")
	require.NoError(t, err)
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Number)

	require.NoError(t, s.UpdateNumber(ctx, id, " 12 "))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Number)
	assert.Equal(t, "12", *got.Number)

	require.NoError(t, s.UpdateNumber(ctx, id, ""))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Number)

	var isNull bool
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT number IS NULL FROM emails WHERE id = ?`, id).Scan(&isNull))
	assert.True(t, isNull)
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var ids []int64
	for _, e := range []string{"a", "b", "c"} {
		id, err := s.Insert(ctx, e+"@x.com", model.StatusUnused, "")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, s.DeleteByID(ctx, ids[1]))
	require.NoError(t, s.DeleteByID(ctx, 1000))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[0], got[0].ID)
	assert.Equal(t, ids[2], got[1].ID)

	_, err = s.Get(ctx, ids[1])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteByIDs_RemovesAllInOneBatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var ids []int64
	for _, e := range []string{"a", "b", "c", "d"} {
		id, err := s.Insert(ctx, e+"@x.com", model.StatusUnused, "")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, s.DeleteByIDs(ctx, []int64{ids[0], 1000, ids[2]}))
	require.NoError(t, s.DeleteByIDs(ctx, nil))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[1], got[0].ID)
	assert.Equal(t, ids[3], got[1].ID)
}

func TestDeleteByIDs_CanceledContextDeletesNothing(t *testing.T) {
	s := openTestStore(t)
	id, err := s.Insert(context.Background(), "a@x.com", model.StatusUnused, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.DeleteByIDs(ctx, []int64{id}))

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteByID_IDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Insert(ctx, "a@x.com", model.StatusUnused, "")
	require.NoError(t, err)
	require.NoError(t, s.DeleteByID(ctx, first))

	second, err := s.Insert(ctx, "a@x.com", model.StatusUnused, "")
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestBulkInsert_FirstOccurrenceWins(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	n, err := s.BulkInsert(ctx, []model.SeedRow{
		{Email: "a@x.com", Status: model.StatusUsed, Number: "1"},
		{Email: "b@x.com", Status: model.StatusUsing},
		{Email: "a@x.com", Status: model.StatusUnused, Number: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b@x.com", got[0].Email)
	assert.Equal(t, "a@x.com", got[1].Email)
	assert.Equal(t, model.StatusUsed, got[1].Status)
	assert.Equal(t, "1", got[1].NumberText())
}

func TestBulkInsert_InvalidStatusInsertsNothing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.BulkInsert(ctx, []model.SeedRow{
		{Email: "a@x.com", Status: model.StatusUsed},
		{Email: "b@x.com", Status: model.Status("bad")},
	})
	require.ErrorIs(t, err, ErrInvalidStatus)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t,
		"CASE status WHEN 'using' THEN 0 WHEN 'unused' THEN 1 WHEN 'leftover' THEN 2 WHEN 'used' THEN 3 ELSE 4 END",
		orderClause())
}
