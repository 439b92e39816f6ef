package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"paygate/internal/platform/store/pg"
	"paygate/internal/platform/store/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureTracer struct {
	mu     sync.Mutex
	events []pg.QueryEvent
}

func (c *captureTracer) OnQuery(_ context.Context, ev pg.QueryEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureTracer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// newLiteAdapter opens a sqlite file under t.TempDir with a small table
func newLiteAdapter(t *testing.T, tracer pg.QueryTracer) *sqlAdapter {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.Config{Path: filepath.Join(t.TempDir(), "store.db")})
	require.NoError(t, err)
	a := newSQLAdapter(db, tracer, 0)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Exec(ctx, `CREATE TABLE refs (reference TEXT PRIMARY KEY, amount INTEGER NOT NULL)`)
	require.NoError(t, err)
	return a
}

func TestSQLAdapter_ExecQueryColumns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := &captureTracer{}
	a := newLiteAdapter(t, tr)

	tag, err := a.Exec(ctx, `INSERT INTO refs (reference, amount) VALUES (?, ?), (?, ?)`, "a", 10, "b", 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, tag.RowsAffected())
	assert.Equal(t, "ROWS 2", tag.String())

	var amt int64
	require.NoError(t, a.QueryRow(ctx, `SELECT amount FROM refs WHERE reference = ?`, "b").Scan(&amt))
	assert.EqualValues(t, 20, amt)

	rs, err := a.Query(ctx, `SELECT reference, amount FROM refs ORDER BY reference`)
	require.NoError(t, err)
	defer rs.Close()
	assert.Equal(t, []string{"reference", "amount"}, rs.Columns())

	var got []string
	for rs.Next() {
		var ref string
		var n int64
		require.NoError(t, rs.Scan(&ref, &n))
		got = append(got, ref)
	}
	require.NoError(t, rs.Err())
	assert.Equal(t, []string{"a", "b"}, got)

	// create + insert + queryrow + query
	assert.Equal(t, 4, tr.count())
}

func TestSQLAdapter_OnConflictDoNothingReportsZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newLiteAdapter(t, nil)

	q := `INSERT INTO refs (reference, amount) VALUES (?, ?) ON CONFLICT (reference) DO NOTHING`
	tag, err := a.Exec(ctx, q, "dup", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, tag.RowsAffected())

	tag, err = a.Exec(ctx, q, "dup", 2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, tag.RowsAffected())
}

func TestSQLAdapter_TxCommitAndRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newLiteAdapter(t, nil)

	require.NoError(t, a.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO refs (reference, amount) VALUES (?, ?)`, "kept", 1)
		return err
	}))

	errRollback := errors.New("rollback")
	err := a.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO refs (reference, amount) VALUES (?, ?)`, "dropped", 1); err != nil {
			return err
		}
		return errRollback
	})
	assert.ErrorIs(t, err, errRollback)

	n, err := Scalar[int64](ctx, a, `SELECT COUNT(*) FROM refs`)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSQLAdapter_PingNil(t *testing.T) {
	t.Parallel()
	var a *sqlAdapter
	assert.Error(t, a.Ping(context.Background()))
}
