package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

// fakeDB understands the three statements the store issues.
type fakeDB struct {
	data    map[string]string
	execErr error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	key := args[0].(string)
	switch {
	case strings.Contains(sql, "INSERT"):
		f.data[key] = args[1].(string)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE"):
		delete(f.data, key)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected statement")
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	v, ok := f.data[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func TestStore(t *testing.T) {
	db := &fakeDB{data: map[string]string{}}
	s := NewStore(db, "sf:")
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "cart", `{"lines":[]}`))
	require.Equal(t, `{"lines":[]}`, db.data["sf:cart"])

	v, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"lines":[]}`, v)

	require.NoError(t, s.Delete(ctx, "cart"))
	require.Empty(t, db.data)
}

func TestStore_Errors(t *testing.T) {
	db := &fakeDB{data: map[string]string{}, execErr: errors.New("connection reset")}
	s := NewStore(db, "")

	err := s.Set(context.Background(), "cart", "x")
	require.ErrorContains(t, err, "connection reset")
	require.Error(t, s.Delete(context.Background(), "cart"))
}
