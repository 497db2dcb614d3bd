package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-dbconn/db"
	"github.com/zeptools/gw-dbconn/db/sqldb"
)

func writeProps(t *testing.T, path, dbFile string) {
	t.Helper()
	body := "# airplane service\nid=sa\npw=unused\nurl=jdbc:sqlite:" + dbFile + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func skipWithoutCgo(t *testing.T, err error) {
	t.Helper()
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "cgo") {
		t.Skip("go-sqlite3 needs cgo: ", err)
	}
}

func TestBuildDSN(t *testing.T) {
	for rest, want := range map[string]string{
		":memory:":            ":memory:",
		"/var/lib/air.db":     "/var/lib/air.db",
		"sqlite://air.db":     "air.db",
		"file:air.db?mode=ro": "file:air.db?mode=ro",
	} {
		got, err := BuildDSN(rest, nil)
		require.NoError(t, err, rest)
		assert.Equal(t, want, got)
	}
	_, err := BuildDSN("sqlite://", nil)
	assert.Error(t, err)
}

func TestProviderWithConn(t *testing.T) {
	Register()
	ctx := context.Background()
	dir := t.TempDir()
	props := filepath.Join(dir, "db.properties")
	writeProps(t, props, filepath.Join(dir, "air.db"))

	p := sqldb.NewProvider(props)
	var codes []string
	var rows sqldb.Rows
	err := p.WithConn(ctx, func(conn *sqldb.Conn, scope *db.Scope) error {
		assert.Equal(t, DBType, conn.DBType())
		if _, err := conn.Exec(ctx, "CREATE TABLE flights (id INTEGER PRIMARY KEY, code TEXT NOT NULL)"); err != nil {
			return err
		}
		stmt, err := conn.Prepare(ctx, "INSERT INTO flights (code) VALUES (?)")
		if err != nil {
			return err
		}
		scope.Add("insert", stmt)
		for _, code := range []string{"KE017", "OZ202"} {
			if _, err = stmt.ExecContext(ctx, code); err != nil {
				return err
			}
		}
		rows, err = conn.QueryRows(ctx, "SELECT code FROM flights ORDER BY id")
		if err != nil {
			return err
		}
		scope.Add("rows", rows)
		for rows.Next() {
			var code string
			if err = rows.Scan(&code); err != nil {
				return err
			}
			codes = append(codes, code)
		}
		assert.Equal(t, 3, scope.Len())
		return rows.Err()
	})
	skipWithoutCgo(t, err)
	require.NoError(t, err)
	assert.Equal(t, []string{"KE017", "OZ202"}, codes)
	assert.False(t, rows.Next(), "rows released with the scope")

	var n int
	conn, err := p.Connect(ctx)
	require.NoError(t, err)
	defer db.CloseAll(conn)
	require.NoError(t, conn.QueryRow(ctx, "SELECT COUNT(*) FROM flights").Scan(&n))
	assert.Equal(t, 2, n)

	var code string
	err = conn.QueryRow(ctx, "SELECT code FROM flights WHERE id = ?", 99).Scan(&code)
	assert.ErrorIs(t, err, sqldb.ErrNoRows)
}

func TestProviderReloadsConfEveryCall(t *testing.T) {
	Register()
	ctx := context.Background()
	dir := t.TempDir()
	props := filepath.Join(dir, "db.properties")
	p := sqldb.NewProvider(props)

	writeProps(t, props, filepath.Join(dir, "a.db"))
	first, err := p.Connect(ctx)
	skipWithoutCgo(t, err)
	require.NoError(t, err)
	_, err = first.Exec(ctx, "CREATE TABLE only_in_a (x INTEGER)")
	require.NoError(t, err)
	require.NoError(t, first.Close())
	assert.NoError(t, first.Close(), "second close is a no-op")

	writeProps(t, props, filepath.Join(dir, "b.db"))
	second, err := p.Connect(ctx)
	require.NoError(t, err)
	defer db.CloseAll(second)
	_, err = second.Exec(ctx, "INSERT INTO only_in_a (x) VALUES (1)")
	assert.Error(t, err)
}
