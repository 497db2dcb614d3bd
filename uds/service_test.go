package uds

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-dbconn/db/sqldb"
)

func init() {
	sqldb.Register(sqldb.Dialect{
		Type:       "mockdb",
		DriverName: "sqlmock",
		BuildDSN: func(rest string, conf *sqldb.Conf) (string, error) {
			return rest, nil
		},
	})
}

// sockPath stays short, unix socket paths are limited to about 100 bytes
func sockPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "uds")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "admin.sock")
}

func startService(t *testing.T, cmdMap map[string]CmdHnd) *Service {
	t.Helper()
	s := NewService(context.Background(), sockPath(t), cmdMap)
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		s.Stop()
		select {
		case err := <-s.Done():
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("uds service did not stop")
		}
	})
	return s
}

// send writes lines to the socket and returns everything read until the server closes
func send(t *testing.T, s *Service, lines ...string) string {
	t.Helper()
	c, err := net.Dial("unix", s.SocketPath)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.SetDeadline(time.Now().Add(2*time.Second)))
	w := bufio.NewWriter(c)
	for _, l := range lines {
		_, _ = w.WriteString(l + "\n")
	}
	require.NoError(t, w.Flush())
	out, _ := io.ReadAll(c)
	return string(out)
}

func TestCommand(t *testing.T) {
	gotArgs := make(chan []string, 1)
	s := startService(t, map[string]CmdHnd{
		"echo": {Desc: "echo args", Fn: func(ctx context.Context, args []string, w io.Writer) error {
			gotArgs <- args
			_, err := io.WriteString(w, strings.Join(args, ",")+"\n")
			return err
		}},
	})

	assert.Equal(t, "a,b\n", send(t, s, "echo a b"))
	assert.Equal(t, []string{"a", "b"}, <-gotArgs)
}

func TestCommandError(t *testing.T) {
	s := startService(t, map[string]CmdHnd{
		"fail": {Fn: func(ctx context.Context, args []string, w io.Writer) error {
			return errors.New("no luck")
		}},
	})
	assert.Equal(t, "error: no luck\n", send(t, s, "fail"))
}

func TestUnknownThenHelpThenQuit(t *testing.T) {
	s := startService(t, map[string]CmdHnd{
		"b.cmd": {Desc: "second"},
		"a.cmd": {Desc: "first", Usage: "a.cmd <n>"},
	})

	out := send(t, s, "", "nope", "help", "quit")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "unknown command: nope", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "a.cmd <n>"))
	assert.True(t, strings.HasSuffix(lines[1], "first"))
	assert.True(t, strings.HasPrefix(lines[2], "b.cmd"))
}

func TestSocketPermissionsAndCleanup(t *testing.T) {
	s := NewService(context.Background(), sockPath(t), nil)
	require.NoError(t, s.Start())

	info, err := os.Stat(s.SocketPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s.Stop()
	require.NoError(t, <-s.Done())
	_, err = os.Stat(s.SocketPath)
	assert.True(t, os.IsNotExist(err))
}

func TestStartFails(t *testing.T) {
	s := NewService(context.Background(), filepath.Join(t.TempDir(), "missing", "admin.sock"), nil)
	assert.Error(t, s.Start())
}

func mockProvider(t *testing.T) (*sqldb.Provider, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "db.properties")
	require.NoError(t, os.WriteFile(path, []byte("id=ops\npw=secret\nurl=mockdb://inventory\n"), 0o600))
	return &sqldb.Provider{
		ConfPath: path,
		OpenDB: func(driverName, dsn string) (*sql.DB, error) {
			return mockDB, nil
		},
	}, mock
}

func TestDBCheck(t *testing.T) {
	p, mock := mockProvider(t)
	mock.ExpectPing()
	mock.ExpectPing()
	mock.ExpectClose()
	s := startService(t, DBCmdMap(p))

	assert.Equal(t, "ok type=mockdb user=ops\n", send(t, s, "db.check"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCheckFailure(t *testing.T) {
	p, mock := mockProvider(t)
	mock.ExpectPing().WillReturnError(errors.New("ORA-12541: TNS:no listener"))
	mock.ExpectClose()
	s := startService(t, DBCmdMap(p))

	out := send(t, s, "db.check")
	assert.True(t, strings.HasPrefix(out, "error: "))
	assert.Contains(t, out, "ORA-12541")
}

func TestDBConfHidesPassword(t *testing.T) {
	p, _ := mockProvider(t)
	s := startService(t, DBCmdMap(p))

	out := send(t, s, "db.conf")
	assert.Contains(t, out, "id=ops")
	assert.NotContains(t, out, "secret")
}

func TestDBDrivers(t *testing.T) {
	p, _ := mockProvider(t)
	s := startService(t, DBCmdMap(p))
	assert.Contains(t, send(t, s, "db.drivers"), "mockdb")
}
