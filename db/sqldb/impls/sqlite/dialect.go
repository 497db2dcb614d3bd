package sqlite

import (
	"errors"
	"strings"

	"github.com/zeptools/gw-dbconn/db/sqldb"

	_ "github.com/mattn/go-sqlite3" // registers driver "sqlite3"
)

const (
	DBType     = "sqlite"
	DriverName = "sqlite3"
)

func Register() {
	sqldb.Register(sqldb.Dialect{
		Type:       DBType,
		DriverName: DriverName,
		BuildDSN:   BuildDSN,
	})
}

// BuildDSN accepts a file path, `:memory:`, `sqlite://path` or a `file:` uri.
// Credentials are not used.
func BuildDSN(rest string, _ *sqldb.Conf) (string, error) {
	dsn := rest
	if after, ok := strings.CutPrefix(dsn, "sqlite://"); ok {
		dsn = after
	}
	if dsn == "" {
		return "", errors.New("sqlite url: missing path")
	}
	return dsn, nil
}
