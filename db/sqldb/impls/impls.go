package impls

import (
	"github.com/zeptools/gw-dbconn/db/sqldb/impls/mysql"
	"github.com/zeptools/gw-dbconn/db/sqldb/impls/oracle"
	"github.com/zeptools/gw-dbconn/db/sqldb/impls/pgsql"
	"github.com/zeptools/gw-dbconn/db/sqldb/impls/sqlite"
)

// RegisterAll registers every supported dialect with sqldb
func RegisterAll() {
	oracle.Register()
	mysql.Register()
	pgsql.Register()
	sqlite.Register()
}
