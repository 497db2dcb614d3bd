package pgsql

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/zeptools/gw-dbconn/db/sqldb"

	_ "github.com/jackc/pgx/v5/stdlib" // registers driver "pgx"
)

const (
	DBType      = "pgsql"
	DriverName  = "pgx"
	DefaultPort = 5432
)

func Register() {
	sqldb.Register(sqldb.Dialect{
		Type:       DBType,
		DriverName: DriverName,
		BuildDSN:   BuildDSN,
	})
}

// jdbc property -> libpq keyword
var paramMap = map[string]string{
	"sslmode":         "sslmode",
	"connectTimeout":  "connect_timeout",
	"connect_timeout": "connect_timeout",
	"ApplicationName": "application_name",
	"currentSchema":   "search_path",
}

// BuildDSN accepts `//host:port/db?params` (jdbc remainder) or a postgres:// url
// and returns a postgres:// url carrying conf's credentials.
func BuildDSN(rest string, conf *sqldb.Conf) (string, error) {
	raw := rest
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "postgres://") && !strings.HasPrefix(lower, "postgresql://") {
		raw = "postgres:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("pgsql url: %w", err)
	}
	if u.Host == "" {
		return "", errors.New("pgsql url: missing host")
	}
	host, port, err := sqldb.SplitHostPort(u.Host, DefaultPort)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	for key := range u.Query() {
		val := u.Query().Get(key)
		switch {
		case key == "ssl":
			if val == "true" {
				q.Set("sslmode", "require")
			}
		case paramMap[key] != "":
			q.Set(paramMap[key], val)
		default:
			log.Printf("[INFO][%s] ignoring url parameter %q", DBType, key)
		}
	}
	// NOTE: sslmode=disable is often used for local dev, set it in the url otherwise
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.PW),
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     u.Path,
		RawQuery: q.Encode(),
	}
	return dsn.String(), nil
}
