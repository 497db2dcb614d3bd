package mysql

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zeptools/gw-dbconn/db/sqldb"

	lowimpl "github.com/go-sql-driver/mysql"
)

const (
	DBType      = "mysql"
	DriverName  = "mysql"
	DefaultPort = 3306
)

func Register() {
	sqldb.Register(sqldb.Dialect{
		Type:       DBType,
		DriverName: DriverName,
		BuildDSN:   BuildDSN,
	})
}

// BuildDSN accepts `//host:port/db?params` (jdbc remainder) or `mysql://host:port/db?params`
// and returns a go-sql-driver DSN carrying conf's credentials.
func BuildDSN(rest string, conf *sqldb.Conf) (string, error) {
	raw := rest
	if !strings.HasPrefix(strings.ToLower(raw), "mysql:") {
		raw = "mysql:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("mysql url: %w", err)
	}
	if u.Host == "" {
		return "", errors.New("mysql url: missing host")
	}
	host, port, err := sqldb.SplitHostPort(u.Host, DefaultPort)
	if err != nil {
		return "", err
	}

	cfg := lowimpl.NewConfig()
	cfg.User = conf.User
	cfg.Passwd = conf.PW
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	if err = applyParams(cfg, u.Query()); err != nil {
		return "", err
	}
	return cfg.FormatDSN(), nil
}

// applyParams maps the common jdbc properties. Others are dropped,
// since the driver would send unknown ones to the server as system variables.
func applyParams(cfg *lowimpl.Config, q url.Values) error {
	for key := range q {
		val := q.Get(key)
		switch key {
		case "serverTimezone":
			loc, err := time.LoadLocation(val)
			if err != nil {
				return fmt.Errorf("mysql url: serverTimezone: %w", err)
			}
			cfg.Loc = loc
		case "connectTimeout", "socketTimeout":
			ms, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("mysql url: %s: %w", key, err)
			}
			if key == "connectTimeout" {
				cfg.Timeout = time.Duration(ms) * time.Millisecond
			} else {
				cfg.ReadTimeout = time.Duration(ms) * time.Millisecond
			}
		case "useSSL":
			if val == "true" {
				cfg.TLSConfig = "true"
			}
		default:
			log.Printf("[INFO][%s] ignoring url parameter %q", DBType, key)
		}
	}
	return nil
}
