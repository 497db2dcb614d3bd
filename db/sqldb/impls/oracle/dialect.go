package oracle

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/zeptools/gw-dbconn/db/sqldb"

	go_ora "github.com/sijms/go-ora/v2" // also registers driver "oracle"
)

const (
	DBType      = "oracle"
	DriverName  = "oracle"
	DefaultPort = 1521
)

func Register() {
	sqldb.Register(sqldb.Dialect{
		Type:       DBType,
		DriverName: DriverName,
		BuildDSN:   BuildDSN,
	})
}

// BuildDSN accepts
//
//	thin:@host:port:SID
//	thin:@//host:port/service   (also without the leading //)
//	thin:@(DESCRIPTION=...)
//	oracle://host:port/service
//
// and returns a go-ora url carrying conf's credentials.
func BuildDSN(rest string, conf *sqldb.Conf) (string, error) {
	if strings.HasPrefix(strings.ToLower(rest), "oracle://") {
		return nativeDSN(rest, conf)
	}
	// driver type (thin/oci/kprb) is irrelevant for go-ora
	target := rest
	if i := strings.IndexByte(target, '@'); i >= 0 {
		target = target[i+1:]
	} else {
		return "", fmt.Errorf("oracle url %q: missing '@'", rest)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", errors.New("oracle url: missing host")
	}
	if strings.HasPrefix(target, "(") {
		return go_ora.BuildJDBC(conf.User, conf.PW, target, nil), nil
	}

	target = strings.TrimPrefix(target, "//")
	if hostport, service, ok := strings.Cut(target, "/"); ok {
		host, port, err := sqldb.SplitHostPort(hostport, DefaultPort)
		if err != nil {
			return "", err
		}
		if service == "" {
			return "", fmt.Errorf("oracle url %q: missing service name", rest)
		}
		return buildURL(host, port, service, conf, nil), nil
	}

	// host:port:SID or host:SID, host may be a bracketed IPv6 address
	i := strings.LastIndexByte(target, ':')
	if i < 0 {
		return "", fmt.Errorf("oracle url %q: unrecognized target", rest)
	}
	hostport, sid := target[:i], target[i+1:]
	if sid == "" {
		return "", fmt.Errorf("oracle url %q: missing SID", rest)
	}
	host, port, err := sqldb.SplitHostPort(hostport, DefaultPort)
	if err != nil {
		return "", err
	}
	return buildURL(host, port, "", conf, map[string]string{"SID": sid}), nil
}

// buildURL - go_ora.BuildUrl does not bracket IPv6 hosts
func buildURL(host string, port int, service string, conf *sqldb.Conf, options map[string]string) string {
	if !strings.Contains(host, ":") {
		return go_ora.BuildUrl(host, port, service, conf.User, conf.PW, options)
	}
	q := url.Values{}
	for k, v := range options {
		q.Set(k, v)
	}
	u := url.URL{
		Scheme:   "oracle",
		User:     url.UserPassword(conf.User, conf.PW),
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + service,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func nativeDSN(raw string, conf *sqldb.Conf) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("oracle url: %w", err)
	}
	if u.Host == "" {
		return "", errors.New("oracle url: missing host")
	}
	u.User = url.UserPassword(conf.User, conf.PW)
	return u.String(), nil
}
