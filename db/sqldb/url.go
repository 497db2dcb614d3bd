package sqldb

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var jdbcSubprotocols = map[string]string{
	"oracle":     "oracle",
	"mysql":      "mysql",
	"mariadb":    "mysql",
	"postgresql": "pgsql",
	"postgres":   "pgsql",
	"sqlite":     "sqlite",
}

var nativeSchemes = map[string]string{
	"oracle":     "oracle",
	"mysql":      "mysql",
	"postgres":   "pgsql",
	"postgresql": "pgsql",
	"sqlite":     "sqlite",
	"file":       "sqlite",
}

// NormalizeType maps aliases accepted in urls (postgres, postgresql, mariadb)
// to the registered db type. Unknown names are only lowercased.
func NormalizeType(dbType string) string {
	dbType = strings.ToLower(strings.TrimSpace(dbType))
	if t, ok := jdbcSubprotocols[dbType]; ok {
		return t
	}
	return dbType
}

// SplitURL returns the db type and the driver-specific remainder of a connection URL.
//
//	jdbc:oracle:thin:@db:1521:XE  -> "oracle", "thin:@db:1521:XE"
//	postgres://db:5432/app        -> "pgsql",  "postgres://db:5432/app"
//
// Unknown subprotocols/schemes are returned as-is, so the registry lookup reports them.
func SplitURL(raw string) (dbType string, rest string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", errors.New("empty connection url")
	}
	if after, ok := strings.CutPrefix(raw, "jdbc:"); ok {
		sub, remainder, found := strings.Cut(after, ":")
		if !found || sub == "" {
			return "", "", fmt.Errorf("malformed jdbc url %q", raw)
		}
		sub = strings.ToLower(sub)
		if t, ok := jdbcSubprotocols[sub]; ok {
			return t, remainder, nil
		}
		return sub, remainder, nil
	}
	scheme, _, found := strings.Cut(raw, ":")
	if !found || scheme == "" {
		return "", "", fmt.Errorf("connection url %q has no scheme", raw)
	}
	scheme = strings.ToLower(scheme)
	if t, ok := nativeSchemes[scheme]; ok {
		return t, raw, nil
	}
	return scheme, raw, nil
}

// SplitHostPort splits "host[:port]" using defaultPort if the port is missing.
// IPv6 hosts are bracketed: "[::1]:5432" or "[::1]". The returned host has no brackets.
func SplitHostPort(hostport string, defaultPort int) (string, int, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		// no port
		host, portStr = hostport, ""
		if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
			host = host[1 : len(host)-1]
		} else if strings.ContainsAny(host, ":[]") {
			return "", 0, fmt.Errorf("invalid host in %q", hostport)
		}
	}
	if host == "" {
		return "", 0, fmt.Errorf("missing host in %q", hostport)
	}
	if portStr == "" {
		return host, defaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q", hostport)
	}
	return host, port, nil
}
