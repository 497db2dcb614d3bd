package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zeptools/gw-dbconn/db"
	"github.com/zeptools/gw-dbconn/sec"
)

const (
	DefaultPingTimeout = 5 * time.Second
	EncryptedPWPrefix  = sec.EncPrefix
)

// Provider opens database sessions from a configuration file.
// The file is re-read on every Connect.
type Provider struct {
	ConfPath    string
	Cipher      *sec.PWCipher                                 // for `enc:` passwords. Falls back to sec.CipherFromEnv
	OpenDB      func(driverName, dsn string) (*sql.DB, error) // sql.Open if nil
	PingTimeout time.Duration                                 // DefaultPingTimeout if zero
}

func NewProvider(confPath string) *Provider {
	return &Provider{
		ConfPath:    ConfPath(confPath),
		OpenDB:      sql.Open,
		PingTimeout: DefaultPingTimeout,
	}
}

// Connect opens a session using the configuration at confPath
func Connect(ctx context.Context, confPath string) (*Conn, error) {
	return NewProvider(confPath).Connect(ctx)
}

// Connect loads the configuration, opens a session and pings it.
// On failure the returned error is an *Error (KindConf, KindDriver or KindConnect)
// and the Conn is nil.
func (p *Provider) Connect(ctx context.Context) (*Conn, error) {
	conn, err := p.connect(ctx)
	if err != nil {
		log.Printf("[WARN][sqldb] connect failed: %v", err)
		return nil, err
	}
	log.Printf("[INFO][sqldb][%s] connection opened for %q", conn.dbType, conn.conf.User)
	return conn, nil
}

// WithConn opens a session and runs fn with it.
// Resources added to scope are released in reverse order after fn returns,
// the session itself last. This also happens when fn panics.
func (p *Provider) WithConn(ctx context.Context, fn func(conn *Conn, scope *db.Scope) error) error {
	conn, err := p.Connect(ctx)
	if err != nil {
		return err
	}
	scope := db.NewScope(conn.dbType + " session")
	defer scope.Close()
	scope.Add("conn", conn)
	return fn(conn, scope)
}

func (p *Provider) connect(ctx context.Context) (*Conn, error) {
	path := p.ConfPath
	if path == "" {
		path = ConfPath("")
	}
	conf, err := LoadConf(path)
	if err != nil {
		return nil, err
	}
	pw, err := p.password(conf.PW)
	if err != nil {
		return nil, &Error{Kind: KindConf, Path: path, Err: err}
	}
	dbType, rest, err := SplitURL(conf.URL)
	if err != nil {
		return nil, &Error{Kind: KindConf, Path: path, Err: err}
	}
	if conf.Type != "" {
		dbType = NormalizeType(conf.Type)
	}
	dialect, ok := Lookup(dbType)
	if !ok {
		return nil, &Error{Kind: KindDriver, Path: path, DBType: dbType, Err: fmt.Errorf("no dialect registered for %q", dbType)}
	}
	resolved := *conf
	resolved.PW = pw
	dsn, err := dialect.BuildDSN(rest, &resolved)
	if err != nil {
		return nil, &Error{Kind: KindConf, Path: path, DBType: dbType, Err: err}
	}

	open := p.OpenDB
	if open == nil {
		open = sql.Open
	}
	sqlDB, err := open(dialect.DriverName, dsn)
	if err != nil {
		kind := KindConnect
		if strings.Contains(err.Error(), "unknown driver") {
			kind = KindDriver
		}
		return nil, &Error{Kind: kind, Path: path, DBType: dbType, Err: err}
	}

	timeout := p.PingTimeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sqlConn, err := sqlDB.Conn(pingCtx)
	if err != nil {
		db.CloseAll(sqlDB)
		return nil, &Error{Kind: KindConnect, Path: path, DBType: dbType, Err: err}
	}
	if err = sqlConn.PingContext(pingCtx); err != nil {
		db.CloseAll(sqlDB, sqlConn)
		return nil, &Error{Kind: KindConnect, Path: path, DBType: dbType, Err: err}
	}
	return &Conn{
		conf:   conf,
		dbType: dbType,
		db:     sqlDB,
		conn:   sqlConn,
	}, nil
}

func (p *Provider) password(pw string) (string, error) {
	if !sec.IsSealed(pw) {
		return pw, nil
	}
	cipher := p.Cipher
	if cipher == nil {
		var err error
		if cipher, err = sec.CipherFromEnv(); err != nil {
			return "", err
		}
		if cipher == nil {
			return "", fmt.Errorf("encrypted password but $%s is not set", sec.EnvSecretKey)
		}
	}
	plain, err := cipher.Open(pw)
	if err != nil {
		return "", fmt.Errorf("cannot decrypt password: %w", err)
	}
	return plain, nil
}
