package sqldb

import (
	"errors"
	"strings"
)

type ErrorKind int

const (
	KindConf    ErrorKind = iota + 1 // config file missing, unreadable or malformed
	KindDriver                       // no dialect / driver for the db type
	KindConnect                      // session could not be established
	KindClose                        // a resource failed to close
)

func (k ErrorKind) String() string {
	switch k {
	case KindConf:
		return "conf"
	case KindDriver:
		return "driver"
	case KindConnect:
		return "connect"
	case KindClose:
		return "close"
	default:
		return "unknown"
	}
}

var (
	ErrNoRows            = errors.New("sqldb: no rows in result set")
	ErrConf              = errors.New("sqldb: configuration load failed")
	ErrDriverUnavailable = errors.New("sqldb: driver unavailable")
	ErrConnect           = errors.New("sqldb: connection failed")
	ErrClose             = errors.New("sqldb: close failed")
)

// Error carries the failure kind. Match with errors.Is(err, ErrConf) etc.
type Error struct {
	Kind   ErrorKind
	Path   string // config path, if known
	DBType string // db type, if known
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("sqldb: ")
	b.WriteString(e.Kind.String())
	if e.DBType != "" {
		b.WriteString(" [")
		b.WriteString(e.DBType)
		b.WriteString("]")
	}
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrConf:
		return e.Kind == KindConf
	case ErrDriverUnavailable:
		return e.Kind == KindDriver
	case ErrConnect:
		return e.Kind == KindConnect
	case ErrClose:
		return e.Kind == KindClose
	}
	return false
}

// KindOf returns the ErrorKind of err, 0 if err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
