package sqldb

// Rows is satisfied by *sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
	NextResultSet() bool
}

type Row interface {
	Scan(dest ...any) error
}

// Result is satisfied by sql.Result
type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}
