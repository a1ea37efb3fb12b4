package repository

import (
	"context"
	"database/sql"
	"time"
)

// Connector checks out connections from the shared pool. It is satisfied by
// *database.Store, which opens the pool lazily on first use and bounds the
// wait for a free connection.
type Connector interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// now returns the timestamp stored on insert, truncated to the precision
// PostgreSQL keeps so values read back compare equal.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
