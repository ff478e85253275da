package sqlite

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/garnizeh/assessboard/internal/db"
	"github.com/garnizeh/assessboard/internal/repository"
)

// SQLiteRepo implements the Record Store on top of the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
	clock  func() time.Time
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.EmployeeRepo = (*SQLiteRepo)(nil)
var _ repository.UserRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger, clock: time.Now}
}

// WithClock replaces the time source used for audit timestamps.
func (r *SQLiteRepo) WithClock(clock func() time.Time) *SQLiteRepo {
	r.clock = clock
	return r
}

func (r *SQLiteRepo) now() time.Time {
	return r.clock().UTC().Truncate(time.Millisecond)
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *msqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type scanner interface {
	Scan(dest ...any) error
}
