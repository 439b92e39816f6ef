package errors

import (
	"context"
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the stores map
var pgStateCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,    // unique_violation
	"23502": ErrorCodeValidation,      // not_null_violation
	"23514": ErrorCodeValidation,      // check_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22003": ErrorCodeInvalidArgument, // numeric_value_out_of_range
	"25006": ErrorCodeUnavailable,     // read_only_sql_transaction
	"57P01": ErrorCodeUnavailable,     // admin_shutdown
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
}

// PgCode maps a postgres error to a code; ok is false when err holds no *pgconn.PgError
func PgCode(err error) (code ErrorCode, ok bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	if c, found := pgStateCodes[pgErr.Code]; found {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a pgx error under its mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := PgCode(err); ok {
		return Wrap(err, code, msg)
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorCodeUnavailable, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// sqlite result codes; extended codes keep the primary code in the low byte
const (
	sqliteBusy                 = 5
	sqliteLocked               = 6
	sqliteConstraint           = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// FromSQLite wraps an embedded sqlite error under its mapped code; nil stays nil
// the modernc driver error is matched by its Code method so this package does not import the driver
func FromSQLite(err error, msg string) error {
	if err == nil {
		return nil
	}
	var c interface{ Code() int }
	code := 0
	if stderrs.As(err, &c) {
		code = c.Code()
	}
	switch {
	case code == sqliteConstraintUnique, code == sqliteConstraintPrimaryKey:
		return Wrap(err, ErrorCodeDuplicateKey, msg)
	case code&0xff == sqliteConstraint:
		return Wrap(err, ErrorCodeValidation, msg)
	case code == sqliteBusy, code == sqliteLocked:
		return Wrap(err, ErrorCodeUnavailable, msg)
	case stderrs.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrorCodeUnavailable, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}
