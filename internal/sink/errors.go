package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeMC777/generador-datos/internal/model"
)

// InsertError wraps a chunk failure with the table it hit and whether the
// failure was still transient when retries ran out. Anything surfaced to the
// orchestrator is terminal for the run.
type InsertError struct {
	Table     model.Table
	Transient bool
	Err       error
}

func (e *InsertError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient, retries exhausted"
	}
	return fmt.Sprintf("insert into %s failed (%s): %v", e.Table, kind, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying: connectivity loss,
// timeouts, and the Postgres error classes that clear up on their own
// (serialization failures, deadlocks, resource pressure, server restarts).
// Auth failures, schema mismatches and malformed data are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		switch {
		case pgerrcode.IsConnectionException(code):
			return true
		case pgerrcode.IsInsufficientResources(code):
			return true
		case pgerrcode.IsOperatorIntervention(code):
			return true
		case code == pgerrcode.SerializationFailure,
			code == pgerrcode.DeadlockDetected,
			code == pgerrcode.LockNotAvailable:
			return true
		}
		return false
	}
	return false
}
