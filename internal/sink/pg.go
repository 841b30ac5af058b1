// Package sink drives bulk inserts into the warehouse tables. Each chunk is one
// parameterized multi-row INSERT; transient failures are retried with
// exponential backoff, fatal ones surface immediately. Delivery is
// at-least-once: a retry after a partially committed statement may write
// duplicate rows.
package sink

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"

	"github.com/MikeMC777/generador-datos/internal/batch"
	"github.com/MikeMC777/generador-datos/internal/model"
)

const (
	maxAttempts = 5
	baseDelay   = time.Second
	maxDelay    = 30 * time.Second
)

// Report summarizes one table's insertion for throughput accounting. Retried
// chunks count once.
type Report struct {
	Table   model.Table
	Rows    int
	Chunks  int
	Retries int
	Elapsed time.Duration
}

// Writer is what the cycle orchestrator needs from the sink.
type Writer interface {
	InsertCustomers(ctx context.Context, rows []model.Customer) (Report, error)
	InsertOrders(ctx context.Context, rows []model.Order) (Report, error)
	InsertPayments(ctx context.Context, rows []model.Payment) (Report, error)
}

// DB is the slice of pgxpool.Pool the sink uses. The connection is assumed to
// be already authenticated and open; credentials and pooling are managed by
// the caller.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGSink struct {
	db        DB
	chunkSize int
	// retryDelay is the base backoff between attempts; tests shrink it.
	retryDelay time.Duration
}

func New(db DB, chunkSize int) *PGSink {
	return &PGSink{db: db, chunkSize: chunkSize, retryDelay: baseDelay}
}

func (s *PGSink) InsertCustomers(ctx context.Context, rows []model.Customer) (Report, error) {
	return insertChunked(ctx, s, model.TableCustomers, rows,
		[]string{"id", "first_name", "last_name"},
		func(c model.Customer) []any { return []any{c.ID, c.FirstName, c.LastName} })
}

func (s *PGSink) InsertOrders(ctx context.Context, rows []model.Order) (Report, error) {
	return insertChunked(ctx, s, model.TableOrders, rows,
		[]string{"id", "user_id", "order_date", "status"},
		func(o model.Order) []any { return []any{o.ID, o.UserID, o.OrderDate, o.Status} })
}

func (s *PGSink) InsertPayments(ctx context.Context, rows []model.Payment) (Report, error) {
	return insertChunked(ctx, s, model.TablePayments, rows,
		[]string{"id", "order_id", "payment_method", "status", "amount", "created"},
		func(p model.Payment) []any {
			return []any{p.ID, p.OrderID, p.Method, p.Status, p.Amount, p.Created}
		})
}

func insertChunked[T any](ctx context.Context, s *PGSink, table model.Table, rows []T, cols []string, fields func(T) []any) (Report, error) {
	rep := Report{Table: table}
	start := time.Now()
	for _, chunk := range batch.Chunk(rows, s.chunkSize) {
		sql := valuesSQL(table, cols, len(chunk))
		args := make([]any, 0, len(chunk)*len(cols))
		for _, row := range chunk {
			args = append(args, fields(row)...)
		}

		chunkStart := time.Now()
		retries := 0
		err := retry.Do(
			func() error {
				_, err := s.db.Exec(ctx, sql, args...)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(maxAttempts),
			retry.Delay(s.retryDelay),
			retry.MaxDelay(maxDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(IsTransient),
			retry.OnRetry(func(n uint, err error) {
				retries++
				log.WithError(err).Warnf("transient error inserting into %s, retrying (attempt %d/%d)", table, n+1, maxAttempts)
			}),
		)
		rep.Retries += retries
		if err != nil {
			rep.Elapsed = time.Since(start)
			return rep, &InsertError{Table: table, Transient: IsTransient(err), Err: err}
		}
		rep.Rows += len(chunk)
		rep.Chunks++
		log.WithFields(log.Fields{
			"table":   table,
			"rows":    len(chunk),
			"elapsed": time.Since(chunkStart),
		}).Debug("chunk inserted")
	}
	rep.Elapsed = time.Since(start)
	return rep, nil
}

// valuesSQL builds "INSERT INTO t (a, b) VALUES ($1,$2),($3,$4),..." for nrows.
func valuesSQL(table model.Table, cols []string, nrows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(string(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES ")
	p := 1
	for i := 0; i < nrows; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for j := range cols {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(p))
			p++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// HighWaterMarks returns the next free ID per table, read once at startup so
// IDs from earlier runs are never reissued. Empty tables resume at 1.
func HighWaterMarks(ctx context.Context, db DB) (map[model.Table]int64, error) {
	out := make(map[model.Table]int64, len(model.Tables))
	for _, t := range model.Tables {
		var next int64
		if err := db.QueryRow(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM "+string(t)).Scan(&next); err != nil {
			return nil, &InsertError{Table: t, Transient: IsTransient(err), Err: err}
		}
		out[t] = next
	}
	return out, nil
}
