// Package schema verifies the warehouse tables exist before the first cycle.
package schema

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/MikeMC777/generador-datos/internal/sink"
)

// Warehouse-style tables: no PK or FK constraints, referential integrity is
// guaranteed by the generator itself.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         BIGINT NOT NULL,
		first_name TEXT,
		last_name  TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         BIGINT NOT NULL,
		user_id    BIGINT,
		order_date TIMESTAMPTZ,
		status     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             BIGINT NOT NULL,
		order_id       BIGINT,
		payment_method TEXT,
		status         TEXT,
		amount         NUMERIC(18,2),
		created        TIMESTAMPTZ
	)`,
}

// Ensure creates the three tables if they are absent.
func Ensure(ctx context.Context, db sink.DB) error {
	for _, stmt := range ddl {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "schema bootstrap failed")
		}
	}
	log.Info("tables verified")
	return nil
}
