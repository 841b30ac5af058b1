// Package model defines the rows written by the generator. The three tables form
// a parent→child→grandchild chain: customers 1—N orders 1—N payments.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table identifies one of the sink tables. Used as the key for ID sequences,
// per-table counters and insert statements.
type Table string

const (
	TableCustomers Table = "customers"
	TableOrders    Table = "orders"
	TablePayments  Table = "payments"
)

// Tables lists the sink tables in dependency order (parents before children).
// Generation and insertion must follow this order within a cycle.
var Tables = []Table{TableCustomers, TableOrders, TablePayments}

type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Order struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OrderDate time.Time `json:"order_date"`
	Status    string    `json:"status"`
}

type Payment struct {
	ID      int64           `json:"id"`
	OrderID int64           `json:"order_id"`
	Method  string          `json:"payment_method"`
	Status  string          `json:"status"`
	Amount  decimal.Decimal `json:"amount"` // NUMERIC(18,2)
	Created time.Time       `json:"created"`
}
