package synth

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/generador-datos/internal/sequence"
)

func contains(vocab []string, v string) bool {
	for _, x := range vocab {
		if x == v {
			return true
		}
	}
	return false
}

func TestCustomersOnePerID(t *testing.T) {
	s := New(1)
	ids := sequence.Range{First: 10, Last: 14}
	rows := s.Customers(ids)
	require.Len(t, rows, 5)
	for i, c := range rows {
		assert.Equal(t, ids.First+int64(i), c.ID)
		assert.NotEmpty(t, c.FirstName)
		assert.NotEmpty(t, c.LastName)
	}
}

func TestOrdersReferenceIssuedCustomers(t *testing.T) {
	s := New(2)
	customers := sequence.Range{First: 1, Last: 100}
	rows, err := s.Orders(sequence.Range{First: 1, Last: 500}, customers)
	require.NoError(t, err)
	require.Len(t, rows, 500)

	now := time.Now()
	for _, o := range rows {
		assert.GreaterOrEqual(t, o.UserID, customers.First)
		assert.LessOrEqual(t, o.UserID, customers.Last)
		assert.False(t, o.OrderDate.After(now), "order_date must not be in the future")
		assert.True(t, contains(orderStatuses, o.Status))
	}
}

func TestOrdersRequireCustomers(t *testing.T) {
	s := New(3)
	_, err := s.Orders(sequence.Range{First: 1, Last: 10}, sequence.Range{})
	assert.Error(t, err)
}

func TestPaymentsReferenceIssuedOrders(t *testing.T) {
	s := New(4)
	orderIDs := sequence.Range{First: 1, Last: 200}
	orders, err := s.Orders(orderIDs, sequence.Range{First: 1, Last: 50})
	require.NoError(t, err)

	dates := make(map[int64]time.Time, len(orders))
	for _, o := range orders {
		dates[o.ID] = o.OrderDate
	}

	rows, err := s.Payments(sequence.Range{First: 1, Last: 400}, orderIDs)
	require.NoError(t, err)
	require.Len(t, rows, 400)

	for _, p := range rows {
		assert.GreaterOrEqual(t, p.OrderID, orderIDs.First)
		assert.LessOrEqual(t, p.OrderID, orderIDs.Last)
		assert.False(t, p.Created.Before(dates[p.OrderID]),
			"payment %d created before its order's date", p.ID)
		assert.True(t, contains(paymentMethods, p.Method))
		assert.True(t, contains(payStatuses, p.Status))
	}
}

func TestPaymentsRequireOrders(t *testing.T) {
	s := New(5)
	_, err := s.Payments(sequence.Range{First: 1, Last: 10}, sequence.Range{})
	assert.Error(t, err)
}

func TestPaymentAmountsExactScale(t *testing.T) {
	s := New(6)
	orderIDs := sequence.Range{First: 1, Last: 10}
	_, err := s.Orders(orderIDs, sequence.Range{First: 1, Last: 10})
	require.NoError(t, err)

	rows, err := s.Payments(sequence.Range{First: 1, Last: 1000}, orderIDs)
	require.NoError(t, err)

	lo := decimal.New(minAmountCents, -2)
	hi := decimal.New(maxAmountCents, -2)
	for _, p := range rows {
		assert.True(t, p.Amount.GreaterThanOrEqual(lo), "amount %s below range", p.Amount)
		assert.True(t, p.Amount.LessThanOrEqual(hi), "amount %s above range", p.Amount)
		// scaled at exactly 2 fractional digits, no float drift
		assert.Equal(t, int32(-2), p.Amount.Exponent())
	}
}

func TestPaymentsAcrossCycles(t *testing.T) {
	// orders accumulate over cycles; payments may reference any earlier order
	s := New(7)
	_, err := s.Orders(sequence.Range{First: 1, Last: 10}, sequence.Range{First: 1, Last: 5})
	require.NoError(t, err)
	_, err = s.Orders(sequence.Range{First: 11, Last: 20}, sequence.Range{First: 1, Last: 5})
	require.NoError(t, err)

	rows, err := s.Payments(sequence.Range{First: 1, Last: 100}, sequence.Range{First: 1, Last: 20})
	require.NoError(t, err)

	seen := make(map[int64]bool)
	for _, p := range rows {
		seen[p.OrderID] = true
	}
	assert.Greater(t, len(seen), 1, "payments should fan out over the order pool")
}
