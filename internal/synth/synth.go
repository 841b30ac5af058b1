// Package synth manufactures plausible rows for the three generated tables.
// Foreign keys are sampled uniformly over every parent ID issued so far in the
// run, so one customer accumulates many orders over time instead of a rigid
// one-to-one pairing per cycle. Enumerated fields are drawn uniformly from
// fixed vocabularies.
package synth

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/generador-datos/internal/model"
	"github.com/MikeMC777/generador-datos/internal/sequence"
)

var (
	firstNames = []string{
		"James", "Mary", "Carlos", "Ana", "John", "Lucia", "Miguel", "Sofia",
		"David", "Laura", "Pedro", "Elena", "Robert", "Carmen", "Diego", "Emma",
		"Daniel", "Valeria", "Andres", "Paula",
	}
	lastNames = []string{
		"Smith", "Garcia", "Johnson", "Martinez", "Brown", "Rodriguez", "Silva",
		"Lopez", "Wilson", "Hernandez", "Costa", "Perez", "Taylor", "Torres",
		"Moore", "Ramirez", "Santos", "Flores", "Clark", "Mendoza",
	}

	orderStatuses  = []string{"pending", "processing", "shipped", "delivered", "cancelled"}
	paymentMethods = []string{"credit_card", "debit_card", "paypal", "bank_transfer", "pix"}
	payStatuses    = []string{"pending", "completed", "failed", "refunded"}
)

// Amounts are generated as whole cents so the 2-decimal scale is exact.
const (
	minAmountCents = 500    // 5.00
	maxAmountCents = 500000 // 5000.00
)

// orderDateWindow is how far back an order_date may fall before generation time.
const orderDateWindow = 30 * 24 * time.Hour

// Synthesizer builds rows for ID ranges handed out by the sequence allocator.
// It remembers the order_date of every order generated this run so that payment
// timestamps can be kept at or after their referenced order's date.
// Not safe for concurrent use.
type Synthesizer struct {
	rng *rand.Rand
	now func() time.Time

	orderBase  int64 // ID of the first order recorded this run
	orderDates []time.Time
}

func New(seed int64) *Synthesizer {
	return &Synthesizer{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

func (s *Synthesizer) Customers(ids sequence.Range) []model.Customer {
	out := make([]model.Customer, 0, ids.Len())
	for id := ids.First; id <= ids.Last; id++ {
		out = append(out, model.Customer{
			ID:        id,
			FirstName: firstNames[s.rng.Intn(len(firstNames))],
			LastName:  lastNames[s.rng.Intn(len(lastNames))],
		})
	}
	return out
}

// Orders generates one order per ID in ids. customers must span every customer
// ID issued so far in the run; user_id is sampled uniformly from it.
func (s *Synthesizer) Orders(ids, customers sequence.Range) ([]model.Order, error) {
	if customers.Empty() {
		return nil, errors.New("synth: no customer IDs available for orders")
	}
	if s.orderBase == 0 {
		s.orderBase = ids.First
	}
	now := s.now()
	out := make([]model.Order, 0, ids.Len())
	for id := ids.First; id <= ids.Last; id++ {
		date := now.Add(-time.Duration(s.rng.Int63n(int64(orderDateWindow))))
		out = append(out, model.Order{
			ID:        id,
			UserID:    s.sample(customers),
			OrderDate: date,
			Status:    orderStatuses[s.rng.Intn(len(orderStatuses))],
		})
		s.orderDates = append(s.orderDates, date)
	}
	return out, nil
}

// Payments generates one payment per ID in ids. orders must span every order ID
// issued so far in the run; order_id is sampled uniformly from it and created is
// placed between the referenced order's date and now.
func (s *Synthesizer) Payments(ids, orders sequence.Range) ([]model.Payment, error) {
	if orders.Empty() {
		return nil, errors.New("synth: no order IDs available for payments")
	}
	now := s.now()
	out := make([]model.Payment, 0, ids.Len())
	for id := ids.First; id <= ids.Last; id++ {
		orderID := s.sample(orders)
		orderDate, err := s.orderDate(orderID)
		if err != nil {
			return nil, err
		}
		created := orderDate
		if gap := now.Sub(orderDate); gap > 0 {
			created = orderDate.Add(time.Duration(s.rng.Int63n(int64(gap))))
		}
		cents := minAmountCents + s.rng.Int63n(maxAmountCents-minAmountCents+1)
		out = append(out, model.Payment{
			ID:      id,
			OrderID: orderID,
			Method:  paymentMethods[s.rng.Intn(len(paymentMethods))],
			Status:  payStatuses[s.rng.Intn(len(payStatuses))],
			Amount:  decimal.New(cents, -2),
			Created: created,
		})
	}
	return out, nil
}

func (s *Synthesizer) sample(r sequence.Range) int64 {
	return r.First + s.rng.Int63n(r.Last-r.First+1)
}

func (s *Synthesizer) orderDate(orderID int64) (time.Time, error) {
	idx := orderID - s.orderBase
	if s.orderBase == 0 || idx < 0 || idx >= int64(len(s.orderDates)) {
		return time.Time{}, errors.Errorf("synth: order %d has no recorded date", orderID)
	}
	return s.orderDates[idx], nil
}
