package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/generador-datos/internal/model"
)

func TestFreshRunStartsAtOne(t *testing.T) {
	a := New(nil)
	r, err := a.Next(model.TableCustomers, 10)
	require.NoError(t, err)
	assert.Equal(t, Range{First: 1, Last: 10}, r)
}

func TestResumedRunContinuesFromHighWaterMark(t *testing.T) {
	a := New(map[model.Table]int64{model.TableCustomers: 1000})

	r1, err := a.Next(model.TableCustomers, 50)
	require.NoError(t, err)
	assert.Equal(t, Range{First: 1000, Last: 1049}, r1)

	r2, err := a.Next(model.TableCustomers, 50)
	require.NoError(t, err)
	assert.Equal(t, Range{First: 1050, Last: 1099}, r2)
}

func TestRangesNeverOverlap(t *testing.T) {
	a := New(nil)
	var prev Range
	for i := 0; i < 100; i++ {
		r, err := a.Next(model.TableOrders, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, r.Len())
		if i > 0 {
			assert.Greater(t, r.First, prev.Last, "range %d overlaps previous", i)
		}
		prev = r
	}
}

func TestTablesAreIndependent(t *testing.T) {
	a := New(nil)
	_, err := a.Next(model.TableCustomers, 100)
	require.NoError(t, err)

	r, err := a.Next(model.TableOrders, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.First)
}

func TestIssuedSpansWholeRun(t *testing.T) {
	a := New(map[model.Table]int64{model.TableOrders: 500})

	_, ok := a.Issued(model.TableOrders)
	assert.False(t, ok, "nothing issued yet")

	_, err := a.Next(model.TableOrders, 10)
	require.NoError(t, err)
	_, err = a.Next(model.TableOrders, 10)
	require.NoError(t, err)

	span, ok := a.Issued(model.TableOrders)
	require.True(t, ok)
	assert.Equal(t, Range{First: 500, Last: 519}, span)
}

func TestNextRejectsNonPositiveCount(t *testing.T) {
	a := New(nil)
	_, err := a.Next(model.TableCustomers, 0)
	assert.Error(t, err)
	_, err = a.Next(model.TableCustomers, -1)
	assert.Error(t, err)
}
