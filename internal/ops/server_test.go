package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/generador-datos/internal/model"
	"github.com/MikeMC777/generador-datos/internal/sink"
	"github.com/MikeMC777/generador-datos/internal/stats"
)

func TestHealthz(t *testing.T) {
	r := NewRouter(stats.NewReporter("run"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatsBeforeFirstCycle(t *testing.T) {
	r := NewRouter(stats.NewReporter("run"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatsReturnsLatestCycle(t *testing.T) {
	rep := stats.NewReporter("run-9")
	rep.RecordCycle(4, []sink.Report{{Table: model.TableCustomers, Rows: 12, Chunks: 1}}, time.Second)

	r := NewRouter(rep)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ev stats.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, "run-9", ev.RunID)
	assert.Equal(t, 4, ev.Cycle)
	assert.Equal(t, 12, ev.Counts[model.TableCustomers])
}

func TestMetricsEndpoint(t *testing.T) {
	rep := stats.NewReporter("run")
	rep.RecordCycle(1, []sink.Report{{Table: model.TableOrders, Rows: 3, Chunks: 1}}, time.Second)

	r := NewRouter(rep)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datagen_rows_inserted_total")
}
