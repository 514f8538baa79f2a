package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/terminal/internal/config"
	"github.com/quantdesk/terminal/internal/events"
)

type stubModule struct{}

func (stubModule) Routes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
}

type stubBackend struct{ up bool }

func (s stubBackend) Health(ctx context.Context) bool { return s.up }

type stubFeed struct{ connected bool }

func (s stubFeed) Connected() bool { return s.connected }

func newTestServer(t *testing.T, backendUp bool) *Server {
	t.Helper()

	cfg := &config.Config{Port: 8080, DevMode: true}
	bus := events.NewBus(zerolog.Nop())
	modules := Modules{
		Orders:    stubModule{},
		Backtests: stubModule{},
		Options:   stubModule{},
		Portfolio: stubModule{},
		Social:    stubModule{},
		Ticker:    stubModule{},
	}

	system := NewSystemHandler(stubBackend{up: backendUp}, stubFeed{connected: true}, zerolog.Nop())
	stream := NewStreamHandler(bus, zerolog.Nop())

	return New(cfg, modules, system, stream, zerolog.Nop())
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestModuleRoutesMounted(t *testing.T) {
	server := newTestServer(t, true)

	for _, path := range []string{
		"/api/orders/ping",
		"/api/backtests/ping",
		"/api/options/ping",
		"/api/portfolio/ping",
		"/api/social/ping",
		"/api/ticker/ping",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestSystemStatus(t *testing.T) {
	server := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, true, status["backend_up"])
	assert.Equal(t, true, status["feed_connected"])
}

func TestSystemStatusDegradedWhenBackendDown(t *testing.T) {
	server := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status["status"])
}

func TestEventStreamDeliversEvents(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	stream := NewStreamHandler(bus, zerolog.Nop())

	ts := httptest.NewServer(http.HandlerFunc(stream.HandleStream))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "?types=PRICE_UPDATED")
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)

	// The handler announces itself before any events flow.
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, ": connected"))

	// Give the subscription a moment, then emit a filtered-out and a
	// matching event.
	time.Sleep(50 * time.Millisecond)
	bus.Emit(events.OrderSubmitted, "orders", map[string]interface{}{"order_id": "ORD-1"})
	bus.Emit(events.PriceUpdated, "marketdata", map[string]interface{}{"symbol": "AAPL", "price": 187.5})

	deadline := time.After(2 * time.Second)
	lines := make(chan string, 1)
	go func() {
		for {
			l, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			if strings.HasPrefix(l, "event: ") {
				lines <- l
				return
			}
		}
	}()

	select {
	case l := <-lines:
		assert.Equal(t, "event: PRICE_UPDATED\n", l)
	case <-deadline:
		t.Fatal("no event received on stream")
	}
}
