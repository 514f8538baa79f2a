package orders

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/terminal/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "terminal.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestOrderRepositoryCreateAndHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db.Conn(), zerolog.Nop())

	first := SubmittedOrder{
		ClientRef:      "ref-1",
		OrderType:      TypeStopLoss,
		Symbol:         "AAPL",
		Side:           SideSell,
		Quantity:       10,
		Payload:        `{"stop_price":95}`,
		BackendOrderID: "ORD-1",
		SubmittedAt:    time.Now().Add(-time.Minute),
	}
	second := SubmittedOrder{
		ClientRef:   "ref-2",
		OrderType:   TypeBracket,
		Symbol:      "MSFT",
		Side:        SideBuy,
		Quantity:    5,
		Payload:     `{}`,
		SubmittedAt: time.Now(),
	}

	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	orders, err := repo.History(50)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Newest first.
	assert.Equal(t, "ref-2", orders[0].ClientRef)
	assert.Equal(t, "ref-1", orders[1].ClientRef)
	assert.Equal(t, SideSell, orders[1].Side)
	assert.Equal(t, "ORD-1", orders[1].BackendOrderID)
	assert.Empty(t, orders[0].BackendOrderID)
}

func TestOrderRepositoryHistoryLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db.Conn(), zerolog.Nop())

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(SubmittedOrder{
			ClientRef:   "ref-" + string(rune('a'+i)),
			OrderType:   TypeStopLoss,
			Symbol:      "AAPL",
			Side:        SideBuy,
			Quantity:    1,
			Payload:     "{}",
			SubmittedAt: time.Now(),
		}))
	}

	orders, err := repo.History(3)
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestOrderRepositoryRejectsDuplicateClientRef(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db.Conn(), zerolog.Nop())

	order := SubmittedOrder{
		ClientRef:   "ref-dup",
		OrderType:   TypeStopLoss,
		Symbol:      "AAPL",
		Side:        SideBuy,
		Quantity:    1,
		Payload:     "{}",
		SubmittedAt: time.Now(),
	}

	require.NoError(t, repo.Create(order))
	assert.Error(t, repo.Create(order))
}

func TestOrderRepositoryRequiresClientRef(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db.Conn(), zerolog.Nop())

	err := repo.Create(SubmittedOrder{OrderType: TypeStopLoss, Symbol: "AAPL"})
	assert.Error(t, err)
}

func TestSQLDescriptorCacheRoundTrip(t *testing.T) {
	db := newTestDB(t)
	cache := NewSQLDescriptorCache(db.Conn(), zerolog.Nop())

	descriptors := []Descriptor{
		{Type: TypeStopLoss, Name: "Stop Loss", Description: "sell below market", Parameters: []string{"stop_price"}, UseCase: "protect a long"},
		{Type: TypeIceberg, Name: "Iceberg", Parameters: []string{"total_quantity", "visible_quantity"}},
	}

	require.NoError(t, cache.Save(descriptors))

	loaded, err := cache.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, descriptors[0], loaded[0])
	assert.Equal(t, descriptors[1], loaded[1])

	// A second save replaces, not appends.
	require.NoError(t, cache.Save(descriptors[:1]))
	loaded, err = cache.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
