// Package marketdata maintains the shared websocket price feed. One
// connection serves every consumer: components subscribe and unsubscribe
// symbols instead of opening their own sockets, and read prices from a
// read-only tick cache. Ticks never touch order drafts.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/quantdesk/terminal/internal/events"
	"github.com/quantdesk/terminal/pkg/logger"
)

const (
	writeWait   = 10 * time.Second
	dialTimeout = 30 * time.Second

	baseReconnectDelay   = 5 * time.Second
	maxReconnectDelay    = 5 * time.Minute
	maxReconnectAttempts = 10

	// TickStaleThreshold is the age beyond which cached ticks are pruned.
	TickStaleThreshold = 5 * time.Minute
)

// Tick is one price update from the feed.
type Tick struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	ReceivedAt time.Time `json:"received_at"`
}

// wireTick is the feed's wire format.
type wireTick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	TS     string  `json:"ts"`
}

// subscribeMessage is sent to change the symbol set on the wire.
type subscribeMessage struct {
	Action  string   `json:"action"` // "subscribe" or "unsubscribe"
	Symbols []string `json:"symbols"`
}

// Feed handles the market-data websocket connection.
type Feed struct {
	url string

	mu         sync.RWMutex
	conn       *websocket.Conn
	connCtx    context.Context
	cancelFunc context.CancelFunc
	connected  bool
	stopped    bool
	stopChan   chan struct{}

	subMu sync.Mutex
	subs  map[string]int // reference count per symbol

	cacheMu sync.RWMutex
	ticks   map[string]Tick

	bus *events.Bus
	log zerolog.Logger
}

// NewFeed creates a new market-data feed client
func NewFeed(url string, bus *events.Bus, log zerolog.Logger) *Feed {
	return &Feed{
		url:      url,
		subs:     make(map[string]int),
		ticks:    make(map[string]Tick),
		stopChan: make(chan struct{}),
		bus:      bus,
		log:      logger.ForComponent(log, "marketdata_feed"),
	}
}

// Start opens the connection and begins the read loop. A failed initial
// dial is not fatal: the reconnect loop keeps retrying in the background.
func (f *Feed) Start() error {
	f.log.Info().Str("url", f.url).Msg("Starting market data feed")

	if err := f.connect(); err != nil {
		if errors.Is(err, errFeedStopped) {
			return err
		}
		f.log.Warn().Err(err).Msg("Initial feed connection failed, will retry in background")
		go f.reconnectLoop()
		return err
	}

	f.mu.RLock()
	ctx, conn := f.connCtx, f.conn
	f.mu.RUnlock()
	go f.readLoop(ctx, conn)

	return nil
}

// Stop closes the connection and stops all background loops. Safe to call
// more than once; no state is updated after Stop returns.
func (f *Feed) Stop() error {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return nil
	}
	f.stopped = true
	close(f.stopChan)

	conn := f.conn
	cancel := f.cancelFunc
	f.conn = nil
	f.connected = false
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "shutting down")
	}

	f.log.Info().Msg("Market data feed stopped")
	return nil
}

// Connected reports whether the feed currently has a live connection.
func (f *Feed) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

// Subscribe adds symbols to the feed, reference-counted so several
// consumers can share one symbol.
func (f *Feed) Subscribe(symbols ...string) {
	newSymbols := make([]string, 0, len(symbols))

	f.subMu.Lock()
	for _, symbol := range symbols {
		if f.subs[symbol] == 0 {
			newSymbols = append(newSymbols, symbol)
		}
		f.subs[symbol]++
	}
	f.subMu.Unlock()

	if len(newSymbols) > 0 {
		f.send(subscribeMessage{Action: "subscribe", Symbols: newSymbols})
	}
}

// Unsubscribe drops a consumer's interest; the symbol leaves the wire only
// when the last consumer is gone.
func (f *Feed) Unsubscribe(symbols ...string) {
	dropped := make([]string, 0, len(symbols))

	f.subMu.Lock()
	for _, symbol := range symbols {
		if f.subs[symbol] == 0 {
			continue
		}
		f.subs[symbol]--
		if f.subs[symbol] == 0 {
			delete(f.subs, symbol)
			dropped = append(dropped, symbol)
		}
	}
	f.subMu.Unlock()

	if len(dropped) > 0 {
		f.send(subscribeMessage{Action: "unsubscribe", Symbols: dropped})
	}
}

// LastTick returns the most recent cached tick for a symbol.
func (f *Feed) LastTick(symbol string) (Tick, bool) {
	f.cacheMu.RLock()
	defer f.cacheMu.RUnlock()

	tick, ok := f.ticks[symbol]
	return tick, ok
}

// Prune drops cached ticks older than maxAge and returns how many went.
func (f *Feed) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	f.cacheMu.Lock()
	defer f.cacheMu.Unlock()

	pruned := 0
	for symbol, tick := range f.ticks {
		if tick.ReceivedAt.Before(cutoff) {
			delete(f.ticks, symbol)
			pruned++
		}
	}
	return pruned
}

// errFeedStopped reports a dial that completed after Stop; the connection
// is discarded and no state is touched.
var errFeedStopped = errors.New("feed stopped")

// connect dials the feed and replays the current subscriptions.
func (f *Feed) connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, f.url, nil)
	if err != nil {
		return err
	}

	connCtx, connCancel := context.WithCancel(context.Background())

	f.mu.Lock()
	// Stop may have landed while the dial was in flight.
	if f.stopped {
		f.mu.Unlock()
		connCancel()
		_ = conn.Close(websocket.StatusNormalClosure, "shutting down")
		return errFeedStopped
	}
	f.conn = conn
	f.connCtx = connCtx
	f.cancelFunc = connCancel
	f.connected = true
	f.mu.Unlock()

	f.notifyState(true)
	f.resubscribe()

	f.log.Info().Msg("Market data feed connected")
	return nil
}

// resubscribe replays the full symbol set after a (re)connect.
func (f *Feed) resubscribe() {
	f.subMu.Lock()
	symbols := make([]string, 0, len(f.subs))
	for symbol := range f.subs {
		symbols = append(symbols, symbol)
	}
	f.subMu.Unlock()

	if len(symbols) > 0 {
		f.send(subscribeMessage{Action: "subscribe", Symbols: symbols})
	}
}

// send writes a control message when connected; silently skipped when not,
// because resubscribe replays the symbol set on reconnect.
func (f *Feed) send(msg subscribeMessage) {
	f.mu.RLock()
	conn := f.conn
	connected := f.connected
	f.mu.RUnlock()

	if !connected || conn == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		f.log.Warn().Err(err).Str("action", msg.Action).Msg("Failed to send feed message")
	}
}

// readLoop consumes ticks until the connection drops or the feed stops.
func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if f.isStopped() {
				return
			}
			f.log.Warn().Err(err).Msg("Feed read failed, reconnecting")
			f.markDisconnected()
			go f.reconnectLoop()
			return
		}

		f.handleMessage(data)
	}
}

func (f *Feed) handleMessage(data []byte) {
	var tick wireTick
	if err := json.Unmarshal(data, &tick); err != nil {
		f.log.Debug().Err(err).Msg("Ignoring unparsable feed message")
		return
	}
	if tick.Symbol == "" || tick.Price <= 0 {
		return
	}

	cached := Tick{
		Symbol:     tick.Symbol,
		Price:      tick.Price,
		ReceivedAt: time.Now(),
	}

	f.cacheMu.Lock()
	f.ticks[tick.Symbol] = cached
	f.cacheMu.Unlock()

	if f.bus != nil {
		f.bus.EmitTyped(events.PriceUpdated, "marketdata", events.PriceUpdatedData{
			Symbol: tick.Symbol,
			Price:  tick.Price,
		})
	}
}

// reconnectLoop retries the connection with exponential backoff.
func (f *Feed) reconnectLoop() {
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		delay := time.Duration(float64(baseReconnectDelay) * math.Pow(2, float64(attempt-1)))
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}

		select {
		case <-f.stopChan:
			return
		case <-time.After(delay):
		}

		if f.isStopped() {
			return
		}

		f.log.Info().Int("attempt", attempt).Msg("Reconnecting market data feed")
		if err := f.connect(); err != nil {
			if errors.Is(err, errFeedStopped) {
				return
			}
			f.log.Warn().Err(err).Int("attempt", attempt).Msg("Feed reconnect failed")
			continue
		}

		f.mu.RLock()
		ctx, conn := f.connCtx, f.conn
		f.mu.RUnlock()
		go f.readLoop(ctx, conn)
		return
	}

	f.log.Error().Int("attempts", maxReconnectAttempts).Msg("Giving up on feed reconnection")
}

func (f *Feed) markDisconnected() {
	f.mu.Lock()
	f.connected = false
	f.conn = nil
	if f.cancelFunc != nil {
		f.cancelFunc()
		f.cancelFunc = nil
	}
	f.mu.Unlock()

	f.notifyState(false)
}

func (f *Feed) notifyState(connected bool) {
	if f.bus != nil {
		f.bus.EmitTyped(events.FeedStateChanged, "marketdata", events.FeedStateChangedData{
			Connected: connected,
		})
	}
}

func (f *Feed) isStopped() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.stopped
}
