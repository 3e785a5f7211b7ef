package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PriceScale converts the exchange's decimal price into integer oracle
// units: 8 decimal places, chainlink-style.
const PriceScale = 100_000_000

// Streamer subscribes to an exchange aggregated-trade WebSocket stream and
// feeds every tick into a History. It owns the connection lifecycle:
// dial, read loop, reconnect with backoff, shutdown on context cancel.
type Streamer struct {
	url     string
	history *History
	log     *zap.SugaredLogger

	// OnTick, if set, is called for every ingested sample (used by the API
	// layer to fan prices out to WebSocket subscribers).
	OnTick func(ts uint32, price uint64)
}

// aggTrade is the subset of the exchange trade event we consume.
type aggTrade struct {
	Price     string `json:"p"` // decimal string, e.g. "64123.50000000"
	TradeTime int64  `json:"T"` // Unix milliseconds
}

// NewStreamer creates a streamer for the given stream URL, e.g.
// "wss://stream.binance.com:9443/ws/solusdt@aggTrade".
func NewStreamer(url string, history *History, log *zap.SugaredLogger) *Streamer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Streamer{url: url, history: history, log: log}
}

// Run connects and ingests ticks until ctx is cancelled. Connection errors
// are logged and retried; Run only returns on cancel.
func (s *Streamer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if err := s.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warnw("stream_disconnected", "url", s.url, "err", err, "retry_in", backoff)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// consume runs one connection until it breaks or ctx is cancelled.
func (s *Streamer) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()
	s.log.Infow("stream_connected", "url", s.url)

	// Unblock ReadMessage when the context is cancelled.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if err := s.ingest(msg); err != nil {
			s.log.Debugw("tick_skipped", "err", err)
		}
	}
}

// ingest parses a trade event and records it.
func (s *Streamer) ingest(msg []byte) error {
	var t aggTrade
	if err := json.Unmarshal(msg, &t); err != nil {
		return fmt.Errorf("parse tick: %w", err)
	}
	if t.Price == "" || t.TradeTime == 0 {
		return fmt.Errorf("not a trade event")
	}
	px, err := strconv.ParseFloat(t.Price, 64)
	if err != nil || px <= 0 {
		return fmt.Errorf("bad price %q", t.Price)
	}

	ts := uint32(t.TradeTime / 1000)
	price := uint64(px * PriceScale)
	s.history.Record(ts, price)
	if s.OnTick != nil {
		s.OnTick(ts, price)
	}
	return nil
}
