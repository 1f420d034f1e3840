package stream

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	gws "github.com/gorilla/websocket"
	"github.com/predmarkets/arbwatch/internal/pricebook"
	ws "github.com/predmarkets/arbwatch/pkg/websocket"
	"go.uber.org/zap"
)

const venuePolymarket = "polymarket"

// pmSubscribeMsg is the per-chunk subscription payload.
type pmSubscribeMsg struct {
	Type      string   `json:"type"`
	AssetsIDs []string `json:"assets_ids"`
}

// pmMessage is the single inbound envelope. Only event types "book" and
// "price_change" carry top-of-book updates; everything else is ignored.
type pmMessage struct {
	EventType string  `json:"event_type"`
	Asset     string  `json:"asset"`
	Price     float64 `json:"price,string"`
	Side      string  `json:"side"`
}

// PolymarketClient maintains a best-effort live connection to the public
// Polymarket market channel and routes top-of-book changes into the book.
type PolymarketClient struct {
	runner    *runner
	book      *pricebook.PMBook
	tokenIDs  []string
	chunkSize int
	logger    *zap.Logger
}

// PolymarketConfig holds the Polymarket client configuration.
type PolymarketConfig struct {
	Conn      Config
	TokenIDs  []string
	ChunkSize int
	Book      *pricebook.PMBook
}

// NewPolymarketClient creates a client for the given outcome tokens.
func NewPolymarketClient(cfg PolymarketConfig) *PolymarketClient {
	c := &PolymarketClient{
		book:      cfg.Book,
		tokenIDs:  cfg.TokenIDs,
		chunkSize: cfg.ChunkSize,
		logger:    cfg.Conn.Logger,
	}

	c.runner = newRunner(venuePolymarket, cfg.Conn, hooks{
		dial:        c.dial,
		subscribe:   c.subscribe,
		handleFrame: c.handleFrame,
	})

	ws.SetConnectionStatus(venuePolymarket, false)

	return c
}

// Start launches the connection manager. It returns immediately; all
// failures are handled by reconnection and surfaced via counters only.
func (c *PolymarketClient) Start(ctx context.Context) {
	c.logger.Info("polymarket-client-starting",
		zap.Int("tokens", len(c.tokenIDs)),
		zap.Int("chunk-size", c.chunkSize))

	go c.runner.run(ctx)
}

// State returns the client's current lifecycle state.
func (c *PolymarketClient) State() ws.State {
	return c.runner.State()
}

func (c *PolymarketClient) dial(ctx context.Context) (*gws.Conn, error) {
	dialer := gws.Dialer{
		HandshakeTimeout: c.runner.cfg.DialTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.runner.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return conn, nil
}

// subscribe sends the token list in chunks, pausing between chunks to stay
// under server-side rate ceilings.
func (c *PolymarketClient) subscribe(conn *gws.Conn) error {
	for i := 0; i < len(c.tokenIDs); i += c.chunkSize {
		end := i + c.chunkSize
		if end > len(c.tokenIDs) {
			end = len(c.tokenIDs)
		}

		msg := pmSubscribeMsg{
			Type:      "MARKET",
			AssetsIDs: c.tokenIDs[i:end],
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal subscribe chunk: %w", err)
		}

		err = conn.WriteMessage(gws.TextMessage, payload)
		if err != nil {
			return fmt.Errorf("write subscribe chunk: %w", err)
		}

		c.logger.Debug("polymarket-subscribed-chunk",
			zap.Int("from", i),
			zap.Int("to", end))

		if end < len(c.tokenIDs) {
			time.Sleep(c.runner.cfg.ChunkPause)
		}
	}

	return nil
}

// handleFrame applies a single inbound frame to the book. Sides normalize
// as sell -> ask, buy -> bid.
func (c *PolymarketClient) handleFrame(data []byte) {
	var msg pmMessage
	err := json.Unmarshal(data, &msg)
	if err != nil {
		ws.FramesDroppedTotal.WithLabelValues(venuePolymarket, "decode").Inc()
		c.logger.Debug("polymarket-frame-decode-failed", zap.Error(err))
		return
	}

	if msg.EventType != "book" && msg.EventType != "price_change" {
		return
	}
	if msg.Asset == "" {
		ws.FramesDroppedTotal.WithLabelValues(venuePolymarket, "missing_asset").Inc()
		return
	}
	if msg.Price <= 0 {
		ws.FramesDroppedTotal.WithLabelValues(venuePolymarket, "non_positive_price").Inc()
		return
	}

	switch msg.Side {
	case "sell":
		c.book.ApplyAsk(msg.Asset, msg.Price)
	case "buy":
		c.book.ApplyBid(msg.Asset, msg.Price)
	default:
		ws.FramesDroppedTotal.WithLabelValues(venuePolymarket, "unknown_side").Inc()
		return
	}

	ws.PriceUpdatesTotal.WithLabelValues(venuePolymarket).Inc()
}
