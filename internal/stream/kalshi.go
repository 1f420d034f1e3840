package stream

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	gws "github.com/gorilla/websocket"
	"github.com/predmarkets/arbwatch/internal/pricebook"
	ws "github.com/predmarkets/arbwatch/pkg/websocket"
	"go.uber.org/zap"
)

const venueKalshi = "kalshi"

// kalshiSubscribeMsg subscribes to the venue-wide ticker channel. There is
// no per-market filtering; the client receives every market's updates.
type kalshiSubscribeMsg struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// kalshiMessage is the inbound ticker envelope.
type kalshiMessage struct {
	Channel string  `json:"channel"`
	Ticker  string  `json:"ticker"`
	YesBid  float64 `json:"yes_bid"`
	YesAsk  float64 `json:"yes_ask"`
}

// KalshiClient maintains one authenticated connection to the Kalshi ticker
// channel. When credentials are absent or the key cannot be loaded, the
// client is permanently disabled: Start is a no-op and the book stays empty.
type KalshiClient struct {
	runner      *runner
	book        *pricebook.KalshiBook
	keyID       string
	privateKey  *rsa.PrivateKey
	upgradePath string
	enabled     bool
	logger      *zap.Logger
}

// KalshiConfig holds the Kalshi client configuration.
type KalshiConfig struct {
	Conn        Config
	KeyID       string
	KeyPath     string
	UpgradePath string
	Book        *pricebook.KalshiBook
}

// NewKalshiClient creates the client, loading the signing key. A missing
// credential is not an error; it downgrades the venue to disabled.
func NewKalshiClient(cfg KalshiConfig) *KalshiClient {
	c := &KalshiClient{
		book:        cfg.Book,
		keyID:       cfg.KeyID,
		upgradePath: cfg.UpgradePath,
		logger:      cfg.Conn.Logger,
	}

	c.runner = newRunner(venueKalshi, cfg.Conn, hooks{
		dial:        c.dial,
		subscribe:   c.subscribe,
		handleFrame: c.handleFrame,
	})

	// Publish the status series from construction, so a venue that never
	// connects (disabled included) is visible on /metrics, not just in logs.
	ws.SetConnectionStatus(venueKalshi, false)

	if cfg.KeyID == "" || cfg.KeyPath == "" {
		c.logger.Warn("kalshi-credentials-missing-venue-disabled")
		c.runner.state.Set(ws.StateDisabled)
		return c
	}

	key, err := loadPrivateKey(cfg.KeyPath)
	if err != nil {
		c.logger.Warn("kalshi-key-load-failed-venue-disabled", zap.Error(err))
		c.runner.state.Set(ws.StateDisabled)
		return c
	}

	c.privateKey = key
	c.enabled = true
	c.logger.Info("kalshi-client-initialized", zap.String("key-id", cfg.KeyID))

	return c
}

// Enabled reports whether the venue participates in evaluation.
func (c *KalshiClient) Enabled() bool {
	return c.enabled
}

// Start launches the connection manager. A no-op when disabled.
func (c *KalshiClient) Start(ctx context.Context) {
	if !c.enabled {
		c.logger.Info("kalshi-client-disabled-skipping-start")
		return
	}

	c.logger.Info("kalshi-client-starting")
	go c.runner.run(ctx)
}

// State returns the client's current lifecycle state.
func (c *KalshiClient) State() ws.State {
	return c.runner.State()
}

func (c *KalshiClient) dial(ctx context.Context) (*gws.Conn, error) {
	headers, err := signHandshake(c.privateKey, c.keyID, c.upgradePath, time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("auth headers: %w", err)
	}

	dialer := gws.Dialer{
		HandshakeTimeout: c.runner.cfg.DialTimeout,
	}

	// A rejected handshake (non-upgrade response) comes back as a dial
	// error and retries with a fresh timestamp.
	conn, _, err := dialer.DialContext(ctx, c.runner.cfg.URL, headers)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return conn, nil
}

func (c *KalshiClient) subscribe(conn *gws.Conn) error {
	msg := kalshiSubscribeMsg{
		Type:    "subscribe",
		Channel: "ticker",
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal subscribe: %w", err)
	}

	err = conn.WriteMessage(gws.TextMessage, payload)
	if err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}

	c.logger.Debug("kalshi-subscribed-to-ticker-channel")

	return nil
}

// handleFrame applies a ticker frame to the book. Frames missing either YES
// side are dropped rather than applied: deriving NO from a zero side would
// fabricate a price of 1, so the previous full record stays current.
func (c *KalshiClient) handleFrame(data []byte) {
	var msg kalshiMessage
	err := json.Unmarshal(data, &msg)
	if err != nil {
		ws.FramesDroppedTotal.WithLabelValues(venueKalshi, "decode").Inc()
		c.logger.Debug("kalshi-frame-decode-failed", zap.Error(err))
		return
	}

	if msg.Channel != "ticker" || msg.Ticker == "" {
		return
	}
	if msg.YesBid <= 0 || msg.YesAsk <= 0 {
		ws.FramesDroppedTotal.WithLabelValues(venueKalshi, "partial_frame").Inc()
		return
	}

	c.book.Apply(msg.Ticker, msg.YesBid, msg.YesAsk)
	ws.PriceUpdatesTotal.WithLabelValues(venueKalshi).Inc()
}
