package stream

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/predmarkets/arbwatch/internal/pricebook"
	"github.com/prometheus/client_golang/prometheus"
	ws "github.com/predmarkets/arbwatch/pkg/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewKalshiClient_DisabledWithoutCredentials(t *testing.T) {
	tests := []struct {
		name    string
		keyID   string
		keyPath string
	}{
		{name: "no-credentials"},
		{name: "key-id-only", keyID: "some-key"},
		{name: "key-path-only", keyPath: "/tmp/key.pem"},
		{name: "unreadable-key", keyID: "some-key", keyPath: filepath.Join(t.TempDir(), "absent.pem")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewKalshiClient(KalshiConfig{
				Conn:    Config{Logger: zap.NewNop()},
				KeyID:   tt.keyID,
				KeyPath: tt.keyPath,
				Book:    pricebook.NewKalshiBook(),
			})

			require.False(t, client.Enabled())
			require.Equal(t, ws.StateDisabled, client.State())

			// Start must be a no-op: no goroutine, state unchanged.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client.Start(ctx)
			time.Sleep(50 * time.Millisecond)
			require.Equal(t, ws.StateDisabled, client.State())
		})
	}
}

func TestNewKalshiClient_DisabledPublishesStatusGauge(t *testing.T) {
	NewKalshiClient(KalshiConfig{
		Conn: Config{Logger: zap.NewNop()},
		Book: pricebook.NewKalshiBook(),
	})

	// The venue must be visible on /metrics even though it never connects:
	// the status series exists with value 0.
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() != "arbwatch_ws_connection_status" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "venue" && l.GetValue() == "kalshi" {
					require.Equal(t, 0.0, m.GetGauge().GetValue())
					return
				}
			}
		}
	}

	t.Fatal("no connection status series published for the disabled venue")
}

func TestKalshiHandleFrame(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		wantSeen bool
	}{
		{
			name:     "ticker-frame-applied",
			frame:    `{"channel":"ticker","ticker":"tk","yes_bid":0.60,"yes_ask":0.62}`,
			wantSeen: true,
		},
		{
			name:  "other-channel-ignored",
			frame: `{"channel":"orderbook_delta","ticker":"tk","yes_bid":0.60,"yes_ask":0.62}`,
		},
		{
			name:  "missing-ticker-ignored",
			frame: `{"channel":"ticker","yes_bid":0.60,"yes_ask":0.62}`,
		},
		{
			name:  "partial-frame-dropped",
			frame: `{"channel":"ticker","ticker":"tk","yes_bid":0,"yes_ask":0.62}`,
		},
		{
			name:  "malformed-json-ignored",
			frame: `{"channel":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := pricebook.NewKalshiBook()
			client := NewKalshiClient(KalshiConfig{
				Conn: Config{Logger: zap.NewNop()},
				Book: book,
			})

			client.handleFrame([]byte(tt.frame))

			q, ok := book.Quote("tk")
			require.Equal(t, tt.wantSeen, ok)
			if tt.wantSeen {
				require.Equal(t, 0.60, q.YesBid)
				require.Equal(t, 0.62, q.YesAsk)
				require.Equal(t, 1.0, q.NoBid+q.YesAsk)
				require.Equal(t, 1.0, q.NoAsk+q.YesBid)
			}
		})
	}
}

func TestKalshiClient_AuthenticatedConnect(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	keyPath := writeKeyFile(t, &pem.Block{Type: "PRIVATE KEY", Bytes: der})

	const upgradePath = "/trade-api/ws/v2"

	authOK := make(chan bool, 1)
	upgrader := gws.Upgrader{}

	httpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != upgradePath {
			http.NotFound(w, r)
			return
		}

		keyID := r.Header.Get(headerKalshiKey)
		tsStr := r.Header.Get(headerKalshiTimestamp)
		sig, decErr := base64.StdEncoding.DecodeString(r.Header.Get(headerKalshiSignature))

		hashed := sha256.Sum256([]byte(tsStr + "GET" + upgradePath))
		verifyErr := rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, hashed[:], sig, nil)

		authOK <- keyID == "test-key-id" && decErr == nil && verifyErr == nil

		conn, upErr := upgrader.Upgrade(w, r, nil)
		if upErr != nil {
			return
		}
		defer conn.Close()

		// Consume the subscribe frame, then publish one ticker update.
		_, _, readErr := conn.ReadMessage()
		if readErr != nil {
			return
		}

		frame := `{"channel":"ticker","ticker":"KXPRES-26","yes_bid":0.55,"yes_ask":0.58}`
		if conn.WriteMessage(gws.TextMessage, []byte(frame)) != nil {
			return
		}

		time.Sleep(3 * time.Second)
	}))
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + upgradePath

	book := pricebook.NewKalshiBook()
	client := NewKalshiClient(KalshiConfig{
		Conn: Config{
			URL:          wsURL,
			DialTimeout:  2 * time.Second,
			PingInterval: time.Hour,
			ReadDeadline: 5 * time.Second,
			Backoff: ws.BackoffConfig{
				InitialDelay:      50 * time.Millisecond,
				MaxDelay:          200 * time.Millisecond,
				BackoffMultiplier: 2.0,
			},
			Logger: zaptest.NewLogger(t),
		},
		KeyID:       "test-key-id",
		KeyPath:     keyPath,
		UpgradePath: upgradePath,
		Book:        book,
	})

	require.True(t, client.Enabled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.Start(ctx)

	select {
	case ok := <-authOK:
		require.True(t, ok, "handshake headers failed server-side verification")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handshake")
	}

	waitFor(t, 5*time.Second, "ticker frame applied", func() bool {
		q, ok := book.Quote("KXPRES-26")
		return ok && q.YesBid == 0.55 && q.YesAsk == 0.58
	})
}
