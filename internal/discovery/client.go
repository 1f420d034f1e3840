package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// PMToken is one outcome token of a Polymarket binary market.
type PMToken struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
}

// PMMarket is a Polymarket CLOB market record.
type PMMarket struct {
	ConditionID string    `json:"condition_id"`
	Question    string    `json:"question"`
	Tokens      []PMToken `json:"tokens"`
	Active      bool      `json:"active"`
	Closed      bool      `json:"closed"`
	EndDateISO  string    `json:"end_date_iso"`
}

// KalshiMarket is a Kalshi market record.
type KalshiMarket struct {
	Ticker         string `json:"ticker"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	CloseTime      string `json:"close_time"`
	ExpirationTime string `json:"expiration_time"`
}

// Client fetches open markets from both venues' REST APIs. It is used once
// at startup to build the pairing universe.
type Client struct {
	pmBaseURL     string
	kalshiBaseURL string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient creates a new discovery client.
func NewClient(pmBaseURL, kalshiBaseURL string, logger *zap.Logger) *Client {
	return &Client{
		pmBaseURL:     pmBaseURL,
		kalshiBaseURL: kalshiBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FetchPolymarketMarkets walks the CLOB markets endpoint following
// next_cursor pagination and keeps only active, unclosed markets.
func (c *Client) FetchPolymarketMarkets(ctx context.Context) ([]PMMarket, error) {
	start := time.Now()

	markets := make([]PMMarket, 0)
	nextCursor := ""

	for {
		endpoint := c.pmBaseURL + "/markets"
		if nextCursor != "" {
			endpoint = fmt.Sprintf("%s?next_cursor=%s", endpoint, url.QueryEscape(nextCursor))
		}

		var page struct {
			Data       []PMMarket `json:"data"`
			NextCursor string     `json:"next_cursor"`
		}

		err := c.getJSON(ctx, venuePolymarket, endpoint, &page)
		if err != nil {
			return nil, fmt.Errorf("fetch polymarket markets: %w", err)
		}

		for _, m := range page.Data {
			if m.Active && !m.Closed {
				markets = append(markets, m)
			}
		}

		nextCursor = page.NextCursor
		if nextCursor == "" {
			break
		}

		c.logger.Debug("polymarket-pagination",
			zap.Int("fetched", len(markets)),
			zap.String("next-cursor", nextCursor))
	}

	FetchDurationSeconds.WithLabelValues(venuePolymarket).Observe(time.Since(start).Seconds())
	MarketsDiscoveredTotal.WithLabelValues(venuePolymarket).Add(float64(len(markets)))

	return markets, nil
}

// FetchKalshiMarkets walks the public markets endpoint following cursor
// pagination. Only open markets are requested.
func (c *Client) FetchKalshiMarkets(ctx context.Context) ([]KalshiMarket, error) {
	start := time.Now()

	markets := make([]KalshiMarket, 0)
	cursor := ""

	for {
		endpoint := c.kalshiBaseURL + "/markets?status=open&limit=1000"
		if cursor != "" {
			endpoint = fmt.Sprintf("%s&cursor=%s", endpoint, url.QueryEscape(cursor))
		}

		var page struct {
			Markets []KalshiMarket `json:"markets"`
			Cursor  string         `json:"cursor"`
		}

		err := c.getJSON(ctx, venueKalshi, endpoint, &page)
		if err != nil {
			return nil, fmt.Errorf("fetch kalshi markets: %w", err)
		}

		markets = append(markets, page.Markets...)

		cursor = page.Cursor
		if cursor == "" {
			break
		}

		c.logger.Debug("kalshi-pagination",
			zap.Int("fetched", len(markets)),
			zap.String("cursor", cursor))
	}

	FetchDurationSeconds.WithLabelValues(venueKalshi).Observe(time.Since(start).Seconds())
	MarketsDiscoveredTotal.WithLabelValues(venueKalshi).Add(float64(len(markets)))

	return markets, nil
}

// getJSON performs one GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, venue, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "arbwatch/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		FetchErrorsTotal.WithLabelValues(venue).Inc()
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		FetchErrorsTotal.WithLabelValues(venue).Inc()
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		FetchErrorsTotal.WithLabelValues(venue).Inc()
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
