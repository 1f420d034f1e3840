package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/predmarkets/arbwatch/internal/arb"
	"github.com/predmarkets/arbwatch/internal/discovery"
	"github.com/predmarkets/arbwatch/internal/pricebook"
	"github.com/predmarkets/arbwatch/internal/stream"
	"github.com/predmarkets/arbwatch/pkg/cache"
	"github.com/predmarkets/arbwatch/pkg/config"
	"github.com/predmarkets/arbwatch/pkg/healthprobe"
	"github.com/predmarkets/arbwatch/pkg/httpserver"
	ws "github.com/predmarkets/arbwatch/pkg/websocket"
	"go.uber.org/zap"
)

// pmChunkPause spaces subscription chunks to stay under the venue's write
// rate ceiling.
const pmChunkPause = 100 * time.Millisecond

// App owns the component graph: discovery bootstrap, both venue streams,
// the arbitrage engine, and the inspection HTTP server.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	pmClient      *stream.PolymarketClient
	kalshiClient  *stream.KalshiClient
	engine        *arb.Engine
	tokenCache    cache.Cache
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// New creates the application. The discovery bootstrap runs here, so a
// venue REST outage fails startup instead of producing a silent, pairless
// watcher.
func New(parent context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(parent)

	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthprobe.New(),
		ctx:           ctx,
		cancel:        cancel,
	}

	tokenCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 100_000,
		MaxCost:     10_000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}
	a.tokenCache = tokenCache

	pairs, pmTokenIDs, err := a.bootstrap(ctx)
	if err != nil {
		tokenCache.Close()
		cancel()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	pmBook := pricebook.NewPMBook()
	kalshiBook := pricebook.NewKalshiBook()

	backoff := ws.BackoffConfig{
		InitialDelay:      cfg.WSReconnectBaseDelay,
		MaxDelay:          cfg.WSReconnectMaxDelay,
		BackoffMultiplier: cfg.WSReconnectMult,
		JitterPercent:     0.2,
	}

	a.pmClient = stream.NewPolymarketClient(stream.PolymarketConfig{
		Conn: stream.Config{
			URL:          cfg.PolymarketWSURL,
			DialTimeout:  cfg.WSDialTimeout,
			PingInterval: cfg.WSPingInterval,
			ReadDeadline: cfg.WSReadDeadline,
			Backoff:      backoff,
			ChunkPause:   pmChunkPause,
			Logger:       logger,
		},
		TokenIDs:  pmTokenIDs,
		ChunkSize: cfg.PMChunkSize,
		Book:      pmBook,
	})

	a.kalshiClient = stream.NewKalshiClient(stream.KalshiConfig{
		Conn: stream.Config{
			URL:          cfg.KalshiWSURL,
			DialTimeout:  cfg.WSDialTimeout,
			PingInterval: cfg.WSPingInterval,
			ReadDeadline: cfg.WSReadDeadline,
			Backoff:      backoff,
			Logger:       logger,
		},
		KeyID:       cfg.KalshiKeyID,
		KeyPath:     cfg.KalshiKeyPath,
		UpgradePath: cfg.KalshiWSPath,
		Book:        kalshiBook,
	})

	a.engine = arb.New(arb.Config{
		Pairs:       pairs,
		PMBook:      pmBook,
		KalshiBook:  kalshiBook,
		Kalshi:      a.kalshiClient,
		Threshold:   cfg.EdgeMinRORPct,
		Tick:        cfg.EngineTick,
		MaxSnapshot: cfg.MaxOpportunities,
		Logger:      logger,
	})

	a.httpServer = httpserver.New(&httpserver.Config{
		Addr:          cfg.HTTPAddr,
		Logger:        logger,
		HealthChecker: a.healthChecker,
		Opportunities: a.engine,
	})

	return a, nil
}

// bootstrap fetches the market universe from both venues and pairs it.
func (a *App) bootstrap(ctx context.Context) ([]arb.MarketPair, []string, error) {
	a.logger.Info("bootstrap-starting",
		zap.Float64("title-sim-threshold", a.cfg.TitleSimThreshold),
		zap.Duration("time-window", a.cfg.TimeWindow))

	client := discovery.NewClient(a.cfg.PolymarketRESTURL, a.cfg.KalshiRESTURL, a.logger)

	pmMarkets, err := client.FetchPolymarketMarkets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch polymarket markets: %w", err)
	}

	kalshiMarkets, err := client.FetchKalshiMarkets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch kalshi markets: %w", err)
	}

	pairer := discovery.NewPairer(discovery.PairerConfig{
		SimThreshold: a.cfg.TitleSimThreshold,
		TimeWindow:   a.cfg.TimeWindow,
		TokenCache:   a.tokenCache,
		Logger:       a.logger,
	})

	pairs := pairer.BuildPairs(pmMarkets, kalshiMarkets)
	pmTokenIDs := discovery.ExtractPMTokenIDs(pairs)

	a.logger.Info("bootstrap-complete",
		zap.Int("pm-markets", len(pmMarkets)),
		zap.Int("kalshi-markets", len(kalshiMarkets)),
		zap.Int("pairs", len(pairs)),
		zap.Int("pm-tokens", len(pmTokenIDs)))

	return pairs, pmTokenIDs, nil
}
