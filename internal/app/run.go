package app

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run starts every component and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("http-addr", a.cfg.HTTPAddr),
		zap.Float64("edge-min-ror-pct", a.cfg.EdgeMinRORPct),
		zap.Bool("kalshi-enabled", a.kalshiClient.Enabled()),
		zap.String("log-level", a.cfg.LogLevel))

	a.wg.Add(1)
	go a.runHTTPServer()

	a.pmClient.Start(a.ctx)
	a.kalshiClient.Start(a.ctx)
	a.engine.Start(a.ctx)

	a.healthChecker.SetReady(true)
	a.logger.Info("application-ready")

	a.waitForShutdown()

	return a.Shutdown()
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()

	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

// waitForShutdown blocks until a termination signal arrives or the root
// context is cancelled.
func (a *App) waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}
}
