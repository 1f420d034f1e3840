package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds the HTTP drain; stream teardown is near-instant
// once the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Shutdown stops every component and waits for their goroutines to exit.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	a.engine.Wait()
	a.wg.Wait()
	a.tokenCache.Close()

	a.logger.Info("application-shutdown-complete")

	return nil
}
