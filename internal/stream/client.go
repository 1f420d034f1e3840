package stream

import (
	"context"
	"net"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
	ws "github.com/predmarkets/arbwatch/pkg/websocket"
	"go.uber.org/zap"
)

// Config holds the connection discipline shared by both venue clients.
type Config struct {
	URL          string
	DialTimeout  time.Duration
	PingInterval time.Duration
	ReadDeadline time.Duration
	Backoff      ws.BackoffConfig
	ChunkPause   time.Duration // pause between subscription chunks (Polymarket)
	Logger       *zap.Logger
}

// hooks is the venue-specific behavior plugged into the shared state machine.
type hooks struct {
	dial        func(ctx context.Context) (*gws.Conn, error)
	subscribe   func(conn *gws.Conn) error
	handleFrame func(data []byte)
}

// runner drives one connection through the lifecycle state machine:
// Dialing -> Subscribing -> Reading -> Closing -> Backoff -> Dialing, with
// cancellation moving to Terminated from any state. All network and parse
// failures are retried locally; the runner never returns an error.
type runner struct {
	venue  string
	cfg    Config
	hooks  hooks
	logger *zap.Logger

	state   ws.StateTracker
	backoff *ws.Backoff

	mu   sync.Mutex
	conn *gws.Conn
}

func newRunner(venue string, cfg Config, h hooks) *runner {
	return &runner{
		venue:   venue,
		cfg:     cfg,
		hooks:   h,
		logger:  cfg.Logger,
		backoff: ws.NewBackoff(cfg.Backoff),
	}
}

// State returns the runner's current lifecycle state.
func (r *runner) State() ws.State {
	return r.state.Get()
}

// run blocks until ctx is cancelled.
func (r *runner) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			r.terminate()
			return
		}

		r.state.Set(ws.StateDialing)
		conn, err := r.hooks.dial(ctx)
		if err != nil {
			r.logger.Warn("dial-failed",
				zap.String("venue", r.venue),
				zap.Error(err))
			ws.ReconnectsTotal.WithLabelValues(r.venue).Inc()
			if !r.waitBackoff(ctx) {
				r.terminate()
				return
			}
			continue
		}

		r.setConn(conn)

		r.state.Set(ws.StateSubscribing)
		err = r.hooks.subscribe(conn)
		if err != nil {
			r.logger.Warn("subscribe-failed",
				zap.String("venue", r.venue),
				zap.Error(err))
			r.closeConn()
			ws.ReconnectsTotal.WithLabelValues(r.venue).Inc()
			if !r.waitBackoff(ctx) {
				r.terminate()
				return
			}
			continue
		}

		// The connection is live: delay resets here, not on dial success, so
		// a server that accepts and immediately drops still backs off.
		r.state.Set(ws.StateReading)
		r.backoff.Reset()
		ws.SetConnectionStatus(r.venue, true)
		r.logger.Info("stream-connected", zap.String("venue", r.venue))

		pingStop := make(chan struct{})
		var pingWG sync.WaitGroup
		pingWG.Add(1)
		go func() {
			defer pingWG.Done()
			r.pingLoop(conn, pingStop)
		}()

		r.readLoop(ctx, conn)

		close(pingStop)
		pingWG.Wait()

		r.state.Set(ws.StateClosing)
		r.closeConn()
		ws.SetConnectionStatus(r.venue, false)

		if ctx.Err() != nil {
			r.terminate()
			return
		}

		ws.ReconnectsTotal.WithLabelValues(r.venue).Inc()
		if !r.waitBackoff(ctx) {
			r.terminate()
			return
		}
	}
}

// readLoop reads frames under a rolling deadline until the socket fails,
// stalls, or ctx is cancelled.
func (r *runner) readLoop(ctx context.Context, conn *gws.Conn) {
	// Cancellation closes the socket out from under the blocked read.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.closeConn()
		case <-done:
		}
	}()

	for {
		err := conn.SetReadDeadline(time.Now().Add(r.cfg.ReadDeadline))
		if err != nil {
			r.logger.Warn("set-read-deadline-failed",
				zap.String("venue", r.venue),
				zap.Error(err))
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if isTimeout(err) {
				ws.StallsTotal.WithLabelValues(r.venue).Inc()
				r.logger.Warn("read-stalled",
					zap.String("venue", r.venue),
					zap.Duration("deadline", r.cfg.ReadDeadline))
			} else if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseNormalClosure) && ctx.Err() == nil {
				r.logger.Warn("read-error",
					zap.String("venue", r.venue),
					zap.Error(err))
			}
			return
		}

		r.hooks.handleFrame(message)
	}
}

// pingLoop emits control-frame pings while the connection is in Reading.
// A failed write closes the socket, which surfaces in the read loop.
func (r *runner) pingLoop(conn *gws.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(r.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			err := conn.WriteControl(gws.PingMessage, nil, time.Now().Add(time.Second))
			if err != nil {
				r.logger.Warn("ping-failed",
					zap.String("venue", r.venue),
					zap.Error(err))
				r.closeConn()
				return
			}
		}
	}
}

// waitBackoff sleeps for the next backoff delay. It returns false when ctx
// was cancelled during the wait.
func (r *runner) waitBackoff(ctx context.Context) bool {
	r.state.Set(ws.StateBackoff)
	delay := r.backoff.Next()

	r.logger.Info("reconnect-backoff",
		zap.String("venue", r.venue),
		zap.Duration("delay", delay))

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func (r *runner) terminate() {
	r.closeConn()
	ws.SetConnectionStatus(r.venue, false)
	r.state.Set(ws.StateTerminated)
	r.logger.Info("stream-terminated", zap.String("venue", r.venue))
}

func (r *runner) setConn(conn *gws.Conn) {
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
}

// closeConn closes and nils the socket so concurrent tasks observe the
// teardown. Safe to call repeatedly.
func (r *runner) closeConn() {
	r.mu.Lock()
	if r.conn != nil {
		_ = r.conn.Close()
		r.conn = nil
	}
	r.mu.Unlock()
}

func isTimeout(err error) bool {
	netErr, ok := err.(net.Error)
	return ok && netErr.Timeout()
}
