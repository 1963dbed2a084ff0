package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

// StockChangedChannel is the Postgres NOTIFY channel raised by the
// movement table triggers. The payload is the table name.
const StockChangedChannel = "stock_changed"

// Bumper invalidates cached reports.
type Bumper interface {
	Bump(ctx context.Context) error
}

// InvalidationListener is called after every handled notification.
type InvalidationListener func(channel, payload string)

// Invalidator bumps the report cache on every stock_changed notification.
type Invalidator struct {
	pool  *pgxpool.Pool
	cache Bumper
	retry time.Duration

	listeners   []InvalidationListener
	listenersMu sync.RWMutex

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewInvalidator creates an invalidator listening through pool.
func NewInvalidator(pool *pgxpool.Pool, cache Bumper) *Invalidator {
	return &Invalidator{pool: pool, cache: cache, retry: time.Second}
}

// OnInvalidate registers a listener.
func (i *Invalidator) OnInvalidate(l InvalidationListener) {
	i.listenersMu.Lock()
	i.listeners = append(i.listeners, l)
	i.listenersMu.Unlock()
}

// Start begins listening in the background.
func (i *Invalidator) Start(ctx context.Context) {
	i.lifecycleMu.Lock()
	defer i.lifecycleMu.Unlock()
	if i.started {
		return
	}
	i.ctx, i.cancel = context.WithCancel(ctx)
	i.started = true

	i.wg.Add(1)
	go i.listenLoop()
	logger.Info(i.ctx, "stock change invalidator started", "channel", StockChangedChannel)
}

// Stop ends the listener and waits for it to exit.
func (i *Invalidator) Stop() {
	i.lifecycleMu.Lock()
	if !i.started {
		i.lifecycleMu.Unlock()
		return
	}
	cancel := i.cancel
	i.started = false
	i.cancel = nil
	i.lifecycleMu.Unlock()

	cancel()
	i.wg.Wait()
	logger.Info(context.Background(), "stock change invalidator stopped")
}

func (i *Invalidator) listenLoop() {
	defer i.wg.Done()

	for i.ctx.Err() == nil {
		conn, err := i.pool.Acquire(i.ctx)
		if err != nil {
			logger.Error(i.ctx, "failed to acquire connection for LISTEN", "error", err)
			i.sleep()
			continue
		}

		if _, err = conn.Exec(i.ctx, "LISTEN "+StockChangedChannel); err != nil {
			logger.Error(i.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			i.sleep()
			continue
		}

		i.waitForNotifications(conn)
		// The connection may still be subscribed; drop it rather than
		// return it to the pool.
		_ = conn.Conn().Close(context.Background())
		conn.Release()
	}
}

func (i *Invalidator) sleep() {
	select {
	case <-i.ctx.Done():
	case <-time.After(i.retry):
	}
}

func (i *Invalidator) waitForNotifications(conn *pgxpool.Conn) {
	for {
		notification, err := conn.Conn().WaitForNotification(i.ctx)
		if err != nil {
			if i.ctx.Err() == nil {
				logger.Warn(i.ctx, "LISTEN connection lost", "error", err)
			}
			return
		}
		i.handle(i.ctx, notification.Channel, notification.Payload)
	}
}

// handle bumps the cache and fans the event out to listeners.
func (i *Invalidator) handle(ctx context.Context, channel, payload string) {
	logger.Debug(ctx, "received notification", "channel", channel, "payload", payload)

	if err := i.cache.Bump(ctx); err != nil {
		logger.Error(ctx, "report cache bump failed", "table", payload, "error", err)
	}

	i.listenersMu.RLock()
	listeners := append([]InvalidationListener(nil), i.listeners...)
	i.listenersMu.RUnlock()
	for _, l := range listeners {
		l(channel, payload)
	}
}
