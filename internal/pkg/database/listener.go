package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/opencollective/ledger/internal/pkg/models"
)

// Notification is a payload received on a LISTEN channel
type Notification struct {
	Channel string
	Payload string
}

// NotificationHandler receives notifications in arrival order
type NotificationHandler func(n Notification)

// Listener holds a pgx pool dedicated to LISTEN/NOTIFY
type Listener struct {
	pool *pgxpool.Pool
}

// NewListener connects a small pgx pool for notifications
func NewListener(config models.DatabaseConfig) (*Listener, error) {
	poolConfig, err := pgxpool.ParseConfig(URL(config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Listener{pool: pool}, nil
}

// Listen subscribes to channel and calls handler for every notification.
// It blocks until ctx is done (returning nil) or the connection fails.
func (l *Listener) Listen(ctx context.Context, channel string, handler NotificationHandler) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", channel, err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to wait for notification: %w", err)
		}
		handler(Notification{Channel: n.Channel, Payload: n.Payload})
	}
}

// Ping checks the listener pool
func (l *Listener) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}

// Close closes the pool
func (l *Listener) Close() {
	l.pool.Close()
}
