// Package base provides the foundational BaseHook that all Lasso hooks embed.
// It resolves the hook's connection record, carries the structured logger and
// metrics collector, and implements the idempotent-close bookkeeping every
// hook needs.
//
// # Usage
//
// Hooks embed BaseHook and call Resolve during construction:
//
//	type MySQLHook struct {
//	    *base.BaseHook
//	    db *sql.DB
//	}
//
//	func NewMySQLHook(connID string) (*MySQLHook, error) {
//	    b, err := base.NewBaseHook("mysql", connID)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &MySQLHook{BaseHook: b}, nil
//	}
//
// The hook's client handle stays the hook's own field; BaseHook only tracks
// whether the hook is still usable and runs the hook-supplied release function
// exactly once.
package base

import (
	"sync"

	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/connection"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/logger"
	"github.com/lassohq/lasso/pkg/metrics"
)

// BaseHook provides common functionality for all hooks: connection record
// resolution, structured logging, metrics, and idempotent close.
type BaseHook struct {
	hookName string
	connID   string
	conn     *connection.Connection
	logger   *zap.Logger
	metrics  *metrics.Collector

	closed     bool
	closeMutex sync.Mutex
}

// NewBaseHook resolves the named connection record and returns a BaseHook
// carrying it. hookName is the connection type the hook serves (for example
// "mysql"); it labels the hook's logs and metrics.
func NewBaseHook(hookName, connID string) (*BaseHook, error) {
	conn, err := connection.Resolve(connID)
	if err != nil {
		return nil, err
	}

	return &BaseHook{
		hookName: hookName,
		connID:   connID,
		conn:     conn,
		logger: logger.Get().With(
			zap.String("hook", hookName),
			zap.String("conn_id", connID),
		),
		metrics: metrics.NewCollector(hookName),
	}, nil
}

// Name returns the hook's connection type.
func (b *BaseHook) Name() string {
	return b.hookName
}

// ConnID returns the id of the connection record the hook resolved.
func (b *BaseHook) ConnID() string {
	return b.connID
}

// Connection returns the resolved connection record.
func (b *BaseHook) Connection() *connection.Connection {
	return b.conn
}

// GetLogger returns the hook's logger.
func (b *BaseHook) GetLogger() *zap.Logger {
	return b.logger
}

// GetMetrics returns the hook's metrics collector.
func (b *BaseHook) GetMetrics() *metrics.Collector {
	return b.metrics
}

// CheckUsable returns an error when the hook has been closed.
func (b *BaseHook) CheckUsable() error {
	b.closeMutex.Lock()
	defer b.closeMutex.Unlock()

	if b.closed {
		return lassoerrors.Newf(lassoerrors.ErrorTypeClosed, "%s hook %s is closed", b.hookName, b.connID)
	}
	return nil
}

// IsClosed reports whether CloseOnce has run.
func (b *BaseHook) IsClosed() bool {
	b.closeMutex.Lock()
	defer b.closeMutex.Unlock()
	return b.closed
}

// CloseOnce runs release the first time it is called and records the handle
// as gone. Subsequent calls return nil without invoking release, making the
// hook's Close idempotent. A nil release is allowed for hooks that had not
// built a handle yet.
func (b *BaseHook) CloseOnce(release func() error) error {
	b.closeMutex.Lock()
	defer b.closeMutex.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if release == nil {
		b.logger.Debug("hook closed, no handle to release")
		return nil
	}

	err := release()
	if err != nil {
		b.logger.Warn("failed to release client handle", zap.Error(err))
		return err
	}

	b.logger.Debug("hook closed")
	return nil
}
