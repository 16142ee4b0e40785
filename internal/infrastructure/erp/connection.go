// Package erp connects to a tenant's external ERP database (a fixed
// MySQL schema) and reads catalog records for reconciliation.
package erp

import (
	"context"
	"database/sql"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/menucloud/backend/internal/domain/erp"
	"github.com/menucloud/backend/internal/domain/tenant"
	"go.uber.org/zap"
)

// Options tunes connection behavior
type Options struct {
	// ConnectTimeout bounds the connection handshake
	ConnectTimeout time.Duration
	// RequestTimeout bounds individual reads and writes so a hung ERP
	// server cannot stall a sync run indefinitely
	RequestTimeout time.Duration
}

// DefaultOptions returns the default connection options
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 30 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// Manager opens short-lived, credential-parameterized ERP sessions
type Manager struct {
	opts Options
	log  *zap.Logger
}

// NewManager creates a connection manager
func NewManager(opts Options, log *zap.Logger) *Manager {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultOptions().ConnectTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultOptions().RequestTimeout
	}
	return &Manager{opts: opts, log: log.Named("erp")}
}

// Open connects to the tenant's ERP database and verifies the connection
// with a ping. The returned session must be closed on every exit path.
func (m *Manager) Open(ctx context.Context, settings tenant.ERPSettings) (erp.Session, error) {
	dsn := buildDSN(settings, m.opts)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, erp.NewConnectionError("open", err)
	}

	// Sync sessions are short-lived; keep the pool minimal.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, erp.NewConnectionError("ping", err)
	}

	m.log.Debug("erp session opened", zap.String("server", settings.Addr()), zap.String("database", settings.Database))

	return newSession(db, m.opts.RequestTimeout, m.log), nil
}

// Test probes connectivity with the given credentials. The boolean is
// the outcome; the message carries the driver error on failure.
func (m *Manager) Test(ctx context.Context, settings tenant.ERPSettings) (bool, string) {
	if err := settings.Validate(); err != nil {
		return false, err.Error()
	}

	session, err := m.Open(ctx, settings)
	if err != nil {
		return false, err.Error()
	}
	defer session.Close()

	return true, "connection successful"
}

// buildDSN renders a driver DSN from tenant credentials. Transport
// security is chosen by host locality: private and loopback hosts get
// relaxed certificate trust, every other host requires verification.
func buildDSN(settings tenant.ERPSettings, opts Options) string {
	cfg := mysql.NewConfig()
	cfg.User = settings.Username
	cfg.Passwd = settings.Password
	cfg.Net = "tcp"
	cfg.Addr = settings.Addr()
	cfg.DBName = settings.Database
	cfg.Timeout = opts.ConnectTimeout
	cfg.ReadTimeout = opts.RequestTimeout
	cfg.WriteTimeout = opts.RequestTimeout
	cfg.ParseTime = true

	if isPrivateHost(settings.Server) {
		cfg.TLSConfig = "skip-verify"
	} else {
		cfg.TLSConfig = "true"
	}

	return cfg.FormatDSN()
}

// isPrivateHost reports whether the host sits in a loopback, private, or
// link-local range. Non-IP hostnames are treated as public except for
// localhost.
func isPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

var _ erp.Opener = (*Manager)(nil)
