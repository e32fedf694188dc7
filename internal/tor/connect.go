package tor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout is used when Options.StartupTimeout is not positive.
// Bootstrapping a fresh Tor daemon usually takes one to three minutes.
const DefaultStartupTimeout = 3 * time.Minute

// Options selects the transport for Connect.
// UseEmbedded wins over ProxyAddress; neither means direct connections.
type Options struct {
	// ProxyAddress is an external SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UseEmbedded starts a private Tor daemon.
	UseEmbedded bool

	// StartupTimeout bounds the embedded daemon's bootstrap.
	StartupTimeout time.Duration

	// Timeout is the overall timeout of the returned HTTP client.
	Timeout time.Duration

	Logger *slog.Logger
}

// Connection is a ready-to-use HTTP client plus the resources behind it.
type Connection struct {
	// HTTPClient carries every upstream request.
	HTTPClient *http.Client

	// Mode is "direct", "socks5" or "embedded-tor".
	Mode string

	// ProxyAddress is the SOCKS5 address in use, if any.
	ProxyAddress string

	daemon *tornago.TorProcess
}

// Transport modes reported by Connection.Mode.
const (
	ModeDirect   = "direct"
	ModeSOCKS5   = "socks5"
	ModeEmbedded = "embedded-tor"
)

// Connect builds the HTTP client described by opts. Proxies are verified
// before Connect returns. Callers must Close the connection.
func Connect(ctx context.Context, opts Options) (*Connection, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch {
	case opts.UseEmbedded:
		return connectEmbedded(ctx, opts, logger)

	case opts.ProxyAddress != "":
		client, err := NewClient(opts.ProxyAddress, opts.Timeout)
		if err != nil {
			return nil, err
		}
		if err := client.CheckConnection(ctx).Error(); err != nil {
			return nil, fmt.Errorf("proxy check failed for %s: %w", opts.ProxyAddress, err)
		}

		logger.Info("SOCKS5 proxy connection verified", "address", opts.ProxyAddress)
		return &Connection{
			HTTPClient:   client.NewHTTPClient(),
			Mode:         ModeSOCKS5,
			ProxyAddress: opts.ProxyAddress,
		}, nil

	default:
		return &Connection{
			HTTPClient: NewDirectHTTPClient(opts.Timeout),
			Mode:       ModeDirect,
		}, nil
	}
}

// startupTimeout returns the bootstrap deadline for the embedded daemon.
func (o Options) startupTimeout() time.Duration {
	if o.StartupTimeout > 0 {
		return o.StartupTimeout
	}
	return DefaultStartupTimeout
}

// connectEmbedded launches a private Tor daemon on OS-assigned ports, waits
// for it to bootstrap and verifies its SOCKS port. The daemon is stopped
// again on any failure, including ctx being cancelled mid-bootstrap.
func connectEmbedded(ctx context.Context, opts Options, logger *slog.Logger) (*Connection, error) {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(opts.startupTimeout()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	logger.Info("starting embedded Tor daemon", "timeout", opts.startupTimeout())

	type started struct {
		process *tornago.TorProcess
		err     error
	}
	done := make(chan started, 1)
	go func() {
		process, err := tornago.StartTorDaemon(launchCfg)
		done <- started{process: process, err: err}
	}()

	var daemon *tornago.TorProcess
	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("failed to start embedded Tor daemon: %w", res.err)
		}
		daemon = res.process
	case <-ctx.Done():
		// StartTorDaemon cannot be interrupted; reap the daemon once it is up.
		go func() {
			if res := <-done; res.err == nil {
				_ = res.process.Stop() //nolint:errcheck // Best effort cleanup
			}
		}()
		return nil, ctx.Err()
	}

	client, err := NewClient(daemon.SocksAddr(), opts.Timeout)
	if err == nil {
		err = client.CheckConnection(ctx).Error()
	}
	if err != nil {
		_ = daemon.Stop() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("embedded Tor proxy check failed: %w", err)
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", daemon.SocksAddr(),
		"controlAddr", daemon.ControlAddr(),
	)
	return &Connection{
		HTTPClient:   client.NewHTTPClient(),
		Mode:         ModeEmbedded,
		ProxyAddress: daemon.SocksAddr(),
		daemon:       daemon,
	}, nil
}

// Close releases idle connections and stops the embedded daemon, if any.
// It is safe to call on a nil Connection and more than once.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
	if c.daemon == nil {
		return nil
	}
	err := c.daemon.Stop()
	c.daemon = nil
	return err
}
