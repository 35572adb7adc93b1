package sftpinventory

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// Inventory defines the remote file inventory operations.
// This allows for mocking in tests.
type Inventory interface {
	// Connect opens and holds an authenticated session.
	Connect(ctx context.Context) error
	// Disconnect releases the held session.
	Disconnect() error
	// OpenDataChannel opens an SFTP channel on the held session.
	OpenDataChannel(ctx context.Context) (*Channel, error)
	// ListFiles returns the base path entries whose extension equals filterExtension.
	ListFiles(ctx context.Context, filterExtension string) ([]RemoteFileRecord, error)
	// Path returns the configured base path.
	Path() string
}

// Client lists and filters files in one remote directory over SFTP.
//
// ListFiles is safe for concurrent use: every call runs on its own session.
// Connect, Disconnect and OpenDataChannel share a single held session
// guarded by a mutex.
type Client struct {
	config    Config
	sshConfig *ssh.ClientConfig
	addr      string
	dialer    Dialer
	metrics   *Metrics
	logger    Logger

	mu         sync.Mutex
	session    *Session
	connecting bool
}

// Ensure Client implements Inventory.
var _ Inventory = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDialer replaces the SSH transport.
func WithDialer(d Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithMetrics enables Prometheus instrumentation of ListFiles.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient validates config and creates a Client. No network activity
// happens until Connect, Dial or ListFiles.
func NewClient(config Config, opts ...ClientOption) (*Client, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := loggerFor(config)
	logger.Debugf("creating inventory client for %s@%s:%d path=%s", config.User, config.Host, config.Port, config.BasePath)

	authMethods, err := buildAuthMethods(config)
	if err != nil {
		return nil, &Error{Kind: KindInvalidArgument, Op: "config", Err: err}
	}

	hostKeyCallback, err := buildHostKeyCallback(config, logger)
	if err != nil {
		return nil, &Error{Kind: KindInvalidArgument, Op: "config",
			Err: fmt.Errorf("failed to configure host key verification: %w", err)}
	}

	c := &Client{
		config: config,
		sshConfig: &ssh.ClientConfig{
			User:            config.User,
			Auth:            authMethods,
			HostKeyCallback: hostKeyCallback,
			Timeout:         config.Timeout,
		},
		addr:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		dialer: netDialer{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Path returns the configured base path.
func (c *Client) Path() string {
	return c.config.BasePath
}

// Dial opens a new authenticated session. The session is owned by the
// caller and is not the one held by Connect.
func (c *Client) Dial(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, connectionError("connect", fmt.Errorf("operation cancelled: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	c.logger.Infof("connecting as %s on %s", c.config.User, c.addr)
	conn, err := c.dialer.Dial(ctx, "tcp", c.addr, c.sshConfig)
	if err != nil {
		return nil, connectionError("connect", fmt.Errorf("failed to connect to %s: %w", c.addr, err))
	}
	c.logger.Debugf("connected to %s", c.addr)

	return &Session{conn: conn, addr: c.addr}, nil
}

// Connect opens a session and holds it until Disconnect. Connecting while
// a session is already held, or while another Connect is dialing, is an error.
// The lock is not held during the dial.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.session != nil || c.connecting {
		c.mu.Unlock()
		return illegalState("connect", "a session is already open; call Disconnect first")
	}
	c.connecting = true
	c.mu.Unlock()

	session, err := c.Dial(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.connecting = false
	if err != nil {
		return err
	}
	c.session = session
	return nil
}

// Disconnect releases the held session.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return illegalState("disconnect", "no open session")
	}

	c.logger.Debugf("disconnecting from %s", c.addr)
	err := c.session.Close()
	c.session = nil
	if err != nil {
		return connectionError("disconnect", err)
	}
	return nil
}

// OpenDataChannel opens an SFTP channel on the session held by Connect.
// The caller closes the returned channel.
func (c *Client) OpenDataChannel(ctx context.Context) (*Channel, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, illegalState("channel", "not connected")
	}

	c.logger.Debugf("opening SFTP channel on %s", c.addr)
	return session.OpenDataChannel(ctx)
}

// ListFiles connects, lists the base path, keeps the entries whose
// extension equals filterExtension and disconnects. Records keep the order
// the server returned them in. On error no records are returned, and the
// session is always released.
func (c *Client) ListFiles(ctx context.Context, filterExtension string) (records []RemoteFileRecord, err error) {
	start := time.Now()
	defer func() {
		c.metrics.observeList(start, len(records), err)
	}()

	if filterExtension == "" {
		return nil, invalidArgument("list", "file extension cannot be blank")
	}

	c.logger.Debugf("listing *.%s in %s on %s", filterExtension, c.config.BasePath, c.addr)

	session, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			c.logger.Warnf("failed to close session to %s: %v", c.addr, cerr)
		}
	}()

	channel, err := session.OpenDataChannel(ctx)
	if err != nil {
		return nil, err
	}
	defer channel.Close()

	entries, err := channel.ReadDir(ctx, c.config.BasePath)
	if err != nil {
		c.logger.Errorf("listing %s on %s failed: %v", c.config.BasePath, c.addr, err)
		return nil, err
	}

	records = filterEntries(entries, filterExtension)
	for _, r := range records {
		c.logger.Debugf("found file on server: %s; size: %d", r.Name, r.Size)
	}
	c.logger.Debugf("finished listing %s: %d of %d entries matched", c.config.BasePath, len(records), len(entries))

	return records, nil
}
