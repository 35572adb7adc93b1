package sftpinventory

import (
	"context"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// MockSFTPClient implements SFTPClientInterface for testing.
type MockSFTPClient struct {
	mu      sync.Mutex
	dirs    map[string][]os.FileInfo
	errors  map[string]error
	block   chan struct{}
	closed  int
	readDir int
}

// NewMockSFTPClient creates a new mock SFTP client.
func NewMockSFTPClient() *MockSFTPClient {
	return &MockSFTPClient{
		dirs:   make(map[string][]os.FileInfo),
		errors: make(map[string]error),
	}
}

// Ensure MockSFTPClient implements SFTPClientInterface.
var _ SFTPClientInterface = (*MockSFTPClient)(nil)

// SetError sets an error to be returned for a specific method.
func (m *MockSFTPClient) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[method] = err
}

// SetDir sets the entries returned for a directory, in listing order.
func (m *MockSFTPClient) SetDir(path string, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]os.FileInfo, 0, len(names))
	for i, name := range names {
		entries = append(entries, &mockFileInfo{
			name:    name,
			size:    int64(100 * (i + 1)),
			mode:    0644,
			modTime: time.Date(2024, 3, 1, 12, i, 0, 0, time.UTC),
		})
	}
	m.dirs[path] = entries
}

// AddSubdir appends a directory entry to the listing of path.
func (m *MockSFTPClient) AddSubdir(path, name string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = append(m.dirs[path], &mockFileInfo{
		name:    name,
		size:    size,
		mode:    os.ModeDir | 0755,
		modTime: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		isDir:   true,
	})
}

// BlockReadDir makes ReadDir wait until the returned channel is closed.
func (m *MockSFTPClient) BlockReadDir() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = make(chan struct{})
	return m.block
}

func (m *MockSFTPClient) ReadDir(path string) ([]os.FileInfo, error) {
	m.mu.Lock()
	m.readDir++
	block := m.block
	err := m.errors["ReadDir"]
	entries, ok := m.dirs[path]
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, os.ErrNotExist
	}
	return entries, nil
}

func (m *MockSFTPClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return m.errors["Close"]
}

// Closed returns how many times Close was called.
func (m *MockSFTPClient) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ReadDirCalls returns how many times ReadDir was called.
func (m *MockSFTPClient) ReadDirCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readDir
}

// mockDialer implements Dialer, handing out mockSSHConns backed by one MockSFTPClient.
type mockDialer struct {
	mu       sync.Mutex
	sftp     *MockSFTPClient
	dialErr  error
	sftpErr  error
	dials    int
	conns    []*mockSSHConn
	lastAddr string
	lastUser string

	dialStarted chan struct{}
	dialBlock   chan struct{}
}

func newMockDialer(sftp *MockSFTPClient) *mockDialer {
	return &mockDialer{sftp: sftp}
}

var _ Dialer = (*mockDialer)(nil)

// BlockDial makes Dial signal started and then wait until release is closed.
func (d *mockDialer) BlockDial() (started <-chan struct{}, release chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialStarted = make(chan struct{}, 1)
	d.dialBlock = make(chan struct{})
	return d.dialStarted, d.dialBlock
}

func (d *mockDialer) Dial(ctx context.Context, network, addr string, config *ssh.ClientConfig) (SSHConn, error) {
	d.mu.Lock()
	started, block := d.dialStarted, d.dialBlock
	d.mu.Unlock()
	if block != nil {
		started <- struct{}{}
		<-block
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	d.lastAddr = addr
	d.lastUser = config.User
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn := &mockSSHConn{sftp: d.sftp, sftpErr: d.sftpErr}
	d.conns = append(d.conns, conn)
	return conn, nil
}

// Dials returns how many times Dial was called.
func (d *mockDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// Open returns how many dialed connections have not been closed.
func (d *mockDialer) Open() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	open := 0
	for _, c := range d.conns {
		if c.Closes() == 0 {
			open++
		}
	}
	return open
}

type mockSSHConn struct {
	mu      sync.Mutex
	sftp    *MockSFTPClient
	sftpErr error
	closes  int
}

func (c *mockSSHConn) NewSFTPClient() (SFTPClientInterface, error) {
	if c.sftpErr != nil {
		return nil, c.sftpErr
	}
	return c.sftp, nil
}

func (c *mockSSHConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *mockSSHConn) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}
