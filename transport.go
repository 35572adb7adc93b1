package sftpinventory

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Dialer establishes authenticated SSH connections.
// This allows the transport to be replaced in tests.
type Dialer interface {
	Dial(ctx context.Context, network, addr string, config *ssh.ClientConfig) (SSHConn, error)
}

// SSHConn is an authenticated SSH connection able to start the SFTP subsystem.
type SSHConn interface {
	// NewSFTPClient opens an SFTP channel on the connection.
	NewSFTPClient() (SFTPClientInterface, error)
	// Close closes the connection and every channel opened on it.
	Close() error
}

// SFTPClientInterface abstracts SFTP operations for testing.
type SFTPClientInterface interface {
	ReadDir(path string) ([]os.FileInfo, error)
	Close() error
}

// SFTPClientWrapper wraps the real sftp.Client to implement SFTPClientInterface.
type SFTPClientWrapper struct {
	client *sftp.Client
}

var _ SFTPClientInterface = (*SFTPClientWrapper)(nil)

func (w *SFTPClientWrapper) ReadDir(path string) ([]os.FileInfo, error) { return w.client.ReadDir(path) }
func (w *SFTPClientWrapper) Close() error                               { return w.client.Close() }

// netDialer dials TCP and performs the SSH handshake, honouring ctx for both.
type netDialer struct{}

func (netDialer) Dial(ctx context.Context, network, addr string, config *ssh.ClientConfig) (SSHConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// The handshake has no ctx of its own; closing the conn unblocks it.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	ncc, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if !stop() {
		return nil, ctx.Err()
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	return &sshConn{client: ssh.NewClient(ncc, chans, reqs)}, nil
}

type sshConn struct {
	client *ssh.Client
}

func (c *sshConn) NewSFTPClient() (SFTPClientInterface, error) {
	client, err := sftp.NewClient(c.client)
	if err != nil {
		return nil, err
	}
	return &SFTPClientWrapper{client: client}, nil
}

func (c *sshConn) Close() error {
	return c.client.Close()
}

func buildHostKeyCallback(config Config, logger Logger) (ssh.HostKeyCallback, error) {
	if config.HostKeyPolicy == HostKeyTrustAlways {
		logger.Warnf("SSH host key verification disabled for %s:%d - this is insecure!", config.Host, config.Port)
		return ssh.InsecureIgnoreHostKey(), nil
	}

	if config.HostKeyFingerprint != "" {
		return fingerprintCallback(config.HostKeyFingerprint), nil
	}

	if config.KnownHostsFile != "" {
		expandedPath := ExpandPath(config.KnownHostsFile)
		callback, err := knownhosts.New(expandedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts file %s: %w", expandedPath, err)
		}
		return callback, nil
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		defaultKnownHosts := filepath.Join(homeDir, ".ssh", "known_hosts")
		if _, err := os.Stat(defaultKnownHosts); err == nil {
			callback, err := knownhosts.New(defaultKnownHosts)
			if err != nil {
				return nil, fmt.Errorf("failed to load known_hosts file %s: %w", defaultKnownHosts, err)
			}
			return callback, nil
		}
	}

	return nil, fmt.Errorf("no host key source for %s:%d (set a fingerprint, a known_hosts file, or trust_always)",
		config.Host, config.Port)
}

// fingerprintCallback pins the host key to a single fingerprint. A value
// with the "SHA256:" prefix is compared with ssh.FingerprintSHA256, anything
// else with the legacy colon-separated MD5 form.
func fingerprintCallback(want string) ssh.HostKeyCallback {
	sha := strings.HasPrefix(want, "SHA256:")
	if !sha {
		want = strings.TrimPrefix(want, "MD5:")
	}

	// Shared by every Dial on the client; must only read want.
	return func(hostname string, _ net.Addr, key ssh.PublicKey) error {
		got := ssh.FingerprintLegacyMD5(key)
		if sha {
			got = ssh.FingerprintSHA256(key)
		}
		if got != want {
			return fmt.Errorf("host key fingerprint mismatch for %s: got %s", hostname, got)
		}
		return nil
	}
}

func buildAuthMethods(config Config) ([]ssh.AuthMethod, error) {
	var authMethods []ssh.AuthMethod

	if config.PrivateKey != "" || config.KeyPath != "" {
		keyAuth, err := buildPrivateKeyAuth(config)
		if err != nil {
			return nil, err
		}
		authMethods = append(authMethods, keyAuth)
	}

	authMethods = append(authMethods, ssh.Password(config.Password))
	return authMethods, nil
}

func buildPrivateKeyAuth(config Config) (ssh.AuthMethod, error) {
	var keyData []byte
	var err error

	if config.PrivateKey != "" {
		keyData = []byte(config.PrivateKey)
	} else {
		keyData, err = os.ReadFile(ExpandPath(config.KeyPath))
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key file: %w", err)
		}
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH private key: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
