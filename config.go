package sftpinventory

import (
	"fmt"
	"time"
)

// HostKeyPolicy controls how the server's host key is checked.
type HostKeyPolicy string

const (
	// HostKeyVerify checks the host key against HostKeyFingerprint, a
	// known_hosts file, or ~/.ssh/known_hosts (default).
	HostKeyVerify HostKeyPolicy = "verify"
	// HostKeyTrustAlways accepts any host key.
	// WARNING: This is insecure and should only be used for testing.
	HostKeyTrustAlways HostKeyPolicy = "trust_always"
)

// Config holds SSH connection configuration.
type Config struct {
	// Host is the target SSH server hostname or IP address.
	Host string

	// Port is the SSH port (default 22).
	Port int

	// User is the SSH username.
	User string

	// Password is the SSH password. Required.
	Password string

	// BasePath is the remote directory whose entries are listed.
	BasePath string

	// PrivateKey is optional SSH private key content (PEM encoded), tried
	// before the password. Mutually exclusive with KeyPath.
	PrivateKey string

	// KeyPath is the path to an optional SSH private key file.
	KeyPath string

	// Timeout bounds connection establishment (default 30s).
	Timeout time.Duration

	// HostKeyPolicy selects host key checking (default HostKeyVerify).
	HostKeyPolicy HostKeyPolicy

	// HostKeyFingerprint pins the server key, e.g. "SHA256:..." as printed
	// by ssh-keygen -lf. Takes precedence over KnownHostsFile.
	HostKeyFingerprint string

	// KnownHostsFile is the path to a known_hosts file for host key verification.
	// If not set, defaults to ~/.ssh/known_hosts.
	KnownHostsFile string

	// Logger receives diagnostic output. Defaults to zap.S().
	Logger Logger
}

// WithDefaults returns a copy of the config with default values applied.
func (c Config) WithDefaults() Config {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HostKeyPolicy == "" {
		c.HostKeyPolicy = HostKeyVerify
	}
	return c
}

// Validate reports the first problem with the config as a KindInvalidArgument error.
func (c Config) Validate() error {
	switch {
	case c.User == "":
		return invalidArgument("config", "user is required")
	case c.Host == "":
		return invalidArgument("config", "host is required")
	case c.Password == "":
		return invalidArgument("config", "password is required")
	case c.BasePath == "":
		return invalidArgument("config", "base path is required")
	case c.Port < 0:
		return invalidArgument("config", "port number cannot be negative")
	case c.Port > 65535:
		return invalidArgument("config", fmt.Sprintf("port %d out of range", c.Port))
	case c.Timeout < 0:
		return invalidArgument("config", "timeout cannot be negative")
	case c.PrivateKey != "" && c.KeyPath != "":
		return invalidArgument("config", "private key and key path are mutually exclusive")
	}

	switch c.HostKeyPolicy {
	case "", HostKeyVerify, HostKeyTrustAlways:
	default:
		return invalidArgument("config", fmt.Sprintf("unknown host key policy %q", c.HostKeyPolicy))
	}
	return nil
}

// RemoteFileRecord describes one remote directory entry.
type RemoteFileRecord struct {
	// Name is the entry name as reported by the server.
	Name string

	// Size is the entry size in bytes.
	Size uint64

	// ModTime is the server-reported modification time. It is an opaque
	// display string and is never parsed.
	ModTime string
}
