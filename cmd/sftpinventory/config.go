package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/buger/jsonparser"
	"github.com/kelseyhightower/envconfig"

	"github.com/darshan-rambhia/sftpinventory"
)

const envPrefix = "SFTP_INVENTORY"

// Settings is the command configuration, read from SFTP_INVENTORY_* variables.
// Fields carry no explicit envconfig names: envconfig falls back to the
// unprefixed variable for those, which would pick up USER and HOST.
type Settings struct {
	Host            string
	Port            int `default:"22"`
	User            string
	Password        string
	KeyPath         string        `split_words:"true"`
	BasePath        string        `split_words:"true"`
	Extension       string
	Timeout         time.Duration `default:"30s"`
	HostFingerprint string        `split_words:"true"`
	KnownHostsFile  string        `split_words:"true"`
	TrustAlways     bool          `split_words:"true"`
	LogLevel        string        `split_words:"true" default:"info"`
	MCPAddr         string        `split_words:"true"`
	MetricsAddr     string        `split_words:"true"`
}

func loadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to load environment: %w", err)
	}
	return s, nil
}

func readConfiguration(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New("could not locate a configuration file at the specified path")
	}
	return os.ReadFile(path)
}

// overlay applies the "sftp" object of a JSON configuration file on top of s.
// Keys absent from the file leave the environment value in place.
func (s *Settings) overlay(data []byte) error {
	fields := []struct {
		key string
		dst *string
	}{
		{"host", &s.Host},
		{"user", &s.User},
		{"password", &s.Password},
		{"key_path", &s.KeyPath},
		{"base_path", &s.BasePath},
		{"fingerprint", &s.HostFingerprint},
		{"known_hosts_file", &s.KnownHostsFile},
	}
	for _, f := range fields {
		v, err := jsonparser.GetString(data, "sftp", f.key)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			continue
		}
		if err != nil {
			return fmt.Errorf("sftp.%s: %w", f.key, err)
		}
		*f.dst = v
	}

	port, err := jsonparser.GetInt(data, "sftp", "port")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
	case err != nil:
		return fmt.Errorf("sftp.port: %w", err)
	default:
		s.Port = int(port)
	}

	trust, err := jsonparser.GetBoolean(data, "sftp", "trust_always")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
	case err != nil:
		return fmt.Errorf("sftp.trust_always: %w", err)
	default:
		s.TrustAlways = trust
	}
	return nil
}

// clientConfig maps the settings onto a client Config.
func (s Settings) clientConfig(logger sftpinventory.Logger) sftpinventory.Config {
	policy := sftpinventory.HostKeyVerify
	if s.TrustAlways {
		policy = sftpinventory.HostKeyTrustAlways
	}
	return sftpinventory.Config{
		User:               s.User,
		Host:               s.Host,
		Port:               s.Port,
		Password:           s.Password,
		KeyPath:            s.KeyPath,
		BasePath:           s.BasePath,
		Timeout:            s.Timeout,
		HostKeyPolicy:      policy,
		HostKeyFingerprint: s.HostFingerprint,
		KnownHostsFile:     s.KnownHostsFile,
		Logger:             logger,
	}
}
