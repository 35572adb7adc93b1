package sftpinventory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
)

// Session is one authenticated SSH connection. It is safe to Close more than once.
type Session struct {
	conn SSHConn
	addr string

	closeOnce sync.Once
	closeErr  error
}

// Addr returns the host:port the session is connected to.
func (s *Session) Addr() string {
	return s.addr
}

// OpenDataChannel opens an SFTP channel on the session.
func (s *Session) OpenDataChannel(ctx context.Context) (*Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, connectionError("channel", fmt.Errorf("operation cancelled: %w", err))
	}

	type result struct {
		client SFTPClientInterface
		err    error
	}
	done := make(chan result, 1)
	go func() {
		client, err := s.conn.NewSFTPClient()
		done <- result{client, err}
	}()

	select {
	case <-ctx.Done():
		// The caller closes the session, which unblocks NewSFTPClient.
		go func() {
			if r := <-done; r.client != nil {
				r.client.Close()
			}
		}()
		return nil, connectionError("channel", fmt.Errorf("channel open cancelled: %w", ctx.Err()))
	case r := <-done:
		if r.err != nil {
			return nil, connectionError("channel", fmt.Errorf("failed to create SFTP client: %w", r.err))
		}
		return &Channel{client: r.client}, nil
	}
}

// Close releases the session and every channel opened on it.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// Channel is an SFTP channel scoped to file listing.
type Channel struct {
	client SFTPClientInterface
}

// ReadDir lists the entries of dir in the order the server returned them.
func (ch *Channel) ReadDir(ctx context.Context, dir string) ([]os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, listError(fmt.Errorf("operation cancelled: %w", err))
	}

	type result struct {
		entries []os.FileInfo
		err     error
	}
	done := make(chan result, 1)
	go func() {
		entries, err := ch.client.ReadDir(dir)
		done <- result{entries, err}
	}()

	select {
	case <-ctx.Done():
		return nil, listError(fmt.Errorf("list cancelled: %w", ctx.Err()))
	case r := <-done:
		if r.err != nil {
			return nil, listError(fmt.Errorf("failed to read remote directory %s: %w", dir, r.err))
		}
		return r.entries, nil
	}
}

// Close closes the SFTP channel.
func (ch *Channel) Close() error {
	return ch.client.Close()
}

// Extension returns the part of name after its last '.', or "" if name has none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

// filterEntries keeps the entries whose extension equals extension exactly,
// preserving their order.
func filterEntries(entries []os.FileInfo, extension string) []RemoteFileRecord {
	records := make([]RemoteFileRecord, 0, len(entries))
	for _, entry := range entries {
		if Extension(entry.Name()) != extension {
			continue
		}
		records = append(records, newRecord(entry))
	}
	return records
}

func newRecord(entry os.FileInfo) RemoteFileRecord {
	size := uint64(entry.Size())
	modTime := entry.ModTime()

	// Prefer the raw wire attributes when the SFTP client exposes them.
	if stat, ok := entry.Sys().(*sftp.FileStat); ok {
		size = stat.Size
		modTime = time.Unix(int64(stat.Mtime), 0)
	}

	return RemoteFileRecord{
		Name:    entry.Name(),
		Size:    size,
		ModTime: modTime.UTC().Format(time.UnixDate),
	}
}
