package sftpinventory

import "go.uber.org/zap"

// Logger is the logging interface used by the client.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var _ Logger = (*zap.SugaredLogger)(nil)

func loggerFor(config Config) Logger {
	if config.Logger != nil {
		return config.Logger
	}
	return zap.S()
}
