// Command sftpinventory lists the files of one remote SFTP directory that
// carry a given extension, or serves that listing as MCP tools.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/darshan-rambhia/sftpinventory"
)

const version = "0.1.0"

func main() {
	var (
		configLocation string
		extension      string
		debugMode      bool
	)

	flag.StringVar(&configLocation, "config", "", "optional JSON configuration file with an \"sftp\" object")
	flag.StringVar(&extension, "ext", "", "file extension to list, overrides "+envPrefix+"_EXTENSION")
	flag.BoolVar(&debugMode, "debug", false, "output debug information")
	flag.Parse()

	if err := run(configLocation, extension, debugMode); err != nil {
		fmt.Fprintln(os.Stderr, "sftpinventory:", err)
		os.Exit(1)
	}
}

func run(configLocation, extension string, debugMode bool) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if configLocation != "" {
		data, err := readConfiguration(configLocation)
		if err != nil {
			return err
		}
		if err := settings.overlay(data); err != nil {
			return fmt.Errorf("could not read configuration %s: %w", configLocation, err)
		}
	}
	if extension != "" {
		settings.Extension = extension
	}

	logger, err := newLogger(debugMode, settings.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer zap.ReplaceGlobals(logger)()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []sftpinventory.ClientOption
	if settings.MetricsAddr != "" {
		opts = append(opts, sftpinventory.WithMetrics(sftpinventory.NewMetrics(prometheus.DefaultRegisterer)))
		go serveMetrics(settings.MetricsAddr, sugar)
	}

	client, err := sftpinventory.NewClient(settings.clientConfig(sugar), opts...)
	if err != nil {
		return err
	}

	if settings.MCPAddr != "" {
		sugar.Infow("starting MCP server", zap.String("addr", settings.MCPAddr), zap.String("path", client.Path()))
		if err := serveMCP(ctx, client, settings.MCPAddr); err != nil {
			return err
		}
		sugar.Infow("MCP server stopped", zap.Error(ctx.Err()))
		return nil
	}

	if settings.Extension == "" {
		return errors.New("no extension given: use -ext or " + envPrefix + "_EXTENSION")
	}
	return listOnce(ctx, client, settings.Extension, os.Stdout)
}

func serveMetrics(addr string, logger *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Infow("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("metrics server stopped", zap.Error(err))
	}
}

// listOnce lists the inventory once and writes one line per record.
func listOnce(ctx context.Context, inv sftpinventory.Inventory, extension string, w io.Writer) error {
	records, err := inv.ListFiles(ctx, extension)
	if err != nil {
		return err
	}
	writeRecords(w, records)
	return nil
}

// writeRecords writes name, size and modification time separated by tabs.
func writeRecords(w io.Writer, records []sftpinventory.RemoteFileRecord) {
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%d\t%s\n", r.Name, r.Size, r.ModTime)
	}
}
