package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cuemby/notesd/internal/config"
	"github.com/cuemby/notesd/internal/fetch"
	"github.com/cuemby/notesd/internal/hub"
	"github.com/cuemby/notesd/internal/ingest"
	"github.com/cuemby/notesd/internal/rpc"
	"github.com/cuemby/notesd/internal/scavenger"
	"github.com/cuemby/notesd/internal/stats"
	"github.com/cuemby/notesd/internal/storage"
	"github.com/cuemby/notesd/internal/telemetry"
	"github.com/cuemby/notesd/internal/tlsconfig"
	"github.com/cuemby/notesd/pkg/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the notesd server",
	RunE:  runServe,
}

func init() {
	config.RegisterFlags(serveCmd)
}

const memoryDataDirScheme = "memory://"

// openStore resolves --database into a concrete Store. The
// "memory://" scheme selects the in-memory backend, for local
// development and tests; anything else is a bbolt data directory.
func openStore(dataDir string) (storage.Store, error) {
	if strings.HasPrefix(dataDir, memoryDataDirScheme) {
		return storage.NewMemStore(), nil
	}
	return storage.NewBoltStore(dataDir)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return usageErrorf("%v", err)
	}

	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	serverLog := log.WithComponent("notesd")

	store, err := openStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	startedAt := time.Now()
	collector := stats.New(func() (int64, error) { return store.CountTotal(context.Background()) })

	lastAssigned, err := store.LastAssignedMs(context.Background())
	if err != nil {
		return fmt.Errorf("reading last-assigned timestamp: %w", err)
	}

	subHub := hub.New(cfg.SubQueueDepth, cfg.MaxSubscriptions, collector, log.WithComponent("hub"))
	ingestEngine := ingest.New(store, subHub, ingest.WallClock, lastAssigned, log.WithComponent("ingest"))
	fetchEngine := fetch.New(store, cfg.MaxPage)

	sweeper := scavenger.New(store, time.Duration(cfg.RetentionDays)*24*time.Hour, cfg.ScavengerPeriod, collector, log.WithComponent("scavenger"))
	sweeper.Start(cmd.Context())
	defer sweeper.Stop()

	server := rpc.NewServer(ingestEngine, fetchEngine, subHub, collector, log.WithComponent("rpc"))

	var tlsConf *tls.Config
	if cfg.TLSCert != "" && cfg.TLSKey != "" {
		tlsConf, err = tlsconfig.Load(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("loading TLS credentials: %w", err)
		}
	}

	var inFlight atomic.Int64
	grpcServer := rpc.NewGRPCServer(server, tlsConf,
		rpc.CapacityInterceptor(int64(cfg.MaxInFlightSends), &inFlight),
		rpc.LoggingInterceptor(log.WithComponent("rpc")),
	)

	listener, err := rpc.Listen(grpcServer, cfg.Listen)
	if err != nil {
		return fmt.Errorf("starting gRPC listener: %w", err)
	}

	serveErrCh := make(chan error, 1)
	go func() {
		serverLog.Info().Str("addr", listener.Addr()).Msg("grpc listening")
		if err := listener.Serve(); err != nil {
			serveErrCh <- err
		}
	}()

	httpSrv := &http.Server{Addr: cfg.TelemetryAddr, Handler: telemetry.Mux(store, startedAt)}
	go func() {
		serverLog.Info().Str("addr", cfg.TelemetryAddr).Msg("telemetry listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverLog.Error().Err(err).Msg("telemetry server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		serverLog.Info().Msg("shutting down")
	case err := <-serveErrCh:
		serverLog.Error().Err(err).Msg("grpc server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	listener.Stop()

	return nil
}
