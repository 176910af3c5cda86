package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/estensen/wallet-wrapped/internal/api"
	"github.com/estensen/wallet-wrapped/internal/cache"
	"github.com/estensen/wallet-wrapped/internal/config"
	"github.com/estensen/wallet-wrapped/internal/database"
	"github.com/estensen/wallet-wrapped/internal/pipeline"
	"github.com/estensen/wallet-wrapped/internal/price"
	"github.com/estensen/wallet-wrapped/internal/provider"
	"github.com/estensen/wallet-wrapped/internal/rank"
	"github.com/estensen/wallet-wrapped/internal/storage"
	"github.com/estensen/wallet-wrapped/internal/utils"
)

var (
	configPath  string
	csvExport   string
	year        int
	serve       bool
	interactive bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to a config file")
	flag.StringVar(&csvExport, "csv", "", "Block-explorer CSV export to read transactions from before any API")
	flag.IntVar(&year, "year", 0, "Year to wrap, defaults to the current year")
	flag.BoolVar(&serve, "serve", true, "Serve the HTTP API after the command line run")
	flag.BoolVar(&interactive, "interactive", false, "Read addresses from stdin, newest wins")
}

func main() {
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Caller().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, history, cleanup := newService(ctx, cfg)
	defer cleanup()

	if interactive {
		runInteractive(ctx, svc)
		return
	}

	for _, address := range flag.Args() {
		result, err := svc.Stats(ctx, address)
		if err != nil {
			log.Error().Err(err).Str("address", address).Msg("error computing stats")
			continue
		}
		utils.DisplayStats(os.Stdout, result)

		report, err := svc.Wrapped(ctx, address, year)
		if err != nil {
			log.Error().Err(err).Str("address", address).Msg("error computing wrapped")
			continue
		}
		utils.DisplayWrapped(os.Stdout, report)
	}

	if !serve {
		return
	}
	server := api.NewServer(svc)
	if history != nil {
		server.History = history
	}
	if err := api.StartServer(ctx, cfg.HTTPAddr, server); err != nil {
		log.Fatal().Err(err).Msg("API server failed")
	}
}

// newService wires the providers, caches and optional persistence. Sinks that
// cannot be reached are logged and left out. The snapshot loader is nil
// without ClickHouse.
func newService(ctx context.Context, cfg config.Config) (*pipeline.Service, *database.SnapshotLoader, func()) {
	var providers []provider.Provider
	if csvExport != "" {
		providers = append(providers, provider.NewCSVExport(csvExport))
	}
	if cfg.Blockscout.URL != "" {
		providers = append(providers, provider.NewBlockscout(cfg.Blockscout.URL, cfg.Blockscout.RPS, cfg.Blockscout.MaxPages))
	}
	if cfg.CovalentEnabled() {
		providers = append(providers, provider.NewCovalent(cfg.Covalent.URL, cfg.Covalent.APIKey, cfg.Covalent.RPS))
	}

	svc := pipeline.NewService(provider.NewFallback(providers...), price.NewCoinGeckoAPI(cfg.CoinGecko.URL))
	svc.Timeout = cfg.Timeout
	svc.StatsTTL = cfg.Cache.StatsTTL
	svc.WrappedTTL = cfg.Cache.WrappedTTL
	svc.StatsCache = cache.NewLRU[pipeline.StatsResult]("stats", cfg.Cache.Capacity)
	svc.WrappedCache = cache.NewLRU[pipeline.WrappedReport]("wrapped", cfg.Cache.Capacity)
	if len(cfg.Names) > 0 {
		svc.Names = pipeline.NewStaticResolver(cfg.Names)
	}

	var closers []func()
	if cfg.RedisEnabled() {
		cli := cache.NewRedisClient(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err := cli.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("Redis unavailable, using in-memory wrapped cache")
		} else {
			svc.WrappedCache = cache.NewRedis[pipeline.WrappedReport](cli, "wrapped")
			closers = append(closers, func() { _ = cli.Close() })
		}
	}

	var loader *database.SnapshotLoader
	if cfg.ClickHouseEnabled() {
		conn, err := database.NewClickHouseConnection(ctx, database.Config{
			Addr:     cfg.ClickHouse.Addr,
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		})
		if err != nil {
			log.Warn().Err(err).Msg("ClickHouse unavailable, snapshots disabled")
		} else {
			if err := database.EnsureSchema(ctx, conn); err != nil {
				log.Warn().Err(err).Msg("error preparing ClickHouse schema")
			}
			loader = database.NewSnapshotLoader(conn)
			svc.Estimator = rank.NewEstimator(database.NewPercentileLookup(conn))
			closers = append(closers, func() { _ = conn.Close() })
		}
	}

	var reports storage.Storage
	if cfg.MinIOEnabled() {
		minioStorage, err := storage.NewMinIOStorage(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("MinIO unavailable, report export disabled")
		} else {
			reports = minioStorage
		}
	}

	switch {
	case loader != nil:
		svc.Snapshots = database.NewSnapshotJob(loader, reports)
	case reports != nil:
		svc.Snapshots = database.NewSnapshotJob(nil, reports)
	}

	return svc, loader, func() {
		for _, c := range closers {
			c()
		}
	}
}

// runInteractive wraps every address read from stdin. A new address
// supersedes the one still being computed.
func runInteractive(ctx context.Context, svc *pipeline.Service) {
	var (
		session pipeline.Session
		last    <-chan struct{}
	)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		address := strings.TrimSpace(scanner.Text())
		if address == "" {
			continue
		}
		last = pipeline.Go(ctx, &session, func(ctx context.Context) (pipeline.WrappedReport, error) {
			return svc.Wrapped(ctx, address, year)
		}, func(report pipeline.WrappedReport, err error) {
			if err != nil {
				log.Error().Err(err).Str("address", address).Msg("error computing wrapped")
				return
			}
			utils.DisplayWrapped(os.Stdout, report)
		})
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("error reading stdin")
	}
	if last != nil {
		<-last
	}
}
