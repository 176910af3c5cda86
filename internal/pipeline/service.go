package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/estensen/wallet-wrapped/internal/aggregator"
	"github.com/estensen/wallet-wrapped/internal/cache"
	"github.com/estensen/wallet-wrapped/internal/metrics"
	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/price"
	"github.com/estensen/wallet-wrapped/internal/provider"
	"github.com/estensen/wallet-wrapped/internal/rank"
	"github.com/estensen/wallet-wrapped/internal/score"
	"github.com/estensen/wallet-wrapped/internal/wrapped"
)

var (
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrInvalidYear    = errors.New("invalid year")
	ErrTimeout        = errors.New("upstream fetch timed out")
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultStatsTTL   = 5 * time.Minute
	DefaultWrappedTTL = 6 * time.Hour

	defaultCacheCapacity = 1000
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidateAddress accepts a 0x-prefixed 20-byte hex address.
func ValidateAddress(address string) error {
	if !addressPattern.MatchString(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}

// Snapshotter persists a finished wrapped computation.
type Snapshotter interface {
	SaveWrapped(ctx context.Context, runID string, m models.WrappedMetrics) error
}

type StatsResult struct {
	Stats           models.WalletStatistics `json:"stats"`
	Score           models.ScoreBreakdown   `json:"score"`
	Percentile      int                     `json:"percentile"`
	ScorePercentile int                     `json:"scorePercentile"`
	Tier            string                  `json:"tier"`
}

type WrappedReport struct {
	RunID      string                `json:"runId"`
	Metrics    models.WrappedMetrics `json:"metrics"`
	Percentile int                   `json:"percentile"`
	Tier       string                `json:"tier"`
}

// Service runs the fetch, normalize and compute pipeline for one wallet.
// Optional collaborators may be left nil.
type Service struct {
	Provider     provider.Provider
	Oracle       price.Oracle
	Names        NameResolver
	Aggregator   aggregator.Aggregator
	StatsCache   cache.Cache[StatsResult]
	WrappedCache cache.Cache[WrappedReport]
	Estimator    *rank.Estimator
	Snapshots    Snapshotter

	Timeout    time.Duration
	StatsTTL   time.Duration
	WrappedTTL time.Duration

	nowFn    func() time.Time
	newRunID func() string
}

func NewService(p provider.Provider, oracle price.Oracle) *Service {
	return &Service{
		Provider:     p,
		Oracle:       oracle,
		Aggregator:   aggregator.NewAggregator(),
		StatsCache:   cache.NewLRU[StatsResult]("stats", defaultCacheCapacity),
		WrappedCache: cache.NewLRU[WrappedReport]("wrapped", defaultCacheCapacity),
		Estimator:    rank.NewEstimator(nil),
		Timeout:      DefaultTimeout,
		StatsTTL:     DefaultStatsTTL,
		WrappedTTL:   DefaultWrappedTTL,
		nowFn:        func() time.Time { return time.Now().UTC() },
		newRunID:     func() string { return uuid.NewString() },
	}
}

// Stats computes wallet statistics, the quest score and the percentile.
func (s *Service) Stats(ctx context.Context, address string) (StatsResult, error) {
	if err := ValidateAddress(address); err != nil {
		return StatsResult{}, err
	}

	key := cache.StatsKey(address)
	if cached, ok := cacheGet(ctx, s.StatsCache, key); ok {
		return cached, nil
	}

	timer := prometheus.NewTimer(metrics.PipelineLatency.WithLabelValues("stats"))
	defer timer.ObserveDuration()

	h, err := s.fetch(ctx, address)
	if err != nil {
		return StatsResult{}, err
	}

	stats := s.Aggregator.Aggregate(h.txs, h.tokens, h.nfts, s.tokenPrices(ctx, h.tokens), aggregator.Options{
		Address:             address,
		Now:                 s.nowFn(),
		TxCountOverride:     h.activity.TxCount,
		FirstTxDateOverride: h.activity.FirstTxDate,
		DisplayName:         h.name,
	})
	breakdown := score.Score(stats)
	// Lifetime counts are not comparable with the stored in-year snapshots.
	percentile := rank.PercentileFromTxCount(stats.TotalTransactions)

	result := StatsResult{
		Stats:           stats,
		Score:           breakdown,
		Percentile:      percentile,
		ScorePercentile: rank.PercentileFromScore(breakdown.Total),
		Tier:            rank.Tier(percentile),
	}
	cacheSet(ctx, s.StatsCache, key, result, s.StatsTTL)

	log.Info().
		Str("address", address).
		Int("transactions", stats.TotalTransactions).
		Int("score", breakdown.Total).
		Msg("stats computed")
	return result, nil
}

// Wrapped computes the year in review. Year 0 means the current year.
func (s *Service) Wrapped(ctx context.Context, address string, year int) (WrappedReport, error) {
	if err := ValidateAddress(address); err != nil {
		return WrappedReport{}, err
	}
	now := s.nowFn()
	if year == 0 {
		year = now.Year()
	}
	if year < 0 || year > now.Year() {
		return WrappedReport{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	key := cache.WrappedKey(address, year)
	if cached, ok := cacheGet(ctx, s.WrappedCache, key); ok {
		return cached, nil
	}

	timer := prometheus.NewTimer(metrics.PipelineLatency.WithLabelValues("wrapped"))
	defer timer.ObserveDuration()

	h, err := s.fetch(ctx, address)
	if err != nil {
		return WrappedReport{}, err
	}

	ethPrice := 0.0
	if s.Oracle != nil {
		if ethPrice, err = price.ETHPriceForYear(ctx, s.Oracle, year, now); err != nil {
			log.Warn().Err(err).Int("year", year).Msg("ETH price unavailable, USD figures will be zero")
			ethPrice = 0
		}
	}

	in := wrapped.Input{
		Address:        address,
		Year:           year,
		Transactions:   h.txs,
		TokenTransfers: h.tokens,
		NFTTransfers:   h.nfts,
		DisplayName:    h.name,
		ETHPriceUSD:    ethPrice,
		FirstActivity:  h.activity.FirstTxDate,
	}
	if year == now.Year() {
		in.Now = now
	}
	m := wrapped.Compute(in)
	percentile := s.Estimator.FromTxCount(ctx, year, m.TotalTransactions)

	report := WrappedReport{
		RunID:      s.newRunID(),
		Metrics:    m,
		Percentile: percentile,
		Tier:       rank.Tier(percentile),
	}

	if s.Snapshots != nil {
		if err := s.Snapshots.SaveWrapped(ctx, report.RunID, m); err != nil {
			log.Error().Err(err).Str("runID", report.RunID).Msg("error saving wrapped snapshot")
		}
	}
	cacheSet(ctx, s.WrappedCache, key, report, s.WrappedTTL)

	log.Info().
		Str("runID", report.RunID).
		Str("address", address).
		Int("year", year).
		Str("tribe", m.Tribe.ID).
		Msg("wrapped computed")
	return report, nil
}

type history struct {
	txs      []models.CanonicalTransaction
	tokens   []models.TokenTransfer
	nfts     []models.NFTTransfer
	name     string
	activity provider.Activity
}

// fetch loads all streams concurrently under the service timeout. A stream
// whose providers all failed is treated as empty; running out of time is an
// error so that a truncated history is never computed or cached.
func (s *Service) fetch(ctx context.Context, address string) (history, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var h history
	g, gctx := errgroup.WithContext(fetchCtx)

	g.Go(func() error {
		txs, err := s.Provider.Transactions(gctx, address)
		h.txs = orEmpty(txs, err, "transactions", address)
		return nil
	})
	g.Go(func() error {
		tokens, err := s.Provider.TokenTransfers(gctx, address)
		h.tokens = orEmpty(tokens, err, "token transfers", address)
		return nil
	})
	g.Go(func() error {
		nfts, err := s.Provider.NFTTransfers(gctx, address)
		h.nfts = orEmpty(nfts, err, "NFT transfers", address)
		return nil
	})
	if src, ok := s.Provider.(provider.ActivitySource); ok {
		g.Go(func() error {
			activity, err := src.Activity(gctx, address)
			switch {
			case errors.Is(err, provider.ErrUnsupported):
			case err != nil:
				log.Warn().Err(err).Str("address", address).Msg("activity lookup failed, using loaded history")
			default:
				h.activity = activity
			}
			return nil
		})
	}
	if s.Names != nil {
		g.Go(func() error {
			name, err := s.Names.Resolve(gctx, address)
			if err != nil {
				log.Warn().Err(err).Str("address", address).Msg("name resolution failed")
				return nil
			}
			h.name = name
			return nil
		})
	}
	_ = g.Wait()

	if err := fetchCtx.Err(); err != nil {
		if ctx.Err() != nil {
			return history{}, ctx.Err()
		}
		return history{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return h, nil
}

func orEmpty[T any](items []T, err error, what, address string) []T {
	if err != nil {
		log.Warn().Err(err).Str("address", address).Msgf("no %s available, continuing without them", what)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// tokenPrices quotes every transferred contract. A failed lookup yields an
// empty map so that only stablecoins are valued.
func (s *Service) tokenPrices(ctx context.Context, transfers []models.TokenTransfer) map[string]float64 {
	if s.Oracle == nil || len(transfers) == 0 {
		return map[string]float64{}
	}
	contracts := make([]string, 0, len(transfers))
	for _, transfer := range transfers {
		if transfer.ContractAddress != "" {
			contracts = append(contracts, strings.ToLower(transfer.ContractAddress))
		}
	}

	prices, err := s.Oracle.GetTokenPrices(ctx, contracts)
	if err != nil {
		log.Warn().Err(err).Int("contracts", len(contracts)).Msg("token prices unavailable")
		return map[string]float64{}
	}
	return prices
}

func cacheGet[V any](ctx context.Context, c cache.Cache[V], key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return zero, false
	}
	return v, ok
}

func cacheSet[V any](ctx context.Context, c cache.Cache[V], key string, v V, ttl time.Duration) {
	if c == nil {
		return
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
