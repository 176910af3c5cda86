package provider

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/estensen/wallet-wrapped/internal/metrics"
	"github.com/estensen/wallet-wrapped/internal/models"
)

// Fallback is a Provider that asks each provider in order and returns the
// first non-empty answer. An empty answer from every provider is an empty
// result, not an error; only when every provider failed is an error returned.
type Fallback struct {
	providers []Provider
}

func NewFallback(providers ...Provider) *Fallback {
	return &Fallback{providers: providers}
}

func (f *Fallback) Name() string {
	return "fallback"
}

func (f *Fallback) Transactions(ctx context.Context, address string) ([]models.CanonicalTransaction, error) {
	return firstNonEmpty(ctx, f.providers, KindTransactions, func(p Provider) ([]models.CanonicalTransaction, error) {
		return p.Transactions(ctx, address)
	})
}

func (f *Fallback) TokenTransfers(ctx context.Context, address string) ([]models.TokenTransfer, error) {
	return firstNonEmpty(ctx, f.providers, KindTokens, func(p Provider) ([]models.TokenTransfer, error) {
		return p.TokenTransfers(ctx, address)
	})
}

func (f *Fallback) NFTTransfers(ctx context.Context, address string) ([]models.NFTTransfer, error) {
	return firstNonEmpty(ctx, f.providers, KindNFTs, func(p Provider) ([]models.NFTTransfer, error) {
		return p.NFTTransfers(ctx, address)
	})
}

func firstNonEmpty[T any](ctx context.Context, providers []Provider, kind Kind, call func(Provider) ([]T, error)) ([]T, error) {
	var (
		errs     []error
		answered bool
	)
	for i, p := range providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			metrics.ProviderFallbacks.WithLabelValues(string(kind)).Inc()
		}

		items, err := call(p)
		record(p.Name(), kind, len(items), err)
		switch {
		case errors.Is(err, ErrUnsupported):
			continue
		case err != nil:
			log.Warn().Err(err).Str("provider", p.Name()).Str("kind", string(kind)).Msg("provider failed, trying next")
			errs = append(errs, err)
			continue
		}
		answered = true
		if len(items) > 0 {
			return items, nil
		}
	}

	if !answered && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return []T{}, nil
}

// Activity asks each provider that has a summary lookup in order. Providers
// without one are skipped; ErrUnsupported means none of them had one.
func (f *Fallback) Activity(ctx context.Context, address string) (Activity, error) {
	var errs []error
	for _, p := range f.providers {
		src, ok := p.(ActivitySource)
		if !ok {
			continue
		}
		activity, err := src.Activity(ctx, address)
		record(p.Name(), KindCounters, 1, err)
		switch {
		case errors.Is(err, ErrUnsupported):
			continue
		case err != nil:
			log.Warn().Err(err).Str("provider", p.Name()).Msg("activity lookup failed, trying next")
			errs = append(errs, err)
			continue
		}
		return activity, nil
	}
	if len(errs) > 0 {
		return Activity{}, errors.Join(errs...)
	}
	return Activity{}, ErrUnsupported
}
