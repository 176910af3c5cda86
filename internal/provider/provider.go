// Package provider fetches raw wallet history from upstream indexers and
// hands it to the parser.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/estensen/wallet-wrapped/internal/metrics"
	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/parser"
)

var (
	ErrUnsupported = errors.New("provider does not serve this kind")
	ErrHTTPStatus  = errors.New("unexpected HTTP status")
)

type Kind string

const (
	KindTransactions Kind = "transactions"
	KindTokens       Kind = "tokens"
	KindNFTs         Kind = "nfts"
	KindCounters     Kind = "counters"
	KindFirstTx      Kind = "first_tx"
)

// maxBodyBytes caps a single upstream response.
const maxBodyBytes = 32 << 20

// DefaultMaxPages bounds a listing when Config.MaxPages is unset.
const DefaultMaxPages = 20

type Provider interface {
	Name() string
	Transactions(ctx context.Context, address string) ([]models.CanonicalTransaction, error)
	TokenTransfers(ctx context.Context, address string) ([]models.TokenTransfer, error)
	NFTTransfers(ctx context.Context, address string) ([]models.NFTTransfer, error)
}

// Config describes one upstream. Templates contain an {address} placeholder
// and, optionally, {key}. A kind without a template is unsupported.
type Config struct {
	Name      string
	APIKey    string
	Templates map[Kind]string
	// RPS is the request budget; zero disables limiting.
	RPS      float64
	Burst    int
	Timeout  time.Duration
	MaxPages int
}

// HTTPProvider is a Provider for JSON indexer APIs. Every envelope the
// parser recognizes is accepted, so one type covers Blockscout and Covalent.
type HTTPProvider struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPProvider(cfg Config) *HTTPProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	p := &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return p
}

// NewBlockscout serves all three kinds from a Blockscout v2 API, following
// at most maxPages pages per listing. The lifetime counters and the oldest
// transaction come from dedicated endpoints.
func NewBlockscout(baseURL string, rps float64, maxPages int) *HTTPProvider {
	base := strings.TrimRight(baseURL, "/")
	return NewHTTPProvider(Config{
		Name: "blockscout",
		Templates: map[Kind]string{
			KindTransactions: base + "/api/v2/addresses/{address}/transactions",
			KindTokens:       base + "/api/v2/addresses/{address}/token-transfers?type=ERC-20",
			KindNFTs:         base + "/api/v2/addresses/{address}/token-transfers?type=ERC-721,ERC-1155",
			KindCounters:     base + "/api/v2/addresses/{address}/counters",
			KindFirstTx:      base + "/api?module=account&action=txlist&address={address}&sort=asc&page=1&offset=1",
		},
		RPS:      rps,
		Burst:    1,
		MaxPages: maxPages,
	})
}

// NewCovalent serves transactions from the Covalent (GoldRush) API.
func NewCovalent(baseURL, apiKey string, rps float64) *HTTPProvider {
	base := strings.TrimRight(baseURL, "/")
	return NewHTTPProvider(Config{
		Name:   "covalent",
		APIKey: apiKey,
		Templates: map[Kind]string{
			KindTransactions: base + "/v1/base-mainnet/address/{address}/transactions_v3/?key={key}",
		},
		RPS:   rps,
		Burst: 1,
	})
}

func (p *HTTPProvider) Name() string {
	return p.cfg.Name
}

func (p *HTTPProvider) Transactions(ctx context.Context, address string) ([]models.CanonicalTransaction, error) {
	return collect(ctx, p, KindTransactions, address, parser.NormalizeJSON)
}

func (p *HTTPProvider) TokenTransfers(ctx context.Context, address string) ([]models.TokenTransfer, error) {
	return collect(ctx, p, KindTokens, address, parser.NormalizeTokenTransfersJSON)
}

func (p *HTTPProvider) NFTTransfers(ctx context.Context, address string) ([]models.NFTTransfer, error) {
	return collect(ctx, p, KindNFTs, address, parser.NormalizeNFTTransfersJSON)
}

// collect walks a paginated listing. Each Blockscout page carries a
// next_page_params object whose fields become the query of the following
// request; a null or missing object ends the listing.
func collect[T any](ctx context.Context, p *HTTPProvider, kind Kind, address string, parse func([]byte) ([]T, error)) ([]T, error) {
	first, err := p.endpoint(kind, address)
	if err != nil {
		return nil, err
	}

	var all []T
	next := first
	for page := 1; ; page++ {
		body, err := p.get(ctx, kind, next)
		if err != nil {
			return nil, err
		}
		items, err := parse(body)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		params := nextPageParams(body)
		if len(params) == 0 {
			return all, nil
		}
		if page >= p.cfg.MaxPages {
			log.Warn().
				Str("provider", p.cfg.Name).
				Str("kind", string(kind)).
				Int("pages", page).
				Int("items", len(all)).
				Msg("page limit reached, listing truncated")
			return all, nil
		}
		if next, err = withQuery(first, params); err != nil {
			return nil, err
		}
	}
}

func nextPageParams(body []byte) map[string]any {
	var page struct {
		Next map[string]any `json:"next_page_params"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&page); err != nil {
		return nil
	}
	return page.Next
}

func withQuery(endpoint string, params map[string]any) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse next page URL: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		if v == nil {
			continue
		}
		q.Set(k, fmt.Sprint(v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Activity is the lifetime summary of an address as reported by the
// indexer itself. Unknown parts are nil.
type Activity struct {
	TxCount     *int
	FirstTxDate *time.Time
}

// ActivitySource is implemented by providers with a dedicated summary
// lookup that does not depend on how much history was paged in.
type ActivitySource interface {
	Activity(ctx context.Context, address string) (Activity, error)
}

// Activity counts transactions and token transfers together, matching the
// locally computed total. A failed oldest-transaction lookup only drops the
// first date.
func (p *HTTPProvider) Activity(ctx context.Context, address string) (Activity, error) {
	body, err := p.fetch(ctx, KindCounters, address)
	if err != nil {
		return Activity{}, err
	}
	var counters struct {
		Transactions   string `json:"transactions_count"`
		TokenTransfers string `json:"token_transfers_count"`
	}
	if err := json.Unmarshal(body, &counters); err != nil {
		return Activity{}, fmt.Errorf("decode %s counters: %w", p.cfg.Name, err)
	}
	txs, err := parseCount(counters.Transactions)
	if err != nil {
		return Activity{}, fmt.Errorf("%s transactions_count: %w", p.cfg.Name, err)
	}
	tokens, err := parseCount(counters.TokenTransfers)
	if err != nil {
		return Activity{}, fmt.Errorf("%s token_transfers_count: %w", p.cfg.Name, err)
	}
	total := txs + tokens
	activity := Activity{TxCount: &total}

	first, err := p.firstTxDate(ctx, address)
	switch {
	case errors.Is(err, ErrUnsupported):
	case err != nil:
		log.Warn().Err(err).Str("provider", p.cfg.Name).Str("address", address).Msg("oldest transaction lookup failed")
	default:
		activity.FirstTxDate = first
	}
	return activity, nil
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// firstTxDate reads the oldest transaction from the Etherscan-compatible
// txlist endpoint. An address without transactions yields nil.
func (p *HTTPProvider) firstTxDate(ctx context.Context, address string) (*time.Time, error) {
	body, err := p.fetch(ctx, KindFirstTx, address)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s txlist: %w", p.cfg.Name, err)
	}
	var txs []struct {
		TimeStamp string `json:"timeStamp"`
	}
	// "No transactions found" comes back as a string result.
	if err := json.Unmarshal(resp.Result, &txs); err != nil || len(txs) == 0 {
		return nil, nil
	}
	seconds, err := strconv.ParseInt(txs[0].TimeStamp, 10, 64)
	if err != nil || !parser.IsValidTimestamp(seconds) {
		return nil, fmt.Errorf("%s txlist: bad timeStamp %q", p.cfg.Name, txs[0].TimeStamp)
	}
	first := time.Unix(seconds, 0).UTC()
	return &first, nil
}

func (p *HTTPProvider) endpoint(kind Kind, address string) (string, error) {
	tmpl, ok := p.cfg.Templates[kind]
	if !ok || tmpl == "" {
		return "", fmt.Errorf("%w: %s %s", ErrUnsupported, p.cfg.Name, kind)
	}
	r := strings.NewReplacer("{address}", url.PathEscape(address), "{key}", url.QueryEscape(p.cfg.APIKey))
	return r.Replace(tmpl), nil
}

func (p *HTTPProvider) fetch(ctx context.Context, kind Kind, address string) ([]byte, error) {
	endpoint, err := p.endpoint(kind, address)
	if err != nil {
		return nil, err
	}
	return p.get(ctx, kind, endpoint)
}

func (p *HTTPProvider) get(ctx context.Context, kind Kind, endpoint string) ([]byte, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s rate limit: %w", p.cfg.Name, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", p.cfg.Name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", p.cfg.Name, kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrHTTPStatus, p.cfg.Name, kind, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", p.cfg.Name, kind, err)
	}
	return body, nil
}

func record(provider string, kind Kind, n int, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrUnsupported):
		outcome = "unsupported"
	case err != nil:
		outcome = "error"
	case n == 0:
		outcome = "empty"
	}
	metrics.ProviderRequests.WithLabelValues(provider, string(kind), outcome).Inc()
}
