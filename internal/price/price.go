package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrHTTPResponse      = errors.New("error in HTTP response")
	ErrInvalidResponse   = errors.New("invalid CoinGecko response")
	ErrMissingMarketData = errors.New("missing market data in CoinGecko response")
	ErrMissingUSDPrice   = errors.New("missing USD price in CoinGecko response")
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	// Platform is the CoinGecko asset platform id for Base.
	Platform  = "base"
	ethCoinID = "ethereum"

	// maxContractsPerRequest keeps token price URLs under the API's limit.
	maxContractsPerRequest = 50
)

// Oracle resolves USD prices.
type Oracle interface {
	GetTokenPrices(ctx context.Context, contracts []string) (map[string]float64, error)
	GetETHPrice(ctx context.Context) (float64, error)
	GetHistoricalPrice(ctx context.Context, coinID string, date time.Time) (float64, error)
}

// CoinGeckoAPI implements Oracle using the CoinGecko API.
type CoinGeckoAPI struct {
	baseURL   string
	fetchFunc func(ctx context.Context, endpoint string) (*http.Response, error)
}

func NewCoinGeckoAPI(baseURL string) *CoinGeckoAPI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return &CoinGeckoAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetchFunc: func(ctx context.Context, endpoint string) (*http.Response, error) {
			return fetchResponse(ctx, client, endpoint)
		},
	}
}

// GetTokenPrices returns USD prices keyed by lower-case contract address.
// Contracts CoinGecko does not know are absent from the map.
func (c *CoinGeckoAPI) GetTokenPrices(ctx context.Context, contracts []string) (map[string]float64, error) {
	prices := make(map[string]float64)
	unique := dedupeLower(contracts)

	for start := 0; start < len(unique); start += maxContractsPerRequest {
		end := min(start+maxContractsPerRequest, len(unique))
		batch, err := c.simplePrice(ctx, buildTokenPriceURL(c.baseURL, unique[start:end]))
		if err != nil {
			return nil, fmt.Errorf("error fetching token prices: %w", err)
		}
		for contract, usd := range batch {
			prices[strings.ToLower(contract)] = usd
		}
	}
	return prices, nil
}

// GetETHPrice returns the spot ETH/USD price.
func (c *CoinGeckoAPI) GetETHPrice(ctx context.Context) (float64, error) {
	prices, err := c.simplePrice(ctx, fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, ethCoinID))
	if err != nil {
		return 0, fmt.Errorf("error fetching ETH price: %w", err)
	}
	usd, ok := prices[ethCoinID]
	if !ok || usd <= 0 {
		return 0, fmt.Errorf("%w: ethereum", ErrMissingUSDPrice)
	}
	return usd, nil
}

// ETHPriceForYear returns the closing ETH price of a past year, or the spot
// price for the current one.
func ETHPriceForYear(ctx context.Context, oracle Oracle, year int, now time.Time) (float64, error) {
	if year < now.Year() {
		return oracle.GetHistoricalPrice(ctx, ethCoinID, time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))
	}
	return oracle.GetETHPrice(ctx)
}

// GetHistoricalPrice fetches the historical USD price of a coin for a given date.
// A coin without market data on that date is priced at 0.
func (c *CoinGeckoAPI) GetHistoricalPrice(ctx context.Context, coinID string, date time.Time) (float64, error) {
	resp, err := c.fetchFunc(ctx, buildHistoryURL(c.baseURL, coinID, date))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	price, err := parsePriceFromResponse(resp)
	if err != nil {
		if errors.Is(err, ErrMissingMarketData) {
			log.Warn().Str("coin", coinID).Time("date", date).Msg("no market data for coin")
			return 0, nil
		}
		return 0, err
	}
	return price, nil
}

// simplePrice decodes the {"<id>": {"usd": <price>}} shape shared by the
// simple price endpoints.
func (c *CoinGeckoAPI) simplePrice(ctx context.Context, endpoint string) (map[string]float64, error) {
	resp, err := c.fetchFunc(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	prices := make(map[string]float64, len(result))
	for id, quote := range result {
		if usd, ok := quote["usd"]; ok && usd > 0 {
			prices[id] = usd
		}
	}
	return prices, nil
}

func buildTokenPriceURL(baseURL string, contracts []string) string {
	return fmt.Sprintf("%s/simple/token_price/%s?contract_addresses=%s&vs_currencies=usd",
		baseURL, Platform, url.QueryEscape(strings.Join(contracts, ",")))
}

func buildHistoryURL(baseURL, coinID string, date time.Time) string {
	return fmt.Sprintf("%s/coins/%s/history?date=%s", baseURL, coinID, date.Format("02-01-2006"))
}

func dedupeLower(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func fetchResponse(ctx context.Context, client *http.Client, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching price from CoinGecko: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status code %d", ErrHTTPResponse, resp.StatusCode)
	}
	return resp, nil
}

// parsePriceFromResponse extracts the USD price from a coin history response.
func parsePriceFromResponse(resp *http.Response) (float64, error) {
	if resp.Body == nil {
		return 0, fmt.Errorf("%w: response body is empty", ErrInvalidResponse)
	}

	var result struct {
		ID         string `json:"id"`
		MarketData *struct {
			CurrentPrice map[string]any `json:"current_price"`
		} `json:"market_data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: error decoding response body", ErrInvalidResponse)
	}

	if result.MarketData == nil {
		return 0, fmt.Errorf("%w: market_data field not found", ErrMissingMarketData)
	}
	if result.MarketData.CurrentPrice == nil {
		return 0, fmt.Errorf("%w: current_price field not found", ErrMissingMarketData)
	}

	usdPrice, ok := result.MarketData.CurrentPrice["usd"].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: USD price not found or invalid", ErrMissingUSDPrice)
	}
	if usdPrice <= 0 {
		return 0, fmt.Errorf("%w: USD price must be positive", ErrMissingUSDPrice)
	}
	return usdPrice, nil
}
