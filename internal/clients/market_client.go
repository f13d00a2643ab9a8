package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"brokerage-api/internal/models"
	"brokerage-api/pkg/cache"
)

// MarketClient fetches quotes from the market data service. Quotes are
// cached in Redis for a short TTL to keep submit/execute latency down.
type MarketClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *cache.RedisClient
	quoteTTL   time.Duration
}

type MarketClientConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	QuoteTTL time.Duration
}

type quoteResponse struct {
	Quote     *quoteData `json:"quote"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

type quoteData struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	TradingStatus string          `json:"trading_status"`
	LastUpdated   time.Time       `json:"last_updated"`
}

func NewMarketClient(config *MarketClientConfig, redisCache *cache.RedisClient) *MarketClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &MarketClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:    redisCache,
		quoteTTL: config.QuoteTTL,
	}
}

// GetQuote returns the current quote for a symbol, served from cache when fresh
func (c *MarketClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	cacheKey := fmt.Sprintf("quote:%s", symbol)

	if c.cache != nil {
		var cached models.Quote
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	url := fmt.Sprintf("%s/api/market/quote/%s", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("unknown symbol %s", symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market service returned status %d", resp.StatusCode)
	}

	var quoteResp quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if quoteResp.Error != "" {
		return nil, fmt.Errorf("market service error: %s", quoteResp.Error)
	}

	if quoteResp.Quote == nil {
		return nil, fmt.Errorf("quote not available for symbol %s", symbol)
	}

	quote := &models.Quote{
		Symbol:        quoteResp.Quote.Symbol,
		Price:         quoteResp.Quote.Price,
		TradingStatus: quoteResp.Quote.TradingStatus,
		LastUpdated:   quoteResp.Quote.LastUpdated,
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, quote, c.quoteTTL); err != nil {
			logrus.WithField("symbol", symbol).Warnf("Failed to cache quote: %v", err)
		}
	}

	return quote, nil
}

func (c *MarketClient) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market service health check failed with status %d", resp.StatusCode)
	}

	return nil
}
