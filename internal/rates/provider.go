// Package rates talks to the external exchange-rate provider and holds
// the pure statistics over stored rate series.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/errs"
)

// IProvider returns current rates against a base currency. Implementations
// may fail or time out; callers treat every failure as retryable and never
// mutate previously stored rates on failure.
//
//go:generate mockery --name IProvider
type IProvider interface {
	Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error)
	Name() string
}

// Client for exchangerate-api.com style endpoints:
// GET {base-url}/{BASE} -> {"base": "USD", "rates": {"EUR": 0.92, ...}}
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Name() string {
	return "exchangerate-api"
}

// Latest fetches the provider's current rates for base. Transient
// failures retry with exponential backoff, bounded by the request
// context and the client timeout.
func (c *Client) Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	var rates map[string]decimal.Decimal

	operation := func() error {
		fetched, err := c.fetch(ctx, base)
		if err != nil {
			c.logger.WithError(err).Warn("RateProvider.Latest.retrying")
			return err
		}
		rates = fetched
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, errs.Wrap(errs.KindExternal, "rate provider unavailable", err)
	}
	return rates, nil
}

func (c *Client) fetch(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var payload struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("provider returned no rates for %s", base)
	}

	rates := make(map[string]decimal.Decimal, len(payload.Rates))
	for currency, value := range payload.Rates {
		rates[currency] = decimal.NewFromFloat(value)
	}
	return rates, nil
}
