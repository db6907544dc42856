// Package fx is the HTTP client for the remote currency conversion service.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/shared"
)

const convertPath = "/v1/convert"

// convertResponse is the body returned by GET /v1/convert
type convertResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Value  decimal.Decimal `json:"value"`
}

// Client converts amounts between currencies. One instance is shared by the whole process.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

var _ money.Converter = (*Client)(nil)

func NewClient(logger *slog.Logger, cfg *config.FXConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid FX base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid FX base URL: %q", cfg.BaseURL)
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.MaxIdleConns,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		logger: logger.With("component", "fx_client"),
	}, nil
}

// Convert asks the service for the value of amount in the target currency.
// Every failure is reported as ConversionUnavailable and is not retried.
func (c *Client) Convert(ctx context.Context, from, to money.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	u := *c.baseURL
	u.Path = u.Path + convertPath
	q := u.Query()
	q.Set("from", string(from))
	q.Set("to", string(to))
	q.Set("amount", amount.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return decimal.Zero, unavailable(from, to, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("FX request failed", "from", string(from), "to", string(to), "error", err)
		return decimal.Zero, unavailable(from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("FX service returned an error",
			"from", string(from),
			"to", string(to),
			"status_code", resp.StatusCode,
			"body", string(body))
		return decimal.Zero, unavailable(from, to, fmt.Errorf("HTTP error %d", resp.StatusCode))
	}

	var body convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, unavailable(from, to, fmt.Errorf("parsing JSON response failed: %w", err))
	}
	if body.Value.IsNegative() {
		return decimal.Zero, unavailable(from, to, fmt.Errorf("negative converted value %s", body.Value))
	}

	return body.Value, nil
}

func unavailable(from, to money.Currency, err error) error {
	return shared.WrapError(shared.KindConversionUnavailable,
		fmt.Sprintf("cannot convert %s to %s", from, to), err)
}
