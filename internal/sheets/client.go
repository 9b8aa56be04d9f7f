package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/wardstockhq/wardstock-backend/pkg/config"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

const (
	defaultBaseURL              = "https://sheets.googleapis.com/v4/spreadsheets"
	responseBodyReadLimit int64 = 1024
	retryBaseDelay              = 250 * time.Millisecond
)

// Client is the read-only gateway to the spreadsheet values API. Calls are
// idempotent and safe to issue concurrently.
type Client struct {
	httpClient        *http.Client
	baseURL           string
	spreadsheetID     string
	apiKey            string
	productsRange     string
	transactionsRange string
	allowListRange    string
	maxRetries        int
	logg              *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured values-API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the read gateway from configuration.
func NewClient(cfg config.SheetsConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "spreadsheet id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient:        &http.Client{Timeout: timeout},
		baseURL:           defaultBaseURL,
		spreadsheetID:     strings.TrimSpace(cfg.SpreadsheetID),
		apiKey:            strings.TrimSpace(cfg.APIKey),
		productsRange:     cfg.ProductsRange,
		transactionsRange: cfg.TransactionsRange,
		allowListRange:    cfg.AllowListRange,
		maxRetries:        cfg.MaxRetries,
		logg:              logg,
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}
	if client.productsRange == "" {
		client.productsRange = "Products!A2:K"
	}
	if client.transactionsRange == "" {
		client.transactionsRange = "Transactions!A2:J"
	}
	if client.allowListRange == "" {
		client.allowListRange = "AllowedUsers!A2:A"
	}
	if client.maxRetries < 0 {
		client.maxRetries = 0
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Values fetches the raw rows for a sheet range. Transport failures and 5xx
// responses are retried with capped backoff before the typed error surfaces.
func (c *Client) Values(ctx context.Context, rangeRef string) ([][]string, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "sheets client not configured")
	}

	target := fmt.Sprintf("%s/%s/values/%s",
		strings.TrimRight(c.baseURL, "/"),
		url.PathEscape(c.spreadsheetID),
		url.PathEscape(rangeRef),
	)
	if c.apiKey != "" {
		query := url.Values{}
		query.Set("key", c.apiKey)
		target += "?" + query.Encode()
	}

	var rows [][]string
	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewFibonacci(retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		fetched, err := c.fetchOnce(ctx, target)
		if err != nil {
			if meta := pkgerrors.MetadataFor(pkgerrors.CodeOf(err)); meta.Retryable {
				if c.logg != nil {
					c.logg.Warn(c.logg.WithField(ctx, "range", rangeRef), "values fetch failed, retrying")
				}
				return retry.RetryableError(err)
			}
			return err
		}
		rows = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) fetchOnce(ctx context.Context, target string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build values request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "execute values request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		code := pkgerrors.CodeServer
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client-side mistakes (bad key, bad range) never heal on retry.
			return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, cause, "values request rejected")
		}
		return nil, pkgerrors.Wrap(code, cause, "values request failed")
	}

	var apiResp struct {
		Values [][]string `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeServer, err, "decode values response")
	}
	return apiResp.Values, nil
}

// FetchProducts reads and maps the full product catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := c.Values(ctx, c.productsRange)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		product := rowToProduct(row)
		if product.Code == "" {
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// FetchTransactions reads the audit log, applies the filter client-side, and
// returns rows sorted newest-first.
func (c *Client) FetchTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	rows, err := c.Values(ctx, c.transactionsRange)
	if err != nil {
		return nil, err
	}
	txs := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, rowToTransaction(row))
	}
	return filter.Apply(txs), nil
}

// FetchAllowList reads the privileged-user names, blank entries trimmed.
func (c *Client) FetchAllowList(ctx context.Context) ([]string, error) {
	rows, err := c.Values(ctx, c.allowListRange)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		name := rowString(row, 0)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
