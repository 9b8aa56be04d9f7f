package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wardstockhq/wardstock-backend/pkg/config"
	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
)

const responseBodyReadLimit int64 = 1024

// Result is the outcome of one mutation command. Pending means the command
// was submitted in fire-and-forget mode: the true outcome is unknown until
// the next read, and the caller must reconcile rather than assume success.
type Result struct {
	Success bool   `json:"success"`
	Pending bool   `json:"pending,omitempty"`
	Message string `json:"message"`
}

// Client is the write gateway to the command endpoint. Every mutation is a
// POST of a tagged command object; the endpoint owns stock validation and
// the audit-row append.
type Client struct {
	httpClient *http.Client
	endpoint   string
	confirmed  bool
	logg       *logger.Logger
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

// NewClient builds the write gateway from configuration.
func NewClient(cfg config.ScriptConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "command endpoint url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		confirmed:  cfg.Confirmed,
		logg:       logg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Confirmed reports whether the client reads back the endpoint's result.
func (c *Client) Confirmed() bool {
	return c.confirmed
}

// AddProduct creates a catalog entry.
func (c *Client) AddProduct(ctx context.Context, payload ProductPayload, userName string) (Result, error) {
	if err := requireUser(userName); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(payload.Code) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "product code is required")
	}
	return c.send(ctx, productCommand{
		Action:         enums.CommandActionAddProduct,
		UserName:       userName,
		ProductPayload: payload,
	})
}

// UpdateProduct rewrites the catalog entry identified by payload.Code.
func (c *Client) UpdateProduct(ctx context.Context, payload ProductPayload, userName string) (Result, error) {
	if err := requireUser(userName); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(payload.Code) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "product code is required")
	}
	return c.send(ctx, productCommand{
		Action:         enums.CommandActionUpdateProduct,
		UserName:       userName,
		ProductPayload: payload,
	})
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, productCode, userName string) (Result, error) {
	if err := requireUser(userName); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(productCode) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "product code is required")
	}
	return c.send(ctx, deleteCommand{
		Action:      enums.CommandActionDeleteProduct,
		UserName:    userName,
		ProductCode: productCode,
	})
}

// Withdraw moves stock out. The endpoint rejects quantities above current
// stock with a descriptive message.
func (c *Client) Withdraw(ctx context.Context, payload StockPayload, userName string) (Result, error) {
	return c.stockCommand(ctx, enums.CommandActionWithdraw, payload, userName)
}

// Receive moves stock in.
func (c *Client) Receive(ctx context.Context, payload StockPayload, userName string) (Result, error) {
	return c.stockCommand(ctx, enums.CommandActionReceive, payload, userName)
}

// Return moves previously withdrawn stock back in.
func (c *Client) Return(ctx context.Context, payload StockPayload, userName string) (Result, error) {
	return c.stockCommand(ctx, enums.CommandActionReturn, payload, userName)
}

func (c *Client) stockCommand(ctx context.Context, action enums.CommandAction, payload StockPayload, userName string) (Result, error) {
	if err := requireUser(userName); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(payload.ProductCode) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "product code is required")
	}
	if payload.Quantity <= 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return c.send(ctx, stockCommand{
		Action:       action,
		UserName:     userName,
		StockPayload: payload,
	})
}

func requireUser(userName string) error {
	if strings.TrimSpace(userName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "acting user name is required")
	}
	return nil
}

func (c *Client) send(ctx context.Context, command any) (Result, error) {
	if c == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeConfiguration, "script client not configured")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode command")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build command request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "submit command")
	}
	defer func() { _ = resp.Body.Close() }()

	if !c.confirmed {
		// Fire-and-forget: the outcome is opaque. Pending obliges the
		// caller to reconcile with a follow-up read.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
		return Result{Pending: true, Message: "command submitted, awaiting reconciliation"}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeServer, cause, "command rejected")
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeServer, err, "decode command result")
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = "command failed"
		}
		return result, pkgerrors.New(pkgerrors.CodeApplication, message)
	}
	return result, nil
}
