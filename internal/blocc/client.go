package blocc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	forkStatusPath       = "/forkStatus"
	approvedReadingsPath = "/transaction/approvedTempReadings"
	transactionsPath     = "/transaction/sensorChaincodeTransactions"
)

// ClientOptions parameterise the backend client.
type ClientOptions struct {
	APIRoot   string
	Timeout   time.Duration
	UserAgent string
	// Now anchors relative queries; defaults to time.Now.
	Now func() time.Time
}

// Client reads telemetry from the BLOCC backend API.
type Client struct {
	opts    ClientOptions
	logger  zerolog.Logger
	client  *http.Client
	apiRoot string
	now     func() time.Time
}

// NewClient constructs a backend client.
func NewClient(opts ClientOptions, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "blocc_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		apiRoot: strings.TrimRight(opts.APIRoot, "/"),
		now:     now,
	}
}

// ForkStatus asks whether a container's chain has forked.
func (c *Client) ForkStatus(ctx context.Context, q ForkQuery) (ForkStatus, error) {
	body, err := c.get(ctx, forkStatusPath, q.Params())
	if err != nil {
		return "", err
	}
	return DecodeForkStatus(body)
}

// ApprovedReadings fetches the approved readings of the query's window.
func (c *Client) ApprovedReadings(ctx context.Context, q SeriesQuery) ([]Reading, error) {
	body, err := c.get(ctx, approvedReadingsPath, q.Params(c.now()))
	if err != nil {
		return nil, err
	}
	var readings []Reading
	if err := decodeJSON(body, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// Transactions fetches the sensor chaincode transactions matching f.
func (c *Client) Transactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	body, err := c.get(ctx, transactionsPath, f.Params())
	if err != nil {
		return nil, err
	}
	var txs []Transaction
	if err := decodeJSON(body, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiRoot == "" {
		return nil, errors.New("api root not configured")
	}

	endpoint := c.apiRoot + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "blocc-dashboard/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	c.logger.Debug().
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Msg("backend responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}
	return payload, nil
}

func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
