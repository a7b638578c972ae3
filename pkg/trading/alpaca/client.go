package alpaca

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/danmandel/trading-client/pkg/trading"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	liveAPIURL  = "https://api.alpaca.markets"
	paperAPIURL = "https://paper-api.alpaca.markets"

	liveStreamURL    = "wss://stream.data.alpaca.markets/v2/iex"
	sandboxStreamURL = "wss://stream.data.sandbox.alpaca.markets/v2/iex"

	headerKeyID  = "APCA-API-KEY-ID"
	headerSecret = "APCA-API-SECRET-KEY"

	requestTimeout = 10 * time.Second
)

func init() {
	trading.RegisterBackend("alpaca", New)
}

// Client talks to the Alpaca v2 REST API for orders and assets, and to the
// market data websocket for subscriptions.
type Client struct {
	logger    *zap.Logger
	http      *http.Client
	baseURL   string
	streamURL string
	key       string
	secret    string
}

// New builds the adapter from configuration. Paper selects the paper-trading
// environments; Endpoint overrides both the REST base and, scheme switched
// to ws, the stream endpoint, which is how tests point it at local servers.
func New(logger *zap.Logger, cfg trading.Config) (trading.Adapter, error) {
	if cfg.Key == "" {
		return nil, &trading.ConfigError{Field: "key", Reason: "alpaca requires an api key"}
	}
	if cfg.Secret == "" {
		return nil, &trading.ConfigError{Field: "secret", Reason: "alpaca requires an api secret"}
	}

	baseURL, streamURL := liveAPIURL, liveStreamURL
	if cfg.Paper {
		baseURL, streamURL = paperAPIURL, sandboxStreamURL
	}
	if cfg.Endpoint != "" {
		baseURL = strings.TrimSuffix(cfg.Endpoint, "/")
		streamURL = "ws" + strings.TrimPrefix(baseURL, "http") + "/stream"
	}

	logger.Info("alpaca: created",
		zap.String("endpoint", baseURL),
		zap.Bool("paper", cfg.Paper))
	return &Client{
		logger:    logger,
		http:      &http.Client{Timeout: requestTimeout},
		baseURL:   baseURL,
		streamURL: streamURL,
		key:       cfg.Key,
		secret:    cfg.Secret,
	}, nil
}

func (c *Client) Capabilities() trading.Capabilities {
	return trading.Capabilities{
		IdempotentOrders: true,
		FractionalOrders: true,
	}
}

func (c *Client) SubmitOrder(ctx context.Context, order trading.Order) (*trading.OrderAck, error) {
	payload, err := json.Marshal(newOrderRequest(order))
	if err != nil {
		return nil, errors.WithMessage(err, "alpaca: marshal order")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.WithMessage(err, "alpaca: build order request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, &trading.TransportError{Op: "submit order " + order.Symbol, Err: err}
	}
	if status != http.StatusOK {
		return nil, parseAPIError(status, body)
	}

	var wire orderResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &trading.TransportError{Op: "decode order response", Err: err}
	}
	ack, err := wire.toAck()
	if err != nil {
		return nil, &trading.TransportError{Op: "decode order response", Err: err}
	}

	c.logger.Debug("alpaca: order accepted",
		zap.String("order", ack.OrderID),
		zap.String("symbol", ack.Symbol),
		zap.Stringer("status", ack.Status))
	return ack, nil
}

func (c *Client) LookupAsset(ctx context.Context, symbol string) (*trading.Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/assets/"+symbol, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "alpaca: build asset request")
	}

	body, status, err := c.do(req)
	if err != nil {
		return nil, &trading.TransportError{Op: "lookup asset " + symbol, Err: err}
	}
	if status == http.StatusNotFound {
		return nil, &trading.NotFoundError{Symbol: symbol}
	}
	if status != http.StatusOK {
		return nil, parseAPIError(status, body)
	}

	var wire assetResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &trading.TransportError{Op: "decode asset response", Err: err}
	}
	return wire.toAsset(), nil
}

func (c *Client) OpenStream(ctx context.Context) (trading.Stream, error) {
	return openStream(ctx, c.logger, c.streamURL, c.key, c.secret)
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	req.Header.Set(headerKeyID, c.key)
	req.Header.Set(headerSecret, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
