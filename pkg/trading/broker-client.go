package trading

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var requestDurations = prometheus.NewSummaryVec(prometheus.SummaryOpts{
	Name:       "trading_request_duration_seconds",
	Help:       "Backend request latencies by action",
	Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
}, []string{"backend", "action"})

func init() {
	prometheus.MustRegister(requestDurations)
}

// brokerClient is the uniform client produced by NewClient. It validates
// requests against the adapter's capabilities before they reach the wire
// and caches asset metadata per canonical symbol.
type brokerClient struct {
	logger  *zap.Logger
	backend string
	adapter Adapter
	caps    Capabilities
	engine  *streamEngine

	assetsMx sync.RWMutex
	assets   map[string]*Asset
}

func newBrokerClient(logger *zap.Logger, cfg Config, adapter Adapter) *brokerClient {
	return &brokerClient{
		logger:  logger,
		backend: cfg.Backend,
		adapter: adapter,
		caps:    adapter.Capabilities(),
		engine:  newStreamEngine(logger, cfg.Backend, adapter, cfg.StreamRetries),
		assets:  make(map[string]*Asset),
	}
}

func (c *brokerClient) Capabilities() Capabilities {
	return c.caps
}

func (c *brokerClient) CreateOrder(ctx context.Context, order Order) (*OrderAck, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if order.ClientOrderID != "" && !c.caps.IdempotentOrders {
		return nil, &ValidationError{Field: "clientOrderId", Reason: "backend " + c.backend + " does not support client order ids"}
	}
	if !c.caps.FractionalOrders && !order.Quantity.IsInteger() {
		return nil, &ValidationError{Field: "quantity", Reason: "backend " + c.backend + " does not support fractional quantities"}
	}

	order.Symbol = strings.ToUpper(order.Symbol)
	if asset := c.cachedAsset(order.Symbol); asset != nil {
		if !asset.Tradable {
			return nil, &ValidationError{Field: "symbol", Reason: "asset " + order.Symbol + " is not tradable"}
		}
		if !asset.Fractionable && !order.Quantity.IsInteger() {
			return nil, &ValidationError{Field: "quantity", Reason: "asset " + order.Symbol + " is not fractionable"}
		}
	}

	started := time.Now()
	ack, err := c.adapter.SubmitOrder(ctx, order)
	requestDurations.WithLabelValues(c.backend, "create_order").Observe(time.Since(started).Seconds())
	if err != nil {
		c.logger.Warn("order rejected",
			zap.String("backend", c.backend),
			zap.String("symbol", order.Symbol),
			zap.Stringer("side", order.Side),
			zap.Error(err))
		return nil, err
	}

	c.logger.Info("order submitted",
		zap.String("backend", c.backend),
		zap.String("order", ack.OrderID),
		zap.String("symbol", ack.Symbol),
		zap.Stringer("side", order.Side),
		zap.Stringer("status", ack.Status))
	return ack, nil
}

func (c *brokerClient) GetAsset(ctx context.Context, symbol string) (*Asset, error) {
	if symbol == "" {
		return nil, &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	symbol = strings.ToUpper(symbol)

	started := time.Now()
	asset, err := c.adapter.LookupAsset(ctx, symbol)
	requestDurations.WithLabelValues(c.backend, "get_asset").Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}

	c.assetsMx.Lock()
	c.assets[asset.Symbol] = asset
	c.assetsMx.Unlock()
	return asset, nil
}

func (c *brokerClient) SubscribeToData(ctx context.Context, symbol string) (*Subscription, error) {
	if symbol == "" {
		return nil, &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	return c.engine.subscribe(ctx, strings.ToUpper(symbol))
}

// Close releases the stream engine and the adapter. Outstanding
// subscription handles observe closed update channels.
func (c *brokerClient) Close() error {
	return multierr.Append(c.engine.stop(), c.adapter.Close())
}

func (c *brokerClient) cachedAsset(symbol string) *Asset {
	c.assetsMx.RLock()
	defer c.assetsMx.RUnlock()
	return c.assets[symbol]
}
