package trading

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	RegisterBackend("mock", func(logger *zap.Logger, cfg Config) (Adapter, error) {
		mock := NewMockAdapter(logger)
		mock.SetupFixtures()
		return mock, nil
	})
}

// MockAdapter is an in-memory backend for tests and dry runs. Orders fill
// instantly against configured assets, streams replay injected updates, and
// connect attempts can be scripted to fail.
type MockAdapter struct {
	logger *zap.Logger
	caps   Capabilities

	mx           sync.Mutex
	assets       map[string]*Asset
	seenOrderIDs map[ClientOrderID]bool
	submitErr    error
	failConnects int

	submitCalls  uint32
	lookupCalls  uint32
	connectCalls uint32

	streamMx sync.Mutex
	stream   *MockStream
}

func NewMockAdapter(logger *zap.Logger) *MockAdapter {
	adapter := &MockAdapter{
		logger: logger,
		caps: Capabilities{
			IdempotentOrders: true,
			FractionalOrders: true,
		},
		assets:       make(map[string]*Asset),
		seenOrderIDs: make(map[ClientOrderID]bool),
	}
	logger.Info("mock-adapter: created")
	return adapter
}

func (m *MockAdapter) Capabilities() Capabilities {
	return m.caps
}

// SetCapabilities narrows what the mock claims to support, so capability
// gating in the client can be exercised.
func (m *MockAdapter) SetCapabilities(caps Capabilities) {
	m.caps = caps
}

func (m *MockAdapter) AddAsset(asset Asset) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.assets[asset.Symbol] = &asset
}

// FailSubmits makes every subsequent SubmitOrder return err until cleared
// with nil.
func (m *MockAdapter) FailSubmits(err error) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.submitErr = err
}

// FailConnects scripts the next n OpenStream calls to fail.
func (m *MockAdapter) FailConnects(n int) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.failConnects = n
}

func (m *MockAdapter) SubmitCalls() int  { return int(atomic.LoadUint32(&m.submitCalls)) }
func (m *MockAdapter) LookupCalls() int  { return int(atomic.LoadUint32(&m.lookupCalls)) }
func (m *MockAdapter) ConnectCalls() int { return int(atomic.LoadUint32(&m.connectCalls)) }

func (m *MockAdapter) SubmitOrder(ctx context.Context, order Order) (*OrderAck, error) {
	atomic.AddUint32(&m.submitCalls, 1)
	m.mx.Lock()
	defer m.mx.Unlock()

	if m.submitErr != nil {
		return nil, m.submitErr
	}
	asset, ok := m.assets[order.Symbol]
	if !ok {
		return nil, &BackendError{Kind: BackendKindUnknownSymbol, Message: "unknown symbol " + order.Symbol}
	}
	if !asset.Tradable {
		return nil, &BackendError{Kind: BackendKindNotTradable, Message: "asset " + order.Symbol + " is not tradable"}
	}
	if order.ClientOrderID != "" {
		if m.seenOrderIDs[order.ClientOrderID] {
			return nil, &BackendError{Kind: BackendKindDuplicateOrder, Message: "duplicate client order id " + string(order.ClientOrderID)}
		}
		m.seenOrderIDs[order.ClientOrderID] = true
	}

	ack := &OrderAck{
		OrderID:        "mock-" + strconv.FormatUint(getNextMockOrderID(), 10),
		ClientOrderID:  order.ClientOrderID,
		Symbol:         order.Symbol,
		Status:         OrderStatusFilled,
		FilledQuantity: order.Quantity,
		SubmittedAt:    time.Now(),
	}
	if order.Type != OrderTypeMarket {
		ack.Status = OrderStatusNew
		ack.FilledQuantity = decimal.Zero
	}
	m.logger.Info("mock-adapter: order",
		zap.String("order", ack.OrderID),
		zap.String("symbol", ack.Symbol),
		zap.Stringer("status", ack.Status))
	return ack, nil
}

func (m *MockAdapter) LookupAsset(ctx context.Context, symbol string) (*Asset, error) {
	atomic.AddUint32(&m.lookupCalls, 1)
	m.mx.Lock()
	defer m.mx.Unlock()

	asset, ok := m.assets[symbol]
	if !ok {
		return nil, &NotFoundError{Symbol: symbol}
	}
	copied := *asset
	return &copied, nil
}

func (m *MockAdapter) OpenStream(ctx context.Context) (Stream, error) {
	atomic.AddUint32(&m.connectCalls, 1)
	m.mx.Lock()
	if m.failConnects > 0 {
		m.failConnects--
		m.mx.Unlock()
		return nil, errors.New("mock-adapter: connect refused")
	}
	m.mx.Unlock()

	stream := newMockStream()
	m.streamMx.Lock()
	m.stream = stream
	m.streamMx.Unlock()
	return stream, nil
}

// InjectUpdate pushes an update into the currently open stream.
func (m *MockAdapter) InjectUpdate(update Update) bool {
	m.streamMx.Lock()
	stream := m.stream
	m.streamMx.Unlock()
	if stream == nil {
		return false
	}
	return stream.Inject(update)
}

// FailStream breaks the currently open stream with err, as a dropped
// connection would.
func (m *MockAdapter) FailStream(err error) bool {
	m.streamMx.Lock()
	stream := m.stream
	m.streamMx.Unlock()
	if stream == nil {
		return false
	}
	return stream.Fail(err)
}

// StreamClosed reports whether the most recently opened stream was closed.
func (m *MockAdapter) StreamClosed() bool {
	m.streamMx.Lock()
	stream := m.stream
	m.streamMx.Unlock()
	return stream != nil && stream.Closed()
}

// Batches returns every subscription batch the open stream has received.
func (m *MockAdapter) Batches() [][]string {
	m.streamMx.Lock()
	stream := m.stream
	m.streamMx.Unlock()
	if stream == nil {
		return nil
	}
	return stream.Batches()
}

func (m *MockAdapter) Close() error {
	return nil
}

// SetupFixtures loads the standard asset set used across tests: a
// fractionable equity, a crypto pair and a halted symbol.
func (m *MockAdapter) SetupFixtures() {
	m.AddAsset(Asset{
		Symbol:       "AAPL",
		Exchange:     "NASDAQ",
		Class:        AssetClassEquity,
		Status:       AssetStatusActive,
		Tradable:     true,
		Fractionable: true,
	})
	m.AddAsset(Asset{
		Symbol:       "BTCUSD",
		Exchange:     "FTXU",
		Class:        AssetClassCrypto,
		Status:       AssetStatusActive,
		Tradable:     true,
		Fractionable: true,
	})
	m.AddAsset(Asset{
		Symbol:       "HALTED",
		Exchange:     "NYSE",
		Class:        AssetClassEquity,
		Status:       AssetStatusInactive,
		Tradable:     false,
		Fractionable: false,
	})
	m.logger.Info("mock-adapter: setup fixtures")
}

var nextMockOrderID uint64

func getNextMockOrderID() uint64 {
	return atomic.AddUint64(&nextMockOrderID, 1)
}

// MockStream is the stream half of MockAdapter. Updates and failures are
// injected from test code and surface through NextMessage.
type MockStream struct {
	events  chan inboundEvent
	closed  chan struct{}
	mx      sync.Mutex
	done    bool
	batches [][]string
}

func newMockStream() *MockStream {
	return &MockStream{
		events: make(chan inboundEvent, 64),
		closed: make(chan struct{}),
	}
}

func (s *MockStream) SendSubscriptions(ctx context.Context, symbols []string) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.done {
		return errors.New("mock-stream: closed")
	}
	batch := make([]string, len(symbols))
	copy(batch, symbols)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *MockStream) NextMessage(ctx context.Context) (*Update, error) {
	select {
	case ev := <-s.events:
		return ev.update, ev.err
	case <-s.closed:
		return nil, errors.New("mock-stream: closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *MockStream) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if !s.done {
		s.done = true
		close(s.closed)
	}
	return nil
}

func (s *MockStream) Inject(update Update) bool {
	select {
	case s.events <- inboundEvent{update: &update}:
		return true
	case <-s.closed:
		return false
	}
}

func (s *MockStream) Fail(err error) bool {
	select {
	case s.events <- inboundEvent{err: err}:
		return true
	case <-s.closed:
		return false
	}
}

func (s *MockStream) Batches() [][]string {
	s.mx.Lock()
	defer s.mx.Unlock()
	result := make([][]string, len(s.batches))
	copy(result, s.batches)
	return result
}

func (s *MockStream) Closed() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.done
}
