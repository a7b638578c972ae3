package trading

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var streamStates = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "trading_stream_state",
	Help: "Market data stream connection state",
}, []string{"backend"})

var streamMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "trading_stream_message_count",
	Help: "Market data stream inbound message counters",
}, []string{"backend", "kind"})

var streamReconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "trading_stream_reconnect_count",
	Help: "Market data stream reconnect attempts",
}, []string{"backend"})

var droppedUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "trading_stream_dropped_update_count",
	Help: "Updates dropped because a subscriber stopped draining",
}, []string{"backend"})

func init() {
	prometheus.MustRegister(streamStates, streamMessages, streamReconnects, droppedUpdates)
}

type streamState int32

const (
	stateDisconnected streamState = iota
	stateConnecting
	stateLive
	stateDegraded
	stateReconnecting
)

func (s streamState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateConnecting:
		return "connecting"
	case stateLive:
		return "live"
	case stateDegraded:
		return "degraded"
	case stateReconnecting:
		return "reconnecting"
	}
	return "unknown"
}

const (
	defaultStreamRetries = 5
	subscriptionBuffer   = 64
	inboundBuffer        = 64
)

var errEngineStopped = errors.New("client closed")

type subscribeCmd struct {
	sub   *Subscription
	reply chan error
}

type deregisterCmd struct {
	sub *Subscription
}

type connectOutcome struct {
	stream Stream
	err    error
}

type inboundEvent struct {
	update *Update
	err    error
}

// connection wraps one opened stream with its reader plumbing. The abandon
// channel lets the engine walk away from a connection without waiting for
// the reader goroutine.
type connection struct {
	stream  Stream
	inbound chan inboundEvent
	abandon chan struct{}
}

// streamEngine maintains at most one live stream connection per client,
// regardless of how many symbols are subscribed, and fans inbound updates
// out to the registered handles in arrival order. A single goroutine owns
// the connection and the subscribed-symbol set; subscribe and unsubscribe
// arrive as messages, so every mutation goes through one writer.
type streamEngine struct {
	logger  *zap.Logger
	backend string
	adapter Adapter
	budget  int

	backoffBase time.Duration
	backoffMax  time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	commands chan interface{}
	done     chan struct{}
	state    int32
	closeErr error
}

func newStreamEngine(logger *zap.Logger, backend string, adapter Adapter, retries int) *streamEngine {
	if retries <= 0 {
		retries = defaultStreamRetries
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &streamEngine{
		logger:      logger,
		backend:     backend,
		adapter:     adapter,
		budget:      retries,
		backoffBase: defaultBackoffBase,
		backoffMax:  defaultBackoffMax,
		ctx:         ctx,
		cancel:      cancel,
		commands:    make(chan interface{}),
		done:        make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *streamEngine) currentState() streamState {
	return streamState(atomic.LoadInt32(&e.state))
}

func (e *streamEngine) setState(s streamState) {
	atomic.StoreInt32(&e.state, int32(s))
	streamStates.WithLabelValues(e.backend).Set(float64(s))
}

// subscribe registers interest in symbol and waits until the underlying
// stream carries it, or until the connect retry budget is exhausted.
func (e *streamEngine) subscribe(ctx context.Context, symbol string) (*Subscription, error) {
	sub := &Subscription{
		symbol:  symbol,
		created: time.Now(),
		engine:  e,
		updates: make(chan Update, subscriptionBuffer),
	}
	reply := make(chan error, 1)

	select {
	case e.commands <- subscribeCmd{sub: sub, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.done:
		return nil, &TransportError{Op: "subscribe " + symbol, Err: errEngineStopped}
	}

	select {
	case err := <-reply:
		if err != nil {
			return nil, err
		}
		return sub, nil
	case <-ctx.Done():
		sub.Unsubscribe()
		return nil, ctx.Err()
	case <-e.done:
		return nil, &TransportError{Op: "subscribe " + symbol, Err: errEngineStopped}
	}
}

func (e *streamEngine) deregister(sub *Subscription) {
	select {
	case e.commands <- deregisterCmd{sub: sub}:
	case <-e.done:
	}
}

// stop tears the engine down, closing every handle cleanly.
func (e *streamEngine) stop() error {
	e.cancel()
	<-e.done
	return e.closeErr
}

func (e *streamEngine) run() {
	defer close(e.done)
	loop := &engineLoop{e: e, subs: make(map[string][]*Subscription)}

	for {
		var inbound chan inboundEvent
		if loop.conn != nil {
			inbound = loop.conn.inbound
		}

		select {
		case <-e.ctx.Done():
			loop.teardown()
			return
		case cmd := <-e.commands:
			switch c := cmd.(type) {
			case subscribeCmd:
				loop.handleSubscribe(c)
			case deregisterCmd:
				loop.handleDeregister(c)
			}
		case out := <-loop.connectC:
			loop.handleOutcome(out)
		case <-loop.reconnectC:
			loop.reconnectC = nil
			loop.beginConnect()
		case ev := <-inbound:
			loop.handleInbound(ev)
		}
	}
}

// engineLoop is the run goroutine's private state. Nothing here is touched
// from any other goroutine.
type engineLoop struct {
	e          *streamEngine
	subs       map[string][]*Subscription
	pending    []chan error
	conn       *connection
	connectC   chan connectOutcome
	reconnectC <-chan time.Time
	attempts   int
}

// symbols returns the current subscription set, sorted so batches are
// deterministic.
func (l *engineLoop) symbols() []string {
	result := make([]string, 0, len(l.subs))
	for symbol := range l.subs {
		result = append(result, symbol)
	}
	sort.Strings(result)
	return result
}

func (l *engineLoop) handleSubscribe(c subscribeCmd) {
	symbol := c.sub.symbol
	l.subs[symbol] = append(l.subs[symbol], c.sub)

	switch l.e.currentState() {
	case stateLive:
		if len(l.subs[symbol]) > 1 {
			// symbol is already on the wire
			c.reply <- nil
			return
		}
		if err := l.conn.stream.SendSubscriptions(l.e.ctx, l.symbols()); err != nil {
			l.pending = append(l.pending, c.reply)
			l.degrade(err)
			return
		}
		c.reply <- nil
	case stateDisconnected:
		l.pending = append(l.pending, c.reply)
		l.attempts = 0
		l.e.setState(stateConnecting)
		l.beginConnect()
	default:
		// a connect cycle is already in flight; resolve with its outcome
		l.pending = append(l.pending, c.reply)
	}
}

func (l *engineLoop) handleDeregister(c deregisterCmd) {
	symbol := c.sub.symbol
	list := l.subs[symbol]
	for i, sub := range list {
		if sub == c.sub {
			l.subs[symbol] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(l.subs[symbol]) > 0 {
		return
	}

	// Last handle for the symbol: it drops out of the next resync batch.
	// The connection itself stays up while any other symbol remains.
	delete(l.subs, symbol)
	if len(l.subs) > 0 {
		return
	}

	l.e.closeErr = l.dropConnection()
	l.reconnectC = nil
	l.resolvePending(nil)
	l.e.setState(stateDisconnected)
}

func (l *engineLoop) beginConnect() {
	outcome := make(chan connectOutcome, 1)
	l.connectC = outcome

	ctx := l.e.ctx
	adapter := l.e.adapter
	go func() {
		stream, err := adapter.OpenStream(ctx)
		outcome <- connectOutcome{stream: stream, err: err}
	}()
}

func (l *engineLoop) handleOutcome(out connectOutcome) {
	l.connectC = nil

	if out.err == nil && len(l.subs) == 0 {
		// everyone unsubscribed while the dial was in flight
		out.stream.Close()
		l.e.setState(stateDisconnected)
		return
	}

	if out.err == nil {
		if err := out.stream.SendSubscriptions(l.e.ctx, l.symbols()); err != nil {
			out.stream.Close()
			out.err = err
		}
	}

	if out.err != nil {
		l.attempts++
		l.e.logger.Warn("stream: connect failed",
			zap.String("backend", l.e.backend),
			zap.Int("attempt", l.attempts),
			zap.Error(out.err))
		if l.attempts >= l.e.budget {
			l.terminate(out.err)
			return
		}
		l.scheduleReconnect()
		return
	}

	l.conn = &connection{
		stream:  out.stream,
		inbound: make(chan inboundEvent, inboundBuffer),
		abandon: make(chan struct{}),
	}
	l.attempts = 0
	l.e.setState(stateLive)
	l.e.logger.Info("stream: live",
		zap.String("backend", l.e.backend),
		zap.Strings("symbols", l.symbols()))
	l.resolvePending(nil)
	go readStream(l.e.ctx, l.conn)
}

func (l *engineLoop) handleInbound(ev inboundEvent) {
	if ev.err != nil {
		l.degrade(ev.err)
		return
	}

	update := *ev.update
	streamMessages.WithLabelValues(l.e.backend, update.Kind.String()).Inc()
	for _, sub := range l.subs[update.Symbol] {
		sub.deliver(update)
	}
}

// degrade reacts to a transient stream failure: drop the connection and
// start the backoff cycle, unless nothing is subscribed anymore.
func (l *engineLoop) degrade(cause error) {
	l.e.logger.Warn("stream: degraded",
		zap.String("backend", l.e.backend),
		zap.Error(cause))
	l.dropConnection()
	l.e.setState(stateDegraded)

	if len(l.subs) == 0 {
		l.e.setState(stateDisconnected)
		return
	}

	l.attempts = 0
	l.scheduleReconnect()
}

func (l *engineLoop) scheduleReconnect() {
	streamReconnects.WithLabelValues(l.e.backend).Inc()
	l.e.setState(stateReconnecting)
	l.reconnectC = time.After(calculateBackoff(l.attempts, l.e.backoffBase, l.e.backoffMax))
}

// terminate surfaces a terminal transport failure to every registered
// handle after the retry budget is spent.
func (l *engineLoop) terminate(cause error) {
	err := &TransportError{Op: "stream " + l.e.backend + " reconnect budget exhausted", Err: cause}
	l.e.logger.Error("stream: retry budget exhausted",
		zap.String("backend", l.e.backend),
		zap.Int("attempts", l.attempts),
		zap.Error(cause))

	for _, list := range l.subs {
		for _, sub := range list {
			sub.shutdown(err)
		}
	}
	l.subs = make(map[string][]*Subscription)
	l.resolvePending(err)
	l.dropConnection()
	l.e.setState(stateDisconnected)
}

func (l *engineLoop) resolvePending(err error) {
	for _, reply := range l.pending {
		reply <- err
	}
	l.pending = nil
}

func (l *engineLoop) dropConnection() error {
	if l.conn == nil {
		return nil
	}
	close(l.conn.abandon)
	err := l.conn.stream.Close()
	l.conn = nil
	return err
}

func (l *engineLoop) teardown() {
	for _, list := range l.subs {
		for _, sub := range list {
			sub.shutdown(nil)
		}
	}
	l.subs = make(map[string][]*Subscription)
	l.resolvePending(&TransportError{Op: "subscribe", Err: errEngineStopped})
	l.e.closeErr = l.dropConnection()
	l.e.setState(stateDisconnected)
}

// readStream pumps one connection into the engine loop. It exits on the
// first read error or once the engine abandons the connection.
func readStream(ctx context.Context, conn *connection) {
	for {
		update, err := conn.stream.NextMessage(ctx)
		ev := inboundEvent{update: update, err: err}

		select {
		case conn.inbound <- ev:
		case <-conn.abandon:
			return
		case <-ctx.Done():
			return
		}

		if err != nil {
			return
		}
	}
}
