package alpaca

import (
	"context"
	stdjson "encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/danmandel/trading-client/pkg/trading"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	pingInterval     = 30 * time.Second
)

// stream is one authenticated market data websocket. The engine drives it
// from a single goroutine; only the ping loop writes concurrently, which
// gorilla allows for control frames.
type stream struct {
	logger  *zap.Logger
	conn    *websocket.Conn
	writeMx sync.Mutex

	subscribed map[string]bool
	pending    []trading.Update

	closeOnce sync.Once
	done      chan struct{}
}

func openStream(ctx context.Context, logger *zap.Logger, url, key, secret string) (trading.Stream, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "alpaca: dial stream")
	}

	s := &stream{
		logger:     logger,
		conn:       conn,
		subscribed: make(map[string]bool),
		done:       make(chan struct{}),
	}
	if err := s.authenticate(key, secret); err != nil {
		conn.Close()
		return nil, err
	}

	go s.pingLoop()
	logger.Debug("alpaca: stream authenticated", zap.String("url", url))
	return s, nil
}

// authenticate sends the auth frame and reads control messages until the
// server confirms or rejects the credentials.
func (s *stream) authenticate(key, secret string) error {
	auth := streamRequest{Action: "auth", Key: key, Secret: secret}
	if err := s.writeJSON(auth); err != nil {
		return errors.WithMessage(err, "alpaca: send auth")
	}

	deadline := time.Now().Add(handshakeTimeout)
	for time.Now().Before(deadline) {
		s.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			return errors.WithMessage(err, "alpaca: read auth response")
		}

		var events []wireEvent
		if err := json.Unmarshal(frame, &events); err != nil {
			return errors.WithMessage(err, "alpaca: decode auth response")
		}
		for _, event := range events {
			switch {
			case event.Type == "error":
				return errors.New("alpaca: auth refused: " + event.Msg)
			case event.Type == "success" && event.Msg == "authenticated":
				s.conn.SetReadDeadline(time.Time{})
				return nil
			}
		}
	}
	return errors.New("alpaca: auth confirmation timed out")
}

// SendSubscriptions reconciles the wire subscription set with symbols:
// additions are subscribed, leftovers unsubscribed.
func (s *stream) SendSubscriptions(ctx context.Context, symbols []string) error {
	wanted := make(map[string]bool, len(symbols))
	var added, removed []string
	for _, symbol := range symbols {
		wanted[symbol] = true
		if !s.subscribed[symbol] {
			added = append(added, symbol)
		}
	}
	for symbol := range s.subscribed {
		if !wanted[symbol] {
			removed = append(removed, symbol)
		}
	}

	if len(removed) > 0 {
		req := streamRequest{Action: "unsubscribe", Trades: removed, Quotes: removed, Bars: removed}
		if err := s.writeJSON(req); err != nil {
			return &trading.TransportError{Op: "send unsubscribe", Err: err}
		}
	}
	if len(added) > 0 {
		req := streamRequest{Action: "subscribe", Trades: added, Quotes: added, Bars: added}
		if err := s.writeJSON(req); err != nil {
			return &trading.TransportError{Op: "send subscribe", Err: err}
		}
	}

	s.subscribed = wanted
	return nil
}

func (s *stream) NextMessage(ctx context.Context) (*trading.Update, error) {
	for {
		if len(s.pending) > 0 {
			update := s.pending[0]
			s.pending = s.pending[1:]
			return &update, nil
		}

		if deadline, ok := ctx.Deadline(); ok {
			s.conn.SetReadDeadline(deadline)
		}
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return nil, &trading.TransportError{Op: "stream closed", Err: err}
			default:
			}
			return nil, &trading.TransportError{Op: "read stream", Err: err}
		}

		var events []wireEvent
		if err := json.Unmarshal(frame, &events); err != nil {
			return nil, &trading.TransportError{Op: "decode stream frame", Err: err}
		}
		for _, event := range events {
			if event.Type == "error" {
				return nil, &trading.TransportError{Op: "stream error frame", Err: errors.New(event.Msg)}
			}
			update, ok := event.toUpdate()
			if !ok {
				// control frames: success, subscription echoes
				continue
			}
			s.pending = append(s.pending, update)
		}
	}
}

func (s *stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMx.Lock()
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		s.writeMx.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *stream) writeJSON(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMx.Lock()
	defer s.writeMx.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *stream) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
		case <-s.done:
			return
		}
	}
}

type streamRequest struct {
	Action string   `json:"action"`
	Key    string   `json:"key,omitempty"`
	Secret string   `json:"secret,omitempty"`
	Trades []string `json:"trades,omitempty"`
	Quotes []string `json:"quotes,omitempty"`
	Bars   []string `json:"bars,omitempty"`
}

type wireEvent struct {
	Type   string `json:"T"`
	Msg    string `json:"msg,omitempty"`
	Symbol string `json:"S,omitempty"`

	Price stdjson.Number `json:"p,omitempty"`
	Size  stdjson.Number `json:"s,omitempty"`

	BidPrice stdjson.Number `json:"bp,omitempty"`
	BidSize  stdjson.Number `json:"bs,omitempty"`
	AskPrice stdjson.Number `json:"ap,omitempty"`
	AskSize  stdjson.Number `json:"as,omitempty"`

	Open   stdjson.Number `json:"o,omitempty"`
	High   stdjson.Number `json:"h,omitempty"`
	Low    stdjson.Number `json:"l,omitempty"`
	Close  stdjson.Number `json:"c,omitempty"`
	Volume stdjson.Number `json:"v,omitempty"`

	Timestamp string `json:"t,omitempty"`
}

func (e wireEvent) toUpdate() (trading.Update, bool) {
	var kind trading.UpdateKind
	switch e.Type {
	case "t":
		kind = trading.UpdateKindTrade
	case "q":
		kind = trading.UpdateKindQuote
	case "b":
		kind = trading.UpdateKindBar
	default:
		return trading.Update{}, false
	}

	timestamp, _ := time.Parse(time.RFC3339Nano, e.Timestamp)
	return trading.Update{
		Kind:      kind,
		Symbol:    e.Symbol,
		Price:     numberToDecimal(e.Price),
		Size:      numberToDecimal(e.Size),
		BidPrice:  numberToDecimal(e.BidPrice),
		BidSize:   numberToDecimal(e.BidSize),
		AskPrice:  numberToDecimal(e.AskPrice),
		AskSize:   numberToDecimal(e.AskSize),
		Open:      numberToDecimal(e.Open),
		High:      numberToDecimal(e.High),
		Low:       numberToDecimal(e.Low),
		Close:     numberToDecimal(e.Close),
		Volume:    numberToDecimal(e.Volume),
		Timestamp: timestamp,
	}, true
}

func numberToDecimal(n stdjson.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return value
}
