package alpaca

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gotest.tools/assert"

	"github.com/danmandel/trading-client/pkg/trading"
)

// fakeDataServer speaks just enough of the data stream protocol: one auth
// exchange, then subscription echoes, with test-injected event frames.
type fakeDataServer struct {
	url      string
	requests chan streamRequest
	send     chan []byte
}

func newFakeDataServer(t *testing.T, authOK bool) *fakeDataServer {
	t.Helper()
	f := &fakeDataServer{
		requests: make(chan streamRequest, 16),
		send:     make(chan []byte, 16),
	}

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		if !authOK {
			conn.WriteMessage(websocket.TextMessage, []byte(`[{"T":"error","msg":"auth failed"}]`))
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"T":"success","msg":"authenticated"}]`))

		done := make(chan struct{})
		defer close(done)
		go func() {
			for {
				select {
				case payload := <-f.send:
					conn.WriteMessage(websocket.TextMessage, payload)
				case <-done:
					return
				}
			}
		}()

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req streamRequest
			if err := json.Unmarshal(frame, &req); err == nil {
				f.requests <- req
			}
		}
	}))
	t.Cleanup(server.Close)

	f.url = "ws" + strings.TrimPrefix(server.URL, "http")
	return f
}

func (f *fakeDataServer) nextRequest(t *testing.T) streamRequest {
	t.Helper()
	select {
	case req := <-f.requests:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream request")
	}
	return streamRequest{}
}

func TestOpenStream_AuthRefused(t *testing.T) {
	f := newFakeDataServer(t, false)

	_, err := openStream(context.Background(), zap.NewNop(), f.url, "AKID", "BAD")
	assert.ErrorContains(t, err, "auth refused")
}

func TestStream_SubscribeAndReceive(t *testing.T) {
	f := newFakeDataServer(t, true)

	s, err := openStream(context.Background(), zap.NewNop(), f.url, "AKID", "SECRET")
	assert.NilError(t, err)
	defer s.Close()

	assert.NilError(t, s.SendSubscriptions(context.Background(), []string{"AAPL", "BTCUSD"}))
	req := f.nextRequest(t)
	assert.Equal(t, req.Action, "subscribe")
	assert.DeepEqual(t, req.Trades, []string{"AAPL", "BTCUSD"})
	assert.DeepEqual(t, req.Quotes, []string{"AAPL", "BTCUSD"})
	assert.DeepEqual(t, req.Bars, []string{"AAPL", "BTCUSD"})

	f.send <- []byte(`[
		{"T":"t","S":"AAPL","p":187.2,"s":100,"t":"2026-08-28T13:30:00Z"},
		{"T":"q","S":"AAPL","bp":187.1,"bs":2,"ap":187.3,"as":3,"t":"2026-08-28T13:30:01Z"}
	]`)

	update, err := s.NextMessage(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, update.Kind, trading.UpdateKindTrade)
	assert.Equal(t, update.Symbol, "AAPL")
	assert.Equal(t, update.Price.String(), "187.2")
	assert.Equal(t, update.Size.String(), "100")

	update, err = s.NextMessage(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, update.Kind, trading.UpdateKindQuote)
	assert.Equal(t, update.BidPrice.String(), "187.1")
	assert.Equal(t, update.AskPrice.String(), "187.3")

	f.send <- []byte(`[{"T":"b","S":"AAPL","o":187.0,"h":187.5,"l":186.9,"c":187.2,"v":120000,"t":"2026-08-28T13:31:00Z"}]`)
	update, err = s.NextMessage(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, update.Kind, trading.UpdateKindBar)
	assert.Equal(t, update.Close.String(), "187.2")
	assert.Equal(t, update.Volume.String(), "120000")
}

func TestStream_ControlFramesSkipped(t *testing.T) {
	f := newFakeDataServer(t, true)

	s, err := openStream(context.Background(), zap.NewNop(), f.url, "AKID", "SECRET")
	assert.NilError(t, err)
	defer s.Close()

	f.send <- []byte(`[{"T":"subscription","trades":["AAPL"]}]`)
	f.send <- []byte(`[{"T":"t","S":"AAPL","p":187.2,"s":1,"t":"2026-08-28T13:30:00Z"}]`)

	update, err := s.NextMessage(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, update.Kind, trading.UpdateKindTrade)
}

func TestStream_Reconcile(t *testing.T) {
	f := newFakeDataServer(t, true)

	s, err := openStream(context.Background(), zap.NewNop(), f.url, "AKID", "SECRET")
	assert.NilError(t, err)
	defer s.Close()

	assert.NilError(t, s.SendSubscriptions(context.Background(), []string{"AAPL", "MSFT"}))
	f.nextRequest(t)

	// shrink the set: only the delta goes on the wire
	assert.NilError(t, s.SendSubscriptions(context.Background(), []string{"MSFT"}))
	req := f.nextRequest(t)
	assert.Equal(t, req.Action, "unsubscribe")
	assert.DeepEqual(t, req.Trades, []string{"AAPL"})

	// grow it again
	assert.NilError(t, s.SendSubscriptions(context.Background(), []string{"BTCUSD", "MSFT"}))
	req = f.nextRequest(t)
	assert.Equal(t, req.Action, "subscribe")
	assert.DeepEqual(t, req.Trades, []string{"BTCUSD"})
}

func TestStream_ErrorFrame(t *testing.T) {
	f := newFakeDataServer(t, true)

	s, err := openStream(context.Background(), zap.NewNop(), f.url, "AKID", "SECRET")
	assert.NilError(t, err)
	defer s.Close()

	f.send <- []byte(`[{"T":"error","msg":"slow client"}]`)
	_, err = s.NextMessage(context.Background())
	assert.ErrorContains(t, err, "slow client")
}

func TestStream_Close(t *testing.T) {
	f := newFakeDataServer(t, true)

	s, err := openStream(context.Background(), zap.NewNop(), f.url, "AKID", "SECRET")
	assert.NilError(t, err)

	assert.NilError(t, s.Close())
	_, err = s.NextMessage(context.Background())
	assert.ErrorContains(t, err, "stream closed")
}
