package alpaca

import (
	"testing"
)

func BenchmarkWireEvent_Unmarshal(b *testing.B) {
	frame := []byte(`[{"T":"q","S":"AAPL","bp":187.1,"bs":2,"ap":187.3,"as":3,"t":"2026-08-28T13:30:01.123456789Z"},{"T":"t","S":"AAPL","p":187.2,"s":100,"t":"2026-08-28T13:30:01.223456789Z"}]`)

	for i := 0; i < b.N; i++ {
		var events []wireEvent
		if err := json.Unmarshal(frame, &events); err != nil {
			b.Fatal("fail parse frame", err)
		}
	}
}

func BenchmarkOrderRequest_Marshal(b *testing.B) {
	req := orderRequest{
		Symbol:        "AAPL",
		Qty:           "1.5",
		Side:          "buy",
		Type:          "limit",
		TimeInForce:   "day",
		LimitPrice:    "187.20",
		ClientOrderID: "db79c4da6a18334bfbbdee47812e48d0",
	}

	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(req); err != nil {
			b.Fatal("fail marshal order", err)
		}
	}
}
