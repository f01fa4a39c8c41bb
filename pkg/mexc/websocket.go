package mexc

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"tradingbot/internal/model"
)

const defaultWSURL = "wss://stream.mexc.com/ws"

// subscribeRequest is the kline channel subscription message.
type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// Subscribe dials the public stream and subscribes to the kline channel for
// the given symbol/interval. The returned stream fails on any transport
// error; the caller owns reconnection.
func (c *Client) Subscribe(ctx context.Context, symbol, interval string) (model.KlineStream, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("mexc: ws dial (status %s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("mexc: ws dial: %w", err)
	}

	channel := strings.ToLower(symbol) + "@kline_" + interval
	req := subscribeRequest{Method: "SUBSCRIPTION", Params: []string{channel}, ID: 1}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mexc: ws subscribe: %w", err)
	}

	return &klineStream{conn: conn}, nil
}

// klineStream reads kline push messages off one WebSocket connection.
type klineStream struct {
	conn *websocket.Conn
}

// Next blocks for the next kline message, skipping subscription acks and any
// frame without kline data. Malformed kline payloads are skipped too: feed
// quirks stay at this boundary and never reach the pipeline.
func (s *klineStream) Next() (model.Kline, error) {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return model.Kline{}, err
		}

		k := gjson.GetBytes(raw, "data.k")
		if !k.Exists() {
			continue
		}
		kline, err := parseKline(k)
		if err != nil {
			// One bad frame should not tear down the connection.
			log.Printf("[mexc] skipping kline frame: %v", err)
			continue
		}
		return kline, nil
	}
}

func (s *klineStream) Close() error {
	return s.conn.Close()
}

// parseKline validates one raw kline object into a model.Kline.
// Fields follow the exchange's push format: o/h/l/c/v prices as strings,
// T the bar close time in epoch-ms, x the bar-closed flag.
func parseKline(k gjson.Result) (model.Kline, error) {
	ts := k.Get("T").Int()
	if ts <= 0 {
		return model.Kline{}, fmt.Errorf("mexc: kline missing close time: %s", k.Raw)
	}
	return model.Kline{
		Candle: model.Candle{
			TS:     time.UnixMilli(ts).UTC(),
			Open:   k.Get("o").Float(),
			High:   k.Get("h").Float(),
			Low:    k.Get("l").Float(),
			Close:  k.Get("c").Float(),
			Volume: k.Get("v").Float(),
		},
		Closed: k.Get("x").Bool(),
	}, nil
}
