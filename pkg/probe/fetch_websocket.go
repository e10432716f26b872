package probe

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebsocketFetcher connects to a ws(s) endpoint and uses the first message
// the server sends as body.
type WebsocketFetcher struct {
	MaxBodySize int64
	Dialer      *websocket.Dialer
}

func (w *WebsocketFetcher) Fetch(ctx context.Context, target Target) (*Response, error) {
	dialer := w.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	header := http.Header{}
	for k, v := range target.Headers {
		header.Set(k, v)
	}

	conn, res, err := dialer.DialContext(ctx, target.URL, header)
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) && res != nil {
			return &Response{StatusCode: res.StatusCode}, &HTTPStatusError{URL: target.URL, StatusCode: res.StatusCode, Status: res.Status}
		}
		return nil, &FetchError{URL: target.URL, Err: err}
	}
	defer conn.Close()

	resp := &Response{StatusCode: res.StatusCode}

	conn.SetReadLimit(limitOrDefault(w.MaxBodySize))
	if err := conn.SetReadDeadline(deadline(ctx, target.Timeout)); err != nil {
		return resp, &FetchError{URL: target.URL, Err: err}
	}

	_, msg, err := conn.ReadMessage()
	if errors.Is(err, websocket.ErrReadLimit) {
		return resp, &FetchError{URL: target.URL, Err: ErrBodyTooLarge}
	}
	if err != nil {
		return resp, &FetchError{URL: target.URL, Err: err}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	resp.Body = string(msg)
	return resp, nil
}
