package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/gorilla/websocket"
)

var _ APIResponse = &StreamingAPIResponse{}

type StreamingAPIResponseHandler func(ctx context.Context, conn *websocket.Conn, msg chan []byte, err chan error)

type StreamingAPIResponse struct {
	url           *url.URL
	ctx           context.Context
	streamingFunc StreamingAPIResponseHandler
	dialer        *websocket.Dialer
	colored       bool
	err           error
}

func NewStreamingAPIResponse(ctx context.Context, url *url.URL, dialer *websocket.Dialer, streamingFunc StreamingAPIResponseHandler, colored bool) *StreamingAPIResponse {
	return &StreamingAPIResponse{
		url:           url,
		ctx:           ctx,
		streamingFunc: streamingFunc,
		dialer:        dialer,
		colored:       colored,
	}
}

func (resp *StreamingAPIResponse) Err() error {
	return resp.err
}

func (resp *StreamingAPIResponse) Print(w io.Writer) error {
	resp.err = resp.stream(w)
	return resp.err
}

func (resp *StreamingAPIResponse) stream(w io.Writer) error {
	conn, _, err := resp.dialer.DialContext(resp.ctx, resp.url.String(), nil)
	if err != nil {
		return fmt.Errorf("error dialing to %s: %w", resp.url.String(), err)
	}

	ctx, cancel := context.WithCancel(resp.ctx)
	messages := make(chan []byte)
	errs := make(chan error)
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		resp.streamingFunc(ctx, conn, messages, errs)
	}()

	defer func() {
		cancel()
		_ = conn.Close()
		<-finished
	}()

	for {
		select {
		case msg := <-messages:
			if err := printJSON(w, msg, resp.colored); err != nil {
				_, _ = fmt.Fprintln(w, string(msg))
			}
		case err := <-errs:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}
