// Package cli talks to a running status server.
package cli

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mittwald/pageprobe/pkg/server"
	"github.com/mittwald/pageprobe/pkg/suite"
)

const defaultTimeout = 30 * time.Second

type APIClient struct {
	apiAddress string
	timeout    time.Duration
	colored    bool
}

// NewAPIClient accepts "host:port", "http://host:port" or
// "unix:///path/to/socket".
func NewAPIClient(apiAddress string, colored bool) *APIClient {
	return &APIClient{
		apiAddress: apiAddress,
		timeout:    defaultTimeout,
		colored:    colored,
	}
}

func (api *APIClient) Status() *TypedAPIResponse[server.StatusResponse] {
	return getTyped[server.StatusResponse](api, "/status")
}

func (api *APIClient) SuiteList() *TypedAPIResponse[server.SuiteListResponse] {
	return getTyped[server.SuiteListResponse](api, "/v1/suites")
}

func (api *APIClient) SuiteStatus(name string) *TypedAPIResponse[suite.Report] {
	return getTyped[suite.Report](api, "/v1/suite/"+name+"/status")
}

// SuiteWatch streams the reports the server pushes for the suite until ctx
// is done or the server closes the connection.
func (api *APIClient) SuiteWatch(ctx context.Context, name string) APIResponse {
	dialer, u, err := api.buildWebsocketURL()
	if err != nil {
		return &TypedAPIResponse[struct{}]{Error: err}
	}
	u.Path = "/v1/suite/" + name + "/watch"

	handler := func(ctx context.Context, conn *websocket.Conn, msgChan chan []byte, errChan chan error) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				select {
				case errChan <- err:
				case <-ctx.Done():
				}
				return
			}
			select {
			case msgChan <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
	return NewStreamingAPIResponse(ctx, u, dialer, handler, api.colored)
}

func getTyped[TBody any](api *APIClient, path string) *TypedAPIResponse[TBody] {
	var body TBody
	parse := NewTypedAPIResponse(body, api.colored)

	client, u, err := api.buildHTTPClientAndURL()
	if err != nil {
		return parse(nil, err)
	}
	u.Path = path

	resp, err := client.Get(u.String())
	if resp != nil {
		defer resp.Body.Close()
	}
	return parse(resp, err)
}
