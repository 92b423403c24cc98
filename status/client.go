package status

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote status service.
type Client struct {
	getStatus *connect.Client[emptypb.Empty, structpb.Struct]
}

// NewClient creates a Client for the service at baseURL, for example
// "http://127.0.0.1:9814".
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		getStatus: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+GetStatusProcedure, opts...),
	}
}

// GetStatus fetches the current snapshot. Numbers arrive as float64.
func (c *Client) GetStatus(ctx context.Context) (map[string]any, error) {
	res, err := c.getStatus.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, fmt.Errorf("status call failed: %w", err)
	}
	return res.Msg.AsMap(), nil
}
