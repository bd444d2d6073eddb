package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
)

// #region client-struct
// Client calls a remote Engine service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewClient connects to an engine server at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn wraps an existing connection. Close is a no-op.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// #endregion constructor

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #region calls

// Decide asks the server for one agent's decision.
func (c *Client) Decide(ctx context.Context, req DecideRequest) (engine.AgentResult, error) {
	var out engine.AgentResult
	if err := c.invoke(ctx, decideMethod, req, &out); err != nil {
		return engine.AgentResult{}, fmt.Errorf("decide rpc: %w", err)
	}
	return out, nil
}

// Tick asks the server to run a world tick.
func (c *Client) Tick(ctx context.Context, req TickRequest) (engine.TickResult, error) {
	var out engine.TickResult
	if err := c.invoke(ctx, tickMethod, req, &out); err != nil {
		return engine.TickResult{}, fmt.Errorf("tick rpc: %w", err)
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, out any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

// #endregion calls
