package evalservice

import (
	"context"
	"time"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	"github.com/msto63/spi/foundation/pascal"
	coreGrpc "github.com/msto63/spi/pkg/core/grpc"
	"github.com/msto63/spi/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote evaluator service
type Client struct {
	conn  *grpc.ClientConn
	owned bool
}

// NewClient wraps an existing connection; Close leaves it open
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Dial connects to the evaluator at addr
func Dial(addr string, logger *logging.Logger, timeout time.Duration) (*Client, error) {
	cfg := coreGrpc.DefaultClientConfig(addr)
	cfg.Logger = logger
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	conn, err := coreGrpc.Dial(cfg)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to connect to evaluator").
			WithCode(mdwerror.CodeConnectionFailed).
			WithDetail("address", addr)
	}
	return &Client{conn: conn, owned: true}, nil
}

// Evaluate runs source remotely. Pascal errors are returned inside the
// Response; the error result is reserved for transport and request failures.
func (c *Client) Evaluate(ctx context.Context, mode pascal.Mode, source string) (*Response, error) {
	in, err := Request{Mode: mode, Source: source}.toStruct()
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to encode request").
			WithCode(mdwerror.CodeInvalidInput)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, EvaluateMethod, in, out); err != nil {
		return nil, clientError(err)
	}
	return responseFromStruct(out)
}

// Healthy asks the remote health service whether the evaluator is serving
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, clientError(err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// Close closes a connection opened by Dial
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.conn.Close()
}

func clientError(err error) error {
	st := status.Convert(err)

	code := mdwerror.CodeInternal
	switch st.Code() {
	case codes.Canceled, codes.DeadlineExceeded:
		code = mdwerror.CodeCanceled
	case codes.InvalidArgument:
		code = mdwerror.CodeInvalidInput
	case codes.Unavailable:
		code = mdwerror.CodeConnectionFailed
	}

	return mdwerror.New(st.Message()).
		WithCode(code).
		WithOperation("evalservice.Client").
		WithDetail("grpc_code", st.Code().String())
}
