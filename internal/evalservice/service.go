package evalservice

import (
	"context"
	"errors"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/history"
	coreGrpc "github.com/msto63/spi/pkg/core/grpc"
	"github.com/msto63/spi/pkg/core/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Options configures the evaluator service
type Options struct {
	Engine pascal.Executor

	// Journal is optional
	Journal history.Recorder

	Logger *logging.Logger
}

// Service implements EvaluatorServer on top of a pascal engine
type Service struct {
	engine  pascal.Executor
	journal history.Recorder
	logger  *logging.Logger
}

// NewService creates the evaluator service
func NewService(opts Options) *Service {
	if opts.Engine == nil {
		opts.Engine = pascal.New(pascal.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("evalservice")
	}
	return &Service{
		engine:  opts.Engine,
		journal: opts.Journal,
		logger:  opts.Logger,
	}
}

// Evaluate runs one request. Pascal errors are returned in-band with
// ok=false; invalid requests, cancellation and internal failures become
// gRPC status errors.
func (s *Service) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := requestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if id := coreGrpc.GetRequestID(ctx); id != "" {
		ctx = pascal.ContextWithRunID(ctx, id)
	}

	res, err := s.engine.Execute(ctx, req.Mode, req.Source)
	s.record(ctx, req, res, err)

	if err != nil {
		if st := statusFor(err); st != nil {
			return nil, st.Err()
		}
	}

	out, convErr := newResponse(req.Mode, res, err).toStruct()
	if convErr != nil {
		s.logger.Error("Failed to encode response", "error", convErr)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// record journals the evaluation; journal failures never fail the request
func (s *Service) record(ctx context.Context, req Request, res *pascal.Result, err error) {
	if s.journal == nil {
		return
	}
	entry := history.NewEntry(history.SourceGRPC, req.Mode, req.Source, res, err)
	if jerr := s.journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
		s.logger.Warn("Failed to record run", "error", jerr)
	}
}

// statusFor maps non-pascal errors to gRPC status values. Pascal errors
// yield nil and are reported in the response body.
func statusFor(err error) *status.Status {
	switch mdwerror.GetCode(err) {
	case mdwerror.CodePascalLex, mdwerror.CodePascalSyntax, mdwerror.CodePascalRuntime:
		return nil
	case mdwerror.CodeCanceled:
		if errors.Is(err, context.DeadlineExceeded) {
			return status.New(codes.DeadlineExceeded, err.Error())
		}
		return status.New(codes.Canceled, err.Error())
	case mdwerror.CodeInvalidLength, mdwerror.CodeInvalidInput:
		return status.New(codes.InvalidArgument, err.Error())
	default:
		return status.New(codes.Internal, err.Error())
	}
}
