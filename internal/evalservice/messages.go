package evalservice

import (
	"fmt"
	"strconv"
	"strings"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	"github.com/msto63/spi/foundation/pascal"
	mdwinterp "github.com/msto63/spi/foundation/pascal/interpreter"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request is the decoded form of an Evaluate request: {mode, source}
type Request struct {
	Mode   pascal.Mode
	Source string
}

// RemoteError is a pascal error reported in-band by the service
type RemoteError struct {
	Code    mdwerror.Code `json:"code"`
	Message string        `json:"message"`
	Offset  int           `json:"offset"`
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Response is the decoded form of an Evaluate response. Integers travel as
// decimal strings because Struct numbers are doubles.
type Response struct {
	OK       bool
	Mode     pascal.Mode
	Value    *int64
	Bindings []mdwinterp.Binding
	Error    *RemoteError
}

// Err returns the in-band error as a coded error, or nil on success
func (r *Response) Err() error {
	if r.OK || r.Error == nil {
		return nil
	}
	return mdwerror.New(r.Error.Message).
		WithCode(r.Error.Code).
		WithOperation("evalservice.Evaluate").
		WithDetail("offset", r.Error.Offset)
}

// String renders the result the way pascal.Result does
func (r *Response) String() string {
	res := pascal.Result{Mode: r.Mode, Value: r.Value, Bindings: r.Bindings}
	return res.String()
}

func (r Request) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"mode":   string(r.Mode),
		"source": r.Source,
	})
}

func requestFromStruct(s *structpb.Struct) (Request, error) {
	fields := s.GetFields()

	source, ok := fields["source"]
	if !ok {
		return Request{}, fmt.Errorf("source is required")
	}
	if _, isString := source.GetKind().(*structpb.Value_StringValue); !isString {
		return Request{}, fmt.Errorf("source must be a string")
	}

	mode := pascal.ModeProgram
	if v, ok := fields["mode"]; ok && strings.TrimSpace(v.GetStringValue()) != "" {
		parsed, err := pascal.ParseMode(v.GetStringValue())
		if err != nil {
			return Request{}, err
		}
		mode = parsed
	}

	return Request{Mode: mode, Source: source.GetStringValue()}, nil
}

func newResponse(mode pascal.Mode, res *pascal.Result, err error) *Response {
	if err != nil {
		return &Response{
			Mode: mode,
			Error: &RemoteError{
				Code:    mdwerror.GetCode(err),
				Message: err.Error(),
				Offset:  pascal.ErrorOffset(err),
			},
		}
	}
	return &Response{
		OK:       true,
		Mode:     res.Mode,
		Value:    res.Value,
		Bindings: res.Bindings,
	}
}

func (r *Response) toStruct() (*structpb.Struct, error) {
	m := map[string]interface{}{
		"ok":   r.OK,
		"mode": string(r.Mode),
	}
	if r.Value != nil {
		m["value"] = strconv.FormatInt(*r.Value, 10)
	}
	if r.OK && r.Mode == pascal.ModeProgram {
		bindings := make([]interface{}, len(r.Bindings))
		for i, b := range r.Bindings {
			bindings[i] = map[string]interface{}{
				"name":  b.Name,
				"value": strconv.FormatInt(b.Value, 10),
			}
		}
		m["bindings"] = bindings
	}
	if r.Error != nil {
		m["error"] = map[string]interface{}{
			"code":    string(r.Error.Code),
			"message": r.Error.Message,
			"offset":  float64(r.Error.Offset),
		}
	}
	return structpb.NewStruct(m)
}

func responseFromStruct(s *structpb.Struct) (*Response, error) {
	fields := s.GetFields()
	r := &Response{
		OK:   fields["ok"].GetBoolValue(),
		Mode: pascal.Mode(fields["mode"].GetStringValue()),
	}

	if v, ok := fields["value"]; ok {
		n, err := strconv.ParseInt(v.GetStringValue(), 10, 64)
		if err != nil {
			return nil, malformed("value", err)
		}
		r.Value = &n
	}

	if v, ok := fields["bindings"]; ok {
		for _, item := range v.GetListValue().GetValues() {
			b := item.GetStructValue().GetFields()
			n, err := strconv.ParseInt(b["value"].GetStringValue(), 10, 64)
			if err != nil {
				return nil, malformed("bindings", err)
			}
			r.Bindings = append(r.Bindings, mdwinterp.Binding{Name: b["name"].GetStringValue(), Value: n})
		}
	}

	if v, ok := fields["error"]; ok {
		e := v.GetStructValue().GetFields()
		r.Error = &RemoteError{
			Code:    mdwerror.Code(e["code"].GetStringValue()),
			Message: e["message"].GetStringValue(),
			Offset:  int(e["offset"].GetNumberValue()),
		}
	}

	if !r.OK && r.Error == nil {
		return nil, malformed("error", fmt.Errorf("failed response without error"))
	}
	return r, nil
}

func malformed(field string, err error) error {
	return mdwerror.Wrap(err, "malformed evaluator response").
		WithCode(mdwerror.CodeInternal).
		WithDetail("field", field)
}
