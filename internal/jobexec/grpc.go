package jobexec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// jobSubmitMethod is the unary RPC GRPCExecutor invokes. It is called
// through grpc.ClientConn.Invoke directly against structpb.Struct
// request/response payloads rather than through generated service
// code: a schemaless Struct is a faithful wire shape for a job spec
// whose fields (command, env, inputs) and result fields (outputs,
// exit code, stdout/stderr) are exactly the dynamic key/value map
// structpb models, and it keeps this package free of a .proto build
// step (SPEC_FULL.md DOMAIN STACK).
const jobSubmitMethod = "/wakecore.jobexec.v1.JobExecutor/Submit"

// GRPCExecutor dials a remote job executor and submits jobs to it over
// grpc.ClientConn (funxy's own grpcConnect/grpcInvoke builtins use the
// same insecure.NewCredentials() dev-mode transport).
type GRPCExecutor struct {
	conn *grpc.ClientConn
}

func DialGRPCExecutor(target string) (*GRPCExecutor, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("jobexec: dialing %s: %w", target, err)
	}
	return &GRPCExecutor{conn: conn}, nil
}

func (x *GRPCExecutor) Close() error {
	return x.conn.Close()
}

func (x *GRPCExecutor) Submit(ctx context.Context, spec JobSpec) (<-chan JobResult, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"command": spec.Command,
		"env":     stringsToInterfaces(spec.Env),
		"inputs":  stringsToInterfaces(spec.Inputs),
	})
	if err != nil {
		return nil, fmt.Errorf("jobexec: encoding job spec: %w", err)
	}

	out := make(chan JobResult, 1)
	go func() {
		resp := &structpb.Struct{}
		if err := x.conn.Invoke(ctx, jobSubmitMethod, req, resp); err != nil {
			out <- JobResult{ExitCode: -1, Stderr: err.Error()}
			close(out)
			return
		}
		out <- resultFromStruct(resp)
		close(out)
	}()
	return out, nil
}

func stringsToInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func resultFromStruct(s *structpb.Struct) JobResult {
	fields := s.GetFields()
	var r JobResult
	if v, ok := fields["exit_code"]; ok {
		r.ExitCode = int(v.GetNumberValue())
	}
	if v, ok := fields["stdout"]; ok {
		r.Stdout = v.GetStringValue()
	}
	if v, ok := fields["stderr"]; ok {
		r.Stderr = v.GetStringValue()
	}
	if v, ok := fields["outputs"]; ok {
		for _, o := range v.GetListValue().GetValues() {
			r.Outputs = append(r.Outputs, o.GetStringValue())
		}
	}
	return r
}
