// Package jobexec is the transport seam spec.md §4.4 names but keeps
// opaque: the `job` primitive hands a JobSpec to a JobExecutor and
// resumes (via the owning Evaluator's Defer) whenever a JobResult
// arrives, however long that takes and on whatever goroutine delivers
// it (spec.md §5 "asynchronous primitive protocol"). Nothing in this
// package runs a process itself — spec.md §1's Non-goals keep actual
// process execution, sandboxing and the on-disk job cache out of the
// core; LocalExecutor and GRPCExecutor are reference implementations
// of the seam, not the seam's contents.
package jobexec

import "github.com/funvibe/wakecore/internal/heap"

// JobSpec is the `job` primitive's argument.
type JobSpec struct {
	Command string
	Env     []string
	Inputs  []string
}

// JobResult is what a JobExecutor reports back through the job
// primitive's Receiver.
type JobResult struct {
	Outputs  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Value renders spec as a heap.Record so internal/hash's existing deep
// hashing can key LocalExecutor's memo table, rather than jobexec
// reimplementing its own digest (SPEC_FULL.md DOMAIN STACK).
func (spec JobSpec) Value() heap.Value {
	return &heap.Record{
		SumName:   "JobSpec",
		CtorName:  "JobSpec",
		CtorIndex: 0,
		Fields: []*heap.Promise{
			heap.NewFulfilledPromise(&heap.String{Value: spec.Command}),
			heap.NewFulfilledPromise(heap.NewStringList(spec.Env)),
			heap.NewFulfilledPromise(heap.NewStringList(spec.Inputs)),
		},
	}
}
