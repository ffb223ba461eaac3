package jobexec

import "context"

// JobExecutor submits a JobSpec for execution outside the evaluator's
// heap and reports its JobResult back asynchronously. Submit itself
// must not block on the job finishing — it returns as soon as the
// submission is accepted, matching the `job` primitive's deferred-
// receiver shape (spec.md §4.4, §5).
type JobExecutor interface {
	Submit(ctx context.Context, spec JobSpec) (<-chan JobResult, error)
}
