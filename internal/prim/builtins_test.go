package prim_test

import (
	"context"
	"testing"

	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/heap"
	"github.com/funvibe/wakecore/internal/jobexec"
	"github.com/funvibe/wakecore/internal/prim"
	"github.com/stretchr/testify/require"
)

// fakeExecutor stands in for a real jobexec.JobExecutor (LocalExecutor
// or GRPCExecutor): Submit must not block, and the result arrives
// later on its own goroutine, exactly as spec.md §4.4's asynchronous
// primitive protocol requires.
type fakeExecutor struct {
	result jobexec.JobResult
}

func (f *fakeExecutor) Submit(ctx context.Context, spec jobexec.JobSpec) (<-chan jobexec.JobResult, error) {
	ch := make(chan jobexec.JobResult, 1)
	go func() {
		ch <- f.result
	}()
	return ch, nil
}

func callSync(t *testing.T, entry prim.Entry, args []heap.Value) heap.Value {
	t.Helper()
	var result heap.Value
	entry.Fn(entry.Data, args, heap.ReceiverFunc(func(v heap.Value) { result = v }))
	require.NotNil(t, result, "primitive must invoke its receiver")
	return result
}

// TestJobPrimitiveRoundTripsThroughEvaluatorDefer exercises the `job`
// primitive's full asynchronous path: Submit returns immediately, the
// result is delivered on the executor's own goroutine, and the
// receiver only actually fires once that completion has been handed
// back to the Evaluator's single worker via Defer (spec.md §4.4, §5).
func TestJobPrimitiveRoundTripsThroughEvaluatorDefer(t *testing.T) {
	ev := evaluator.New()
	exec := &fakeExecutor{result: jobexec.JobResult{ExitCode: 0, Stdout: "done", Outputs: []string{"out.o"}}}
	reg := prim.Standard(ev, exec)

	entry, ok := reg.Lookup("job")
	require.True(t, ok)

	var result heap.Value
	done := false
	entry.Fn(entry.Data, []heap.Value{
		&heap.String{Value: "gcc -c foo.c"},
		heap.NewStringList(nil),
		heap.NewStringList([]string{"foo.c"}),
	}, heap.ReceiverFunc(func(v heap.Value) {
		result = v
		done = true
	}))

	require.False(t, done, "job must not resolve synchronously")
	ev.RunUntilDone(func() bool { return done })

	rec, ok := result.(*heap.Record)
	require.True(t, ok)
	require.Equal(t, "JobResult", rec.SumName)
	exitCode, _ := rec.Fields[0].Value()
	require.Equal(t, heap.NewInteger(0), exitCode)
	stdout, _ := rec.Fields[1].Value()
	require.Equal(t, &heap.String{Value: "done"}, stdout)
}

func TestJobPrimitiveRejectsNonStringCommand(t *testing.T) {
	ev := evaluator.New()
	exec := &fakeExecutor{}
	reg := prim.Standard(ev, exec)
	entry, _ := reg.Lookup("job")

	result := callSync(t, entry, []heap.Value{heap.NewInteger(1), heap.NewStringList(nil), heap.NewStringList(nil)})
	_, ok := result.(*heap.Exception)
	require.True(t, ok, "a non-String command must raise an Exception, not panic")
}

func TestHashPrimitiveIsDeterministic(t *testing.T) {
	ev := evaluator.New()
	reg := prim.Standard(ev, &fakeExecutor{})
	entry, _ := reg.Lookup("hash")

	v := &heap.String{Value: "same input"}
	r1 := callSync(t, entry, []heap.Value{v})
	r2 := callSync(t, entry, []heap.Value{v})
	require.Equal(t, r1, r2)
}

func TestHashShallowPrimitiveDiffersFromFullHash(t *testing.T) {
	ev := evaluator.New()
	reg := prim.Standard(ev, &fakeExecutor{})
	hashEntry, _ := reg.Lookup("hash")
	shallowEntry, _ := reg.Lookup("hash.shallow")

	v := &heap.String{Value: "abc"}
	full := callSync(t, hashEntry, []heap.Value{v})
	shallow := callSync(t, shallowEntry, []heap.Value{v})
	require.NotEqual(t, full, shallow, "a discriminator-only tag must not equal the full structural digest")
}

func TestRegexCompileMatchTokenizeReplace(t *testing.T) {
	ev := evaluator.New()
	reg := prim.Standard(ev, &fakeExecutor{})

	compile, _ := reg.Lookup("regexp.compile")
	match, _ := reg.Lookup("regexp.match")
	tokenize, _ := reg.Lookup("regexp.tokenize")
	replace, _ := reg.Lookup("regexp.replace")

	re := callSync(t, compile, []heap.Value{&heap.String{Value: `[0-9]+`}})
	_, ok := re.(*heap.RegExp)
	require.True(t, ok)

	matched := callSync(t, match, []heap.Value{re, &heap.String{Value: "abc123"}})
	matchedRec, ok := matched.(*heap.Record)
	require.True(t, ok)
	require.Equal(t, "True", matchedRec.CtorName)

	notMatched := callSync(t, match, []heap.Value{re, &heap.String{Value: "abcxyz"}})
	notMatchedRec := notMatched.(*heap.Record)
	require.Equal(t, "False", notMatchedRec.CtorName)

	tokens := callSync(t, tokenize, []heap.Value{re, &heap.String{Value: "a1 b22 c333"}})
	tokensRec, ok := tokens.(*heap.Record)
	require.True(t, ok)
	require.Equal(t, "List", tokensRec.SumName)
	require.Equal(t, "Cons", tokensRec.CtorName)

	replaced := callSync(t, replace, []heap.Value{re, &heap.String{Value: "a1b22"}, &heap.String{Value: "#"}})
	require.Equal(t, &heap.String{Value: "a#b#"}, replaced)
}

func TestRegexCompileInvalidPatternRaisesException(t *testing.T) {
	ev := evaluator.New()
	reg := prim.Standard(ev, &fakeExecutor{})
	compile, _ := reg.Lookup("regexp.compile")

	result := callSync(t, compile, []heap.Value{&heap.String{Value: `[`}})
	_, ok := result.(*heap.Exception)
	require.True(t, ok)
}
