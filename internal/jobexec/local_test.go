package jobexec_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/funvibe/wakecore/internal/jobexec"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T, run jobexec.Runner) *jobexec.LocalExecutor {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "memo.db")
	x, err := jobexec.NewLocalExecutor(dbPath, 2, run)
	require.NoError(t, err)
	t.Cleanup(func() { x.Close() })
	return x
}

// TestLocalExecutorMemoizesByJobSpecHash covers SPEC_FULL.md's sqlite
// memo table: a second Submit of an identical JobSpec must not invoke
// the Runner again, and must return the exact result the first run
// produced.
func TestLocalExecutorMemoizesByJobSpecHash(t *testing.T) {
	var calls int32
	run := func(ctx context.Context, spec jobexec.JobSpec) (jobexec.JobResult, error) {
		atomic.AddInt32(&calls, 1)
		return jobexec.JobResult{ExitCode: 0, Stdout: "built " + spec.Command}, nil
	}
	x := newExecutor(t, run)
	spec := jobexec.JobSpec{Command: "gcc -c foo.c", Inputs: []string{"foo.c"}}

	ch1, err := x.Submit(context.Background(), spec)
	require.NoError(t, err)
	r1 := <-ch1
	require.Equal(t, "built gcc -c foo.c", r1.Stdout)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	ch2, err := x.Submit(context.Background(), spec)
	require.NoError(t, err)
	r2 := <-ch2
	require.Equal(t, r1, r2)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls), "second Submit of an identical spec must hit the memo table")
}

func TestLocalExecutorDistinctSpecsRunIndependently(t *testing.T) {
	var calls int32
	run := func(ctx context.Context, spec jobexec.JobSpec) (jobexec.JobResult, error) {
		atomic.AddInt32(&calls, 1)
		return jobexec.JobResult{ExitCode: 0, Stdout: spec.Command}, nil
	}
	x := newExecutor(t, run)

	ch1, err := x.Submit(context.Background(), jobexec.JobSpec{Command: "a"})
	require.NoError(t, err)
	<-ch1

	ch2, err := x.Submit(context.Background(), jobexec.JobSpec{Command: "b"})
	require.NoError(t, err)
	r2 := <-ch2

	require.Equal(t, "b", r2.Stdout)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestLocalExecutorRecordsRunnerErrorAsFailedResult(t *testing.T) {
	run := func(ctx context.Context, spec jobexec.JobSpec) (jobexec.JobResult, error) {
		return jobexec.JobResult{}, context.DeadlineExceeded
	}
	x := newExecutor(t, run)

	ch, err := x.Submit(context.Background(), jobexec.JobSpec{Command: "fails"})
	require.NoError(t, err)
	r := <-ch
	require.Equal(t, -1, r.ExitCode)
	require.Contains(t, r.Stderr, context.DeadlineExceeded.Error())
}
