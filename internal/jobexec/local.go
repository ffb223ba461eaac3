package jobexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/hash"
)

// Runner actually performs one job outside the evaluator's heap — the
// one piece spec.md's Non-goals keep out of this core ("process
// execution... not part of the core"). The `run` CLI wires a stub
// Runner that fails every job; tests inject a fake one.
type Runner func(ctx context.Context, spec JobSpec) (JobResult, error)

// LocalExecutor runs jobs on a bounded in-process worker pool and
// memoizes completed results in a local sqlite table keyed by the job
// spec's deep hash — a bounded, in-repo stand-in for the external job
// cache spec.md §1 otherwise treats as out of scope (SPEC_FULL.md
// DOMAIN STACK).
type LocalExecutor struct {
	run Runner
	db  *sql.DB
	sem chan struct{}

	mu     sync.Mutex
	hasher *hash.Hasher
}

// NewLocalExecutor opens (creating if needed) the sqlite memo database
// at dbPath. Each Submit that misses the memo runs on its own
// goroutine; a semaphore of size workers bounds how many Runner calls
// are in flight at once.
func NewLocalExecutor(dbPath string, workers int, run Runner) (*LocalExecutor, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("jobexec: opening memo database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS job_results (
		digest TEXT PRIMARY KEY,
		exit_code INTEGER NOT NULL,
		stdout TEXT NOT NULL,
		stderr TEXT NOT NULL,
		outputs TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("jobexec: creating memo table: %w", err)
	}
	if workers < 1 {
		workers = 1
	}
	return &LocalExecutor{
		run:    run,
		db:     db,
		sem:    make(chan struct{}, workers),
		hasher: hash.New(evaluator.New()),
	}, nil
}

func (x *LocalExecutor) Close() error {
	return x.db.Close()
}

// Submit memoizes on spec's deep hash: a cache hit returns the stored
// result on an already-closed channel without spending a worker slot.
func (x *LocalExecutor) Submit(ctx context.Context, spec JobSpec) (<-chan JobResult, error) {
	id := uuid.New()

	x.mu.Lock()
	digest := x.hasher.Hash(spec.Value())
	x.mu.Unlock()

	out := make(chan JobResult, 1)

	cached, ok, err := x.lookup(digest)
	if err != nil {
		return nil, fmt.Errorf("jobexec: memo lookup for job %s: %w", id, err)
	}
	if ok {
		out <- cached
		close(out)
		return out, nil
	}

	go func() {
		x.sem <- struct{}{}
		defer func() { <-x.sem }()

		result, err := x.run(ctx, spec)
		if err != nil {
			result = JobResult{ExitCode: -1, Stderr: err.Error()}
		}
		if serr := x.store(digest, result); serr != nil {
			result.Stderr += fmt.Sprintf("\njobexec: memo store failed for job %s: %v", id, serr)
		}
		out <- result
		close(out)
	}()

	return out, nil
}

func (x *LocalExecutor) lookup(digest hash.Digest) (JobResult, bool, error) {
	row := x.db.QueryRow(`SELECT exit_code, stdout, stderr, outputs FROM job_results WHERE digest = ?`, digest.String())
	var r JobResult
	var outputs string
	if err := row.Scan(&r.ExitCode, &r.Stdout, &r.Stderr, &outputs); err != nil {
		if err == sql.ErrNoRows {
			return JobResult{}, false, nil
		}
		return JobResult{}, false, err
	}
	if outputs != "" {
		r.Outputs = strings.Split(outputs, "\n")
	}
	return r, true, nil
}

func (x *LocalExecutor) store(digest hash.Digest, r JobResult) error {
	_, err := x.db.Exec(
		`INSERT OR REPLACE INTO job_results (digest, exit_code, stdout, stderr, outputs) VALUES (?, ?, ?, ?, ?)`,
		digest.String(), r.ExitCode, r.Stdout, r.Stderr, strings.Join(r.Outputs, "\n"),
	)
	return err
}
