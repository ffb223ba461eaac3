package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/astjson"
	"github.com/funvibe/wakecore/internal/config"
	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/jobexec"
	"github.com/funvibe/wakecore/internal/prim"
	"github.com/funvibe/wakecore/internal/resolver"
	"github.com/spf13/cobra"
)

// loadConfig reads the --config file named on cmd, falling back to
// config.Default() when unset — matching funxy's FindConfig/LoadConfig
// pattern of "no config file is not an error".
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newJobExecutor builds the JobExecutor cfg.Job describes. LocalExecutor's
// Runner is a stub that always fails: spec.md §1 keeps process
// execution itself out of this core, so a bare wakecore binary has
// nothing to actually run — a host embedding this core supplies a real
// Runner (see internal/jobexec.Runner's doc comment).
func newJobExecutor(cfg *config.Config) (jobexec.JobExecutor, func() error, error) {
	switch cfg.Job.Backend {
	case "grpc":
		exec, err := jobexec.DialGRPCExecutor(cfg.Job.Address)
		if err != nil {
			return nil, nil, err
		}
		return exec, exec.Close, nil
	case "local", "":
		exec, err := jobexec.NewLocalExecutor(cfg.Job.MemoPath, cfg.Job.Workers, stubRunner)
		if err != nil {
			return nil, nil, err
		}
		return exec, exec.Close, nil
	default:
		return nil, nil, fmt.Errorf("config: unknown job backend %q", cfg.Job.Backend)
	}
}

func stubRunner(_ context.Context, spec jobexec.JobSpec) (jobexec.JobResult, error) {
	return jobexec.JobResult{}, fmt.Errorf("wakecore: no process runner configured for job %q", spec.Command)
}

// loadAndResolve reads path as program JSON, decodes it, and runs the
// resolver, returning the resolved IR even when rep.HasErrors() so
// callers can still render diagnostics.
func loadAndResolve(path string, prims *prim.Registry) (ast.Expr, *diagnostics.Reporter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("wakecore: reading %s: %w", path, err)
	}
	dec := astjson.NewDecoder(prims)
	top, entryPkg, entryName, err := dec.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	ir, rep := resolver.Resolve(top, entryPkg, entryName)
	return ir, rep, nil
}
