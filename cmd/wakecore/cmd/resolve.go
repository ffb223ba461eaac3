package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/jobexec"
	"github.com/funvibe/wakecore/internal/prim"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <program.json>",
	Short: "Run the resolver only and dump the resolved IR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		if noColor {
			os.Setenv("NO_COLOR", "1")
		}

		ev := evaluator.New()
		prims := prim.Standard(ev, noopExecutor{})

		ir, rep, err := loadAndResolve(args[0], prims)
		if err != nil {
			return err
		}
		diagnostics.Render(os.Stderr, rep.Diagnostics())
		if rep.HasErrors() {
			return fmt.Errorf("wakecore: resolution failed with %d error(s)", len(rep.Errors()))
		}
		pretty.Println(ir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

// noopExecutor lets `resolve` and `hash` build the standard primitive
// registry (so a `job` reference resolves cleanly) without needing a
// working job backend. resolve never evaluates anything; under hash, a
// `job` call evaluates to an exception carrying Submit's error.
type noopExecutor struct{}

func (noopExecutor) Submit(_ context.Context, _ jobexec.JobSpec) (<-chan jobexec.JobResult, error) {
	return nil, fmt.Errorf("wakecore: job submission is unavailable under `resolve` and `hash`")
}
