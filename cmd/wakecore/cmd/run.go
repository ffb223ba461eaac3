package cmd

import (
	"fmt"
	"os"

	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/heap"
	"github.com/funvibe/wakecore/internal/prim"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <program.json>",
	Short: "Resolve and evaluate a program, printing its root value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		if noColor {
			os.Setenv("NO_COLOR", "1")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		exec, closeExec, err := newJobExecutor(cfg)
		if err != nil {
			return err
		}
		defer closeExec()

		ev := evaluator.New()
		prims := prim.Standard(ev, exec)

		ir, rep, err := loadAndResolve(args[0], prims)
		if err != nil {
			return err
		}
		diagnostics.Render(os.Stderr, rep.Diagnostics())
		if rep.HasErrors() {
			return fmt.Errorf("wakecore: resolution failed with %d error(s)", len(rep.Errors()))
		}

		result := ev.Eval(ir)
		if ex, ok := heap.IsException(result); ok {
			return fmt.Errorf("wakecore: %s", ex.Render())
		}
		fmt.Println(renderValue(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func renderValue(v heap.Value) string {
	switch vv := v.(type) {
	case *heap.String:
		return vv.Value
	case *heap.Integer:
		return vv.Value.String()
	case *heap.Double:
		return fmt.Sprintf("%g", vv.Value)
	case *heap.Record:
		return fmt.Sprintf("%s.%s", vv.SumName, vv.CtorName)
	case *heap.Closure:
		return "<closure>"
	default:
		return fmt.Sprintf("%v", v)
	}
}
