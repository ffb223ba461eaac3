package cmd

import (
	"fmt"
	"os"

	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/hash"
	"github.com/funvibe/wakecore/internal/heap"
	"github.com/funvibe/wakecore/internal/prim"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <program.json>",
	Short: "Evaluate a program and print its root value's deep hash",
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

		result := ev.Eval(ir)
		if ex, ok := heap.IsException(result); ok {
			return fmt.Errorf("wakecore: %s", ex.Render())
		}

		h := hash.New(ev)
		fmt.Println(h.Hash(result).String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}
