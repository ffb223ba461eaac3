// Command wakecore drives the resolver/evaluator core over a
// JSON-encoded program (spec.md §1's Non-goals keep a wake-syntax
// parser out of scope). See internal/astjson for the JSON format.
package main

import (
	"fmt"
	"os"

	"github.com/funvibe/wakecore/cmd/wakecore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
