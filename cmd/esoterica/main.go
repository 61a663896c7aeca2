// Command esoterica evaluates calendar definition files from the shell:
// parse, format, step, floor, round and resolve timestamps, or convert a
// simple month list into a native definition.
package main

import (
	"fmt"
	"os"

	"github.com/keyxmakerx/esoterica/cmd/esoterica/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", cmd.ErrorMessage(err))
		os.Exit(1)
	}
}
