// Command rxclaims runs the pharmacy claims analytics batch.
//
//	rxclaims run --claims data/claims --pharmacies data/pharmacies --reverts data/reverts
//	rxclaims validate --config config.yaml
package main

import (
	"fmt"
	"io"
	"os"

	// Every storage backend is compiled in; the config picks one.
	_ "rxclaims/internal/storage/all"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI with args and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "rxclaims: %v\n", err)
		return 1
	}
	return 0
}
