// Command poolctl drives a ThreadPool from the command line for manual
// smoke-testing: submit N synthetic jobs, print live stats while they run,
// then shut the pool down. It is demo tooling only, not part of the
// library's public contract.
package main

import (
	"os"

	"github.com/corvidlabs/workerpool/cmd/poolctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
