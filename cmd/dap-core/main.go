// Command dap-core drives a DAP adapter process through the handshake and
// the rest of its lifecycle from the command line, using this module's
// requests and handlers packages as its client implementation.
package main

import (
	"fmt"
	"os"

	"github.com/kory-oss/dap-core/cmd/dap-core/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
