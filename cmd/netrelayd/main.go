// Command netrelayd drives the transport core from the command line:
// serve runs a ServerMode peer accepting connections, connect runs a
// client that discovers or dials a server directly (§4.5's CLI-facing
// entrypoints are an addition beyond the distilled spec, grounded in
// malbeclabs-doublezero/e2e/internal/devnet/cmd's cobra root command).
package main

import (
	"os"

	"netrelay-go/cmd/netrelayd/cmd"
)

func main() {
	os.Exit(cmd.Run())
}
