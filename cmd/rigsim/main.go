// Command rigsim runs the propulsion test rig against a simulated board.
//
// The console is wired to the terminal: stdin is the serial receive line and stdout the
// transmit line. Logs go to stderr.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
