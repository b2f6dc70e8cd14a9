// Command hdlc is the CLI driver for the elaborator (§1 "Out of
// scope (external collaborators)": the command-line driver is a boundary
// concern; this file is a thin wrapper calling into pkg/cli).
package main

import "github.com/bluwireless/blade/pkg/cli"

func main() {
	cli.Execute()
}
