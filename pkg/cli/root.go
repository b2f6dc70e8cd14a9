// Package cli implements the cobra-based CLI driver described in
// SPEC_FULL.md's "Configuration"/"CLI / driver" sections: a thin wrapper
// around the core's entry point elaborate.Build, which itself calls
// checker.Run when checks are requested. It generalizes the teacher's pkg/cmd package (root.go +
// compile.go + check.go), which plays the identical "flag parsing, logrus
// setup, call into the core" role for the Corset compiler.
package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// rootCmd is the base command invoked when hdlc is run with no
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "hdlc",
	Short: "A hardware-design elaborator.",
	Long: `hdlc ingests a hierarchical, tag-based declarative description of
SoC-level hardware and produces a fully resolved design graph suitable for
downstream code generation.`,
}

func init() {
	// Colorize progress/diagnostic output only when stdout is an actual
	// terminal, the same check the teacher's pkg/util/termio.NewTerminal
	// makes before switching a writer into interactive mode.
	isTerm := term.IsTerminal(int(os.Stdout.Fd()))
	log.SetFormatter(&log.TextFormatter{DisableColors: !isTerm, ForceColors: isTerm, FullTimestamp: true})
}

// Execute runs the root command; each subcommand registers itself with
// rootCmd from its own file's init(). Called once from cmd/hdlc/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// GetFlag reads a required bool flag, exiting the process on a programmer
// error (an undeclared flag name), the same defensive style the teacher's
// pkg/cmd/util.go uses throughout.
func GetFlag(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return v
}

// GetString reads a required string flag.
func GetString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return v
}

// GetStringArray reads a required repeatable string flag.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	v, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return v
}

// GetUint reads a required unsigned integer flag.
func GetUint(cmd *cobra.Command, flag string) uint {
	v, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return v
}

func configureLogging(verbose, quiet bool) {
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
