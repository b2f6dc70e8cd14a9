package cli

import (
	"os"

	"github.com/bluwireless/blade/pkg/elaborate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd re-elaborates top_file and runs the rule checker against the
// result, applying any waivers given. JSON (de)serialization of an
// already-elaborated design.Project is a boundary concern (§1 "Out of
// scope"), so this subcommand always re-derives the project graph from
// source rather than reading a serialized one.
var checkCmd = &cobra.Command{
	Use:   "check [flags] top_file",
	Short: "run the rule checker against an elaborated design.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(GetFlag(cmd, "verbose"), GetFlag(cmd, "quiet"))

		opts := elaborate.Options{
			TopFile:   args[0],
			Includes:  GetStringArray(cmd, "include"),
			Defines:   parseDefines(GetStringArray(cmd, "define")),
			RunChecks: true,
			Waivers:   GetStringArray(cmd, "waiver"),
			Quiet:     GetFlag(cmd, "quiet"),
		}

		_, entries, violations, err := elaborate.Build(opts)
		if err != nil {
			log.WithError(err).Error("elaboration failed")
			os.Exit(1)
		}

		for _, e := range entries {
			logEntry(e)
		}

		for _, v := range violations {
			logViolation(v)
		}

		if hasUnwaivedViolations(violations) {
			os.Exit(1)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringArrayP("include", "I", []string{}, "search path entry: directory or explicit file")
	checkCmd.Flags().StringArrayP("define", "D", []string{}, "initial define NAME=VALUE")
	checkCmd.Flags().StringArray("waiver", []string{}, "waiver file to apply when checking")
	checkCmd.Flags().Bool("quiet", false, "suppress progress reporting")
	checkCmd.Flags().Bool("verbose", false, "enable debug logging")
}
