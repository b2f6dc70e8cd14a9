package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/bluwireless/blade/pkg/checker"
	"github.com/bluwireless/blade/pkg/elaborate"
	"github.com/bluwireless/blade/pkg/report"
	"github.com/bluwireless/blade/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var elaborateCmd = &cobra.Command{
	Use:   "elaborate [flags] top_file",
	Short: "elaborate a design into a fully resolved design graph.",
	Long: `Run the full pipeline (preprocess, parse, validate, elaborate, and
optionally check) over top_file and its includes, producing a design graph.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(GetFlag(cmd, "verbose"), GetFlag(cmd, "quiet"))

		opts := elaborate.Options{
			TopFile:   args[0],
			Includes:  GetStringArray(cmd, "include"),
			Defines:   parseDefines(GetStringArray(cmd, "define")),
			RunChecks: GetFlag(cmd, "check"),
			Waivers:   GetStringArray(cmd, "waiver"),
			Profile:   GetFlag(cmd, "profile"),
			Quiet:     GetFlag(cmd, "quiet"),
		}

		if depth := GetUint(cmd, "max-depth"); depth > 0 {
			opts.MaxDepth = util.Some(depth)
		}

		var deps []string
		if dest := GetString(cmd, "deps"); dest != "" {
			opts.Deps = &deps
		}

		proj, entries, violations, err := elaborate.Build(opts)
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

		if dest := GetString(cmd, "deps"); dest != "" {
			if err := writeDepsFile(dest, args[0], deps); err != nil {
				log.WithError(err).Error("writing dependency file failed")
				os.Exit(1)
			}
		}

		// JSON serialization of the design graph is a boundary concern
		// (§1 "Out of scope (external collaborators)"): this driver only
		// reports the elaborated top block's name, leaving the interchange
		// format itself to the downstream tool that owns it.
		if GetString(cmd, "output") != "" {
			log.WithField("top", proj.Top.Name).Info("elaborated project ready for serialization")
		}

		if entriesHaveErrors(entries) || hasUnwaivedViolations(violations) {
			os.Exit(1)
		}
	},
}

// parseDefines turns repeated "-D NAME=VALUE" flags into the map Options
// expects, mirroring the teacher's buildMetadata in pkg/cmd/compile.go.
func parseDefines(items []string) map[string]any {
	out := make(map[string]any, len(items))

	for _, item := range items {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			fmt.Printf("malformed define %q, expected NAME=VALUE\n", item)
			os.Exit(2)
		}

		out[parts[0]] = parts[1]
	}

	return out
}

func logEntry(e report.Entry) {
	fields := log.Fields{"category": e.Category.String()}
	if e.Pos.File != "" {
		fields["pos"] = e.Pos.String()
	}

	entry := log.WithFields(fields)

	switch e.Severity {
	case report.SeverityDebug:
		entry.Debug(e.Message)
	case report.SeverityInfo:
		entry.Info(e.Message)
	case report.SeverityWarning:
		entry.Warn(e.Message)
	case report.SeverityError:
		entry.Error(e.Message)
	}
}

func logViolation(v checker.RuleViolation) {
	fields := log.Fields{"check": v.CheckName, "node": v.Node.NodeKind().String()}

	if v.Waived {
		log.WithFields(fields).Warn(v.Message + " (waived)")
	} else {
		log.WithFields(fields).Error(v.Message)
	}
}

func entriesHaveErrors(entries []report.Entry) bool {
	for _, e := range entries {
		if e.Severity == report.SeverityError {
			return true
		}
	}

	return false
}

func hasUnwaivedViolations(violations []checker.RuleViolation) bool {
	for _, v := range violations {
		if !v.Waived {
			return true
		}
	}

	return false
}

// writeDepsFile writes a Make-style dependency rule (§6 "Dependency file").
func writeDepsFile(path, target string, deps []string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s:", target)

	for _, d := range deps {
		fmt.Fprintf(&sb, " %s", d)
	}

	sb.WriteString("\n")

	return os.WriteFile(path, []byte(sb.String()), 0o644) //nolint:gosec
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(elaborateCmd)
	elaborateCmd.Flags().StringArrayP("include", "I", []string{}, "search path entry: directory or explicit file")
	elaborateCmd.Flags().StringArrayP("define", "D", []string{}, "initial define NAME=VALUE")
	elaborateCmd.Flags().Uint("max-depth", 0, "maximum module elaboration depth (0 = unlimited)")
	elaborateCmd.Flags().Bool("check", false, "run the rule checker after elaboration")
	elaborateCmd.Flags().StringArray("waiver", []string{}, "waiver file to apply when checking")
	elaborateCmd.Flags().StringP("output", "o", "", "when set, log that the project is ready for serialization (no JSON file is written)")
	elaborateCmd.Flags().String("deps", "", "write a Make-style dependency file to this path")
	elaborateCmd.Flags().Bool("profile", false, "collect per-stage timings")
	elaborateCmd.Flags().Bool("quiet", false, "suppress progress reporting")
	elaborateCmd.Flags().Bool("verbose", false, "enable debug logging")
}
