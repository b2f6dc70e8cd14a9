package elaborate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/bluwireless/blade/pkg/checker"
	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/parse"
	"github.com/bluwireless/blade/pkg/preprocessor"
	"github.com/bluwireless/blade/pkg/report"
	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/srcpos"
	"github.com/bluwireless/blade/pkg/util"
	"github.com/bluwireless/blade/pkg/validate"
)

// srcposZero builds a position at the start of the named file, used for
// report entries that describe a whole-file stage rather than one line.
func srcposZero(file string) srcpos.Pos {
	return srcpos.Pos{File: file, Line: 0}
}

// sourceExt is the conventional extension for a schema source file
// discovered while walking an Includes directory entry. Only files with
// this extension are registered when a directory is scanned; an explicit
// file path in Includes is registered regardless of its extension (§6
// "includes: ... directories scanned recursively and explicit file
// paths").
const sourceExt = ".bw"

// Options configures the one entry function the core exposes to external
// collaborators (§6 "Entry function"): the CLI driver, and anything else
// that wants a fully elaborated design.Project, populate an Options value
// and call Build.
type Options struct {
	// TopFile is the file build_project starts elaboration from (required).
	TopFile string

	// Includes lists search-path entries: directories are scanned
	// recursively for *.bw files (registered into the preprocessor scope
	// as #include candidates), and explicit file paths are both
	// registered and evaluated as additional top-level sources.
	Includes []string

	// Defines seeds the preprocessor's initial define environment. Values
	// are rendered to the expression text #define would have produced,
	// so a bool becomes 0/1 and everything else is passed through as-is.
	Defines map[string]any

	// MaxDepth bounds module elaboration depth (§4.7 step 5); None means
	// unlimited.
	MaxDepth util.Option[uint]

	// RunChecks selects whether the checker registry runs after
	// elaboration.
	RunChecks bool

	// Waivers lists waiver file paths to load before checking.
	Waivers []string

	// Deps, when non-nil, is appended with the path of every source file
	// touched by the preprocessor or parser (§6 "Dependency file").
	Deps *[]string

	// Profile requests per-stage timing entries in the returned report
	// (emitted as report.SeverityDebug entries under the "profile"
	// category; the CLI driver decides whether to print them).
	Profile bool

	// Quiet is not read by Build: the core accumulates every report entry
	// regardless. The CLI driver's own quiet flag raises its log level to
	// errors only.
	Quiet bool
}

// renderDefine converts an Options.Defines value into the expression text
// the preprocessor's define environment stores (§4.1: defines hold
// unevaluated expression strings).
func renderDefine(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "1"
		}

		return "0"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// discoverFiles walks opts.Includes, registering every matching file into
// scope and returning the scope-name of every explicit file path entry
// (these are evaluated as additional top-level sources, alongside
// TopFile), plus a name->path map used for dependency-file emission.
func discoverFiles(scope *preprocessor.Scope, includes []string) ([]string, map[string]string, error) {
	paths := map[string]string{}

	var explicit []string

	for _, entry := range includes {
		info, err := os.Stat(entry)
		if err != nil {
			return nil, nil, fmt.Errorf("include path %q: %w", entry, err)
		}

		if info.IsDir() {
			err := filepath.WalkDir(entry, func(p string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}

				if d.IsDir() || filepath.Ext(p) != sourceExt {
					return nil
				}

				name := filepath.Base(p)

				raw, err := os.ReadFile(p) //nolint:gosec // path comes from a trusted build configuration
				if err != nil {
					return err
				}

				if err := scope.AddFile(name, string(raw)); err != nil {
					// A directory scan may legitimately see the same base
					// name twice (e.g. a vendored copy); first one wins,
					// matching "file names within a scope are unique" by
					// simply not re-registering.
					return nil //nolint:nilerr
				}

				paths[name] = p

				return nil
			})
			if err != nil {
				return nil, nil, err
			}

			continue
		}

		name := filepath.Base(entry)

		raw, err := os.ReadFile(entry) //nolint:gosec
		if err != nil {
			return nil, nil, err
		}

		if err := scope.AddFile(name, string(raw)); err != nil {
			return nil, nil, err
		}

		paths[name] = entry
		explicit = append(explicit, name)
	}

	return explicit, paths, nil
}

// Build is the core's one entry function (§6 "Entry function"): it runs
// the full pipeline - preprocess, parse, validate, elaborate, and
// (optionally) check - and returns the elaborated design.Project, the
// accumulated diagnostic report, any checker violations (nil when
// RunChecks is false), and a fatal error when the run could not produce a
// project (§7: "a non-empty critical error list means project_or_none is
// absent").
func Build(opts Options) (*design.Project, []report.Entry, []checker.RuleViolation, error) {
	rpt := &report.Report{}

	defines := make(map[string]string, len(opts.Defines))
	for k, v := range opts.Defines {
		defines[k] = renderDefine(v)
	}

	scope := preprocessor.NewScope(defines)

	explicit, paths, err := discoverFiles(scope, opts.Includes)
	if err != nil {
		return nil, rpt.Entries, nil, err
	}

	topName := filepath.Base(opts.TopFile)

	if _, ok := paths[topName]; !ok {
		raw, rerr := os.ReadFile(opts.TopFile) //nolint:gosec
		if rerr != nil {
			return nil, rpt.Entries, nil, fmt.Errorf("top_file: %w", rerr)
		}

		if aerr := scope.AddFile(topName, string(raw)); aerr != nil {
			return nil, rpt.Entries, nil, aerr
		}

		paths[topName] = opts.TopFile
	}

	sources := append([]string{topName}, explicit...)

	lapStart := time.Now()
	lap := func(stage string) { // per-stage timing entries for opts.Profile
		if opts.Profile {
			rpt.Debugf(report.Cat("profile"), srcposZero(topName), "%s: %s", stage, time.Since(lapStart))
		}

		lapStart = time.Now()
	}

	var records []schema.Record

	for _, name := range sources {
		rpt.Infof(report.Cat("preprocess"), srcposZero(name), "preprocessing %s", name)

		text, perr := scope.Evaluate(name)
		if perr != nil {
			return nil, rpt.Entries, nil, fmt.Errorf("preprocess %s: %w", name, perr)
		}

		tags, terr := parse.ReadTags(name, text)
		if terr != nil {
			return nil, rpt.Entries, nil, fmt.Errorf("parse %s: %w", name, terr)
		}

		recs, perrs := parse.ParseTags(tags)
		if len(perrs) > 0 {
			return nil, rpt.Entries, nil, aggregateErr("parse", perrs)
		}

		records = append(records, recs...)

		for _, tag := range tags {
			if schema.LegacyTagNames.Has(tag.Kind) {
				rpt.Warnf(report.Cat("parse", "legacy"), srcposZero(name), "legacy tag %q accepted but ignored", tag.Kind)
			}
		}
	}

	lap("preprocess+parse")

	if verrs := validate.Validate(records); len(verrs) > 0 {
		return nil, rpt.Entries, nil, aggregateErr("validate", verrs)
	}

	lap("validate")

	idx, err := NewIndex(records)
	if err != nil {
		return nil, rpt.Entries, nil, fmt.Errorf("index: %w", err)
	}

	proj := design.NewProject()

	ics, err := ElaborateInterconnects(idx)
	if err != nil {
		return nil, rpt.Entries, nil, fmt.Errorf("elaborate interconnects: %w", err)
	}

	for _, ic := range ics {
		proj.AttachInterconnect(ic)
	}

	defVals, err := ResolveDefines(idx)
	if err != nil {
		return nil, rpt.Entries, nil, fmt.Errorf("resolve defines: %w", err)
	}

	for _, d := range defVals {
		proj.AttachDefine(d)
	}

	cmds, err := ElaborateInstructions(idx)
	if err != nil {
		return nil, rpt.Entries, nil, fmt.Errorf("elaborate instructions: %w", err)
	}

	for _, c := range cmds {
		proj.AttachCommand(c)
	}

	topMod, err := findTopMod(idx, topName)
	if err != nil {
		return nil, rpt.Entries, nil, err
	}

	top, err := ElaborateModule(idx, ics, defVals, topMod, opts.MaxDepth, proj, rpt)
	if err != nil {
		return nil, rpt.Entries, nil, fmt.Errorf("elaborate module %q: %w", topMod, err)
	}

	proj.Top = top

	lap("elaborate")

	if opts.Deps != nil {
		names := scope.Touched()
		sort.Strings(names)

		for _, n := range names {
			if p, ok := paths[n]; ok {
				*opts.Deps = append(*opts.Deps, p)
			} else {
				*opts.Deps = append(*opts.Deps, n)
			}
		}
	}

	var violations []checker.RuleViolation

	if opts.RunChecks {
		var waivers []checker.Waiver

		for _, wf := range opts.Waivers {
			f, werr := os.Open(wf) //nolint:gosec
			if werr != nil {
				return proj, rpt.Entries, nil, fmt.Errorf("waiver file %q: %w", wf, werr)
			}

			parsed, perr := checker.ParseWaivers(f)

			f.Close()

			if perr != nil {
				return proj, rpt.Entries, nil, fmt.Errorf("waiver file %q: %w", wf, perr)
			}

			waivers = append(waivers, parsed...)
		}

		violations, err = checker.Run(proj, waivers)
		if err != nil {
			return proj, rpt.Entries, violations, fmt.Errorf("check: %w", err)
		}

		lap("check")
	}

	return proj, rpt.Entries, violations, nil
}

// findTopMod locates the Mod that build_project should start elaborating
// from: the one declared in topFile, whatever its name. Exactly one Mod per
// top file is expected;
// more than one is ambiguous and is reported as such.
func findTopMod(idx *Index, topFile string) (string, error) {
	var candidates []string

	for name, mod := range idx.Mods {
		if mod.Pos.File == topFile {
			candidates = append(candidates, name)
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("top_file %q declares no Mod", topFile)
	case 1:
		return candidates[0], nil
	default:
		sort.Strings(candidates)
		return "", fmt.Errorf("top_file %q declares multiple Mods %v; ambiguous top", topFile, candidates)
	}
}

// aggregateErr folds a stage's accumulated error list into one error,
// preserving every message (§7 "accumulated across files where possible;
// the pipeline surfaces the aggregate").
func aggregateErr(stage string, errs []error) error {
	msg := fmt.Sprintf("%s: %d error(s)", stage, len(errs))

	for _, e := range errs {
		msg += "\n  " + e.Error()
	}

	return fmt.Errorf("%s", msg)
}
