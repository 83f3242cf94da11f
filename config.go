package coveragerc

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultExcludeLine is the tool's built-in exclusion fragment. It is in
// effect only while exclude_lines is absent from the file; a present
// exclude_lines replaces it entirely, which is why real configs restate it
// as their first entry.
const DefaultExcludeLine = "pragma: no cover"

// Config is the typed view of one coverage configuration file.
type Config struct {
	// SourceName labels where the config came from, for diagnostics.
	SourceName string

	Run    RunConfig
	Report ReportConfig
}

// RunConfig holds the [run] section, the options steering measurement.
type RunConfig struct {
	Source        []string
	Omit          []string
	Include       []string
	Branch        bool
	Parallel      bool
	RelativeFiles bool
	DataFile      string
}

// ReportConfig holds the [report] section, the options steering reporting.
type ReportConfig struct {
	ExcludeLines    []string
	ExcludeAlso     []string
	PartialBranches []string
	Omit            []string
	Include         []string
	ShowMissing     bool
	SkipCovered     bool
	SkipEmpty       bool
	FailUnder       float64
	Precision       int
}

// DefaultConfig returns the configuration in effect when no file is present:
// everything zero except the built-in exclusion fragment.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			ExcludeLines: []string{DefaultExcludeLine},
		},
	}
}

// ExcludePatterns returns the effective exclusion fragments: exclude_lines
// (file value or the built-in default) followed by exclude_also, which
// appends rather than replaces.
func (c *Config) ExcludePatterns() []string {
	out := make([]string, 0, len(c.Report.ExcludeLines)+len(c.Report.ExcludeAlso))
	out = append(out, c.Report.ExcludeLines...)
	out = append(out, c.Report.ExcludeAlso...)
	return out
}

// EffectiveOmit returns the omit set used for reporting: the report-level
// list when set, the run-level list otherwise.
func (c *Config) EffectiveOmit() []string {
	if len(c.Report.Omit) > 0 {
		return c.Report.Omit
	}
	return c.Run.Omit
}

// OmitMatcher compiles the effective omit set.
func (c *Config) OmitMatcher() (*Matcher, error) {
	return NewMatcher(c.EffectiveOmit())
}

// LineExcluder compiles the effective exclusion fragments.
func (c *Config) LineExcluder() (*LineExcluder, error) {
	return NewLineExcluder(c.ExcludePatterns())
}

// ---------------------------------------------------------------
// option registry
// ---------------------------------------------------------------

// knownSections are the sections the typed model understands. Anything else
// in a file is a diagnostic, not silently dropped.
var knownSections = map[string]bool{
	"run":    true,
	"report": true,
}

type optionSpec struct {
	assign func(c *Config, values []string, key, file string, line int) error
}

func listOpt(set func(*Config, []string)) optionSpec {
	return optionSpec{assign: func(c *Config, values []string, _, _ string, _ int) error {
		set(c, values)
		return nil
	}}
}

func stringOpt(set func(*Config, string)) optionSpec {
	return optionSpec{assign: func(c *Config, values []string, key, file string, line int) error {
		v, err := singleValue(values, key, file, line)
		if err != nil {
			return err
		}
		set(c, v)
		return nil
	}}
}

func boolOpt(set func(*Config, bool)) optionSpec {
	return optionSpec{assign: func(c *Config, values []string, key, file string, line int) error {
		v, err := singleValue(values, key, file, line)
		if err != nil {
			return err
		}
		b, ok := parseBool(v)
		if !ok {
			return parseErrorf(file, line, nil, "option %q: not a boolean: %q", key, v)
		}
		set(c, b)
		return nil
	}}
}

func intOpt(set func(*Config, int)) optionSpec {
	return optionSpec{assign: func(c *Config, values []string, key, file string, line int) error {
		v, err := singleValue(values, key, file, line)
		if err != nil {
			return err
		}
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return parseErrorf(file, line, nil, "option %q: not an integer: %q", key, v)
		}
		set(c, n)
		return nil
	}}
}

func floatOpt(set func(*Config, float64)) optionSpec {
	return optionSpec{assign: func(c *Config, values []string, key, file string, line int) error {
		v, err := singleValue(values, key, file, line)
		if err != nil {
			return err
		}
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return parseErrorf(file, line, nil, "option %q: not a number: %q", key, v)
		}
		set(c, f)
		return nil
	}}
}

func singleValue(values []string, key, file string, line int) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	if len(values) > 1 {
		return "", parseErrorf(file, line, nil, "option %q takes a single value", key)
	}
	return values[0], nil
}

// optionRegistry maps "section.option" to its typed assignment. Keys are
// lowercase; lookups lowercase the file's spelling first.
var optionRegistry = map[string]optionSpec{
	"run.source":         listOpt(func(c *Config, v []string) { c.Run.Source = v }),
	"run.omit":           listOpt(func(c *Config, v []string) { c.Run.Omit = v }),
	"run.include":        listOpt(func(c *Config, v []string) { c.Run.Include = v }),
	"run.branch":         boolOpt(func(c *Config, v bool) { c.Run.Branch = v }),
	"run.parallel":       boolOpt(func(c *Config, v bool) { c.Run.Parallel = v }),
	"run.relative_files": boolOpt(func(c *Config, v bool) { c.Run.RelativeFiles = v }),
	"run.data_file":      stringOpt(func(c *Config, v string) { c.Run.DataFile = v }),

	"report.exclude_lines":    listOpt(func(c *Config, v []string) { c.Report.ExcludeLines = v }),
	"report.exclude_also":     listOpt(func(c *Config, v []string) { c.Report.ExcludeAlso = v }),
	"report.partial_branches": listOpt(func(c *Config, v []string) { c.Report.PartialBranches = v }),
	"report.omit":             listOpt(func(c *Config, v []string) { c.Report.Omit = v }),
	"report.include":          listOpt(func(c *Config, v []string) { c.Report.Include = v }),
	"report.show_missing":     boolOpt(func(c *Config, v bool) { c.Report.ShowMissing = v }),
	"report.skip_covered":     boolOpt(func(c *Config, v bool) { c.Report.SkipCovered = v }),
	"report.skip_empty":       boolOpt(func(c *Config, v bool) { c.Report.SkipEmpty = v }),
	"report.fail_under":       floatOpt(func(c *Config, v float64) { c.Report.FailUnder = v }),
	"report.precision":        intOpt(func(c *Config, v int) { c.Report.Precision = v }),
}

func lookupOption(section, key string) (optionSpec, bool) {
	spec, ok := optionRegistry[strings.ToLower(section)+"."+strings.ToLower(key)]
	return spec, ok
}

// parseBool accepts the tool's boolean spellings.
func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(s) {
	case "1", "yes", "true", "on":
		return true, true
	case "0", "no", "false", "off":
		return false, true
	}
	return false, false
}

// validateConfig applies the semantic checks that outlive parsing: every
// pattern set compiles, numeric options stay in range.
func validateConfig(c *Config, file string) error {
	label := file
	if label == "" {
		label = "config"
	}
	if _, err := NewMatcher(c.Run.Omit); err != nil {
		return fmt.Errorf("%s: [run] omit: %w", label, err)
	}
	if _, err := NewMatcher(c.Report.Omit); err != nil {
		return fmt.Errorf("%s: [report] omit: %w", label, err)
	}
	if _, err := NewLineExcluder(c.ExcludePatterns()); err != nil {
		return fmt.Errorf("%s: [report] exclude_lines: %w", label, err)
	}
	if _, err := NewLineExcluder(c.Report.PartialBranches); err != nil {
		return fmt.Errorf("%s: [report] partial_branches: %w", label, err)
	}
	if c.Report.Precision < 0 {
		return fmt.Errorf("%s: [report] precision: must not be negative, got %d", label, c.Report.Precision)
	}
	if c.Report.FailUnder < 0 || c.Report.FailUnder > 100 {
		return fmt.Errorf("%s: [report] fail_under: must be between 0 and 100, got %v", label, c.Report.FailUnder)
	}
	return nil
}
