package coveragerc

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Loader reads one configuration file into its typed form. The zero knobs
// load leniently: unknown sections and options are logged and skipped, the
// process environment resolves $-references, and template tokens pass
// through as literal text.
//
// Loading happens once, at tool start. The returned Config is immutable and
// there is no watch or reload surface.
type Loader struct {
	// Logger receives diagnostics for everything the lenient path skips.
	// Defaults to a no-op logger.
	Logger zerolog.Logger

	// Env resolves environment variable references in option values. A nil
	// Env reads the process environment.
	Env LookupFunc

	// Strict promotes skipped diagnostics to errors: unknown sections and
	// options fail with ErrUnknownOption, and the run and report sections
	// must both be present.
	Strict bool

	// Mode declares the lifecycle stage of the file. In ModeResolved a
	// surviving placeholder token fails with ErrUnresolvedPlaceholder; in
	// ModeTemplate (the default) tokens are expected and kept.
	Mode LintMode

	path string
}

// NewLoader returns a lenient loader for the file at path.
func NewLoader(path string) *Loader {
	return &Loader{Logger: zerolog.Nop(), path: path}
}

// Load reads, parses, and types the configuration file.
func (l *Loader) Load() (*Config, error) {
	doc, err := ParseFile(l.path)
	if err != nil {
		return nil, err
	}
	return l.LoadDocument(doc)
}

// LoadDocument types an already parsed document using the loader's knobs.
func (l *Loader) LoadDocument(doc *Document) (*Config, error) {
	if l.Mode == ModeResolved {
		for _, sec := range doc.Sections() {
			for _, opt := range sec.Options {
				for _, v := range opt.Values {
					if tok := placeholderPattern.FindString(v.Text); tok != "" {
						return nil, parseErrorf(doc.Name, v.Line, ErrUnresolvedPlaceholder,
							"option %q: unresolved placeholder %s", opt.Key, tok)
					}
				}
			}
		}
	}

	cfg := DefaultConfig()
	cfg.SourceName = doc.Name

	for _, sec := range doc.Sections() {
		if !knownSections[sec.Name] {
			if l.Strict {
				return nil, parseErrorf(doc.Name, sec.Line, ErrUnknownOption, "unknown section [%s]", sec.Name)
			}
			l.Logger.Warn().
				Str("file", doc.Name).
				Str("section", sec.Name).
				Int("line", sec.Line).
				Msg("ignoring unknown section")
			continue
		}
		for _, opt := range sec.Options {
			spec, known := lookupOption(sec.Name, opt.Key)
			if !known {
				if l.Strict {
					return nil, parseErrorf(doc.Name, opt.Line, ErrUnknownOption,
						"unknown option %q in section [%s]", opt.Key, sec.Name)
				}
				l.Logger.Warn().
					Str("file", doc.Name).
					Str("section", sec.Name).
					Str("option", opt.Key).
					Int("line", opt.Line).
					Msg("ignoring unknown option")
				continue
			}

			values, err := l.expandValues(doc.Name, opt)
			if err != nil {
				return nil, err
			}
			if err := spec.assign(cfg, values, opt.Key, doc.Name, opt.Line); err != nil {
				return nil, err
			}
		}
	}

	if l.Strict {
		for _, name := range requiredSections {
			if !doc.HasSection(name) {
				return nil, fmt.Errorf("%s: %w: [%s]", doc.Name, ErrMissingSection, name)
			}
		}
	}

	if err := validateConfig(cfg, doc.Name); err != nil {
		return nil, err
	}

	l.Logger.Debug().
		Str("file", doc.Name).
		Int("omit", len(cfg.Run.Omit)).
		Int("exclude", len(cfg.ExcludePatterns())).
		Msg("configuration loaded")
	return cfg, nil
}

// expandValues resolves $-references in every value line of the option.
// A value that expands to nothing is dropped, the way an unset variable
// empties its list entry.
func (l *Loader) expandValues(file string, opt *Option) ([]string, error) {
	out := make([]string, 0, len(opt.Values))
	for _, v := range opt.Values {
		expanded, err := ExpandEnv(v.Text, l.Env)
		if err != nil {
			return nil, parseErrorf(file, v.Line, ErrUndefinedVariable, "option %q: %v", opt.Key, err)
		}
		if expanded == "" {
			continue
		}
		out = append(out, expanded)
	}
	return out, nil
}

// Load reads the configuration file at path with default knobs.
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}
