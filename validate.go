package coveragerc

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// LintMode selects which form of the artifact is being checked.
type LintMode int

const (
	// ModeTemplate checks the file as kept in source control, with its
	// placeholder tokens still unresolved.
	ModeTemplate LintMode = iota

	// ModeResolved checks the file as handed to the coverage tool, after
	// build tooling substituted every token.
	ModeResolved
)

// Issue is one structural finding, anchored to the line it concerns.
// A missing section has no line to point at and reports Line 0.
type Issue struct {
	Line    int
	Section string
	Option  string
	Message string
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", i.Line)
	}
	if i.Section != "" {
		fmt.Fprintf(&b, "[%s] ", i.Section)
	}
	if i.Option != "" {
		fmt.Fprintf(&b, "%s: ", i.Option)
	}
	b.WriteString(i.Message)
	return b.String()
}

var requiredSections = []string{"run", "report"}

// Lint parses the data and checks the structural properties a coverage
// config must hold: exactly the run and report sections, omit entries that
// compile as globs, exclusion entries that compile as regular expressions,
// and placeholder tokens in the state the mode expects. A parse failure is
// returned as the error; everything else is reported as issues, ordered by
// line.
func Lint(data []byte, mode LintMode) ([]Issue, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return LintDocument(doc, mode), nil
}

// LintDocument runs the same checks as Lint on an already parsed document.
func LintDocument(doc *Document, mode LintMode) []Issue {
	var issues []Issue
	add := func(line int, section, option, format string, args ...any) {
		issues = append(issues, Issue{
			Line:    line,
			Section: section,
			Option:  option,
			Message: fmt.Sprintf(format, args...),
		})
	}

	for _, sec := range doc.Sections() {
		if !knownSections[sec.Name] {
			add(sec.Line, sec.Name, "", "unknown section")
			continue
		}
		for _, opt := range sec.Options {
			if _, known := lookupOption(sec.Name, opt.Key); !known {
				add(opt.Line, sec.Name, opt.Key, "unknown option")
			}
		}
	}
	for _, name := range requiredSections {
		if !doc.HasSection(name) {
			add(0, name, "", "missing section")
		}
	}

	lintGlobs(doc, add)
	lintFragments(doc, mode, add)
	lintPlaceholders(doc, mode, add)

	sort.SliceStable(issues, func(a, b int) bool { return issues[a].Line < issues[b].Line })
	return issues
}

type addFunc func(line int, section, option, format string, args ...any)

// lintGlobs checks that every path-pattern entry survives glob translation.
// The translator rejects nothing but an unterminated character class, so a
// finding here is rare and always real.
func lintGlobs(doc *Document, add addFunc) {
	for _, loc := range [...][2]string{
		{"run", "omit"}, {"run", "include"},
		{"report", "omit"}, {"report", "include"},
	} {
		opt := doc.Section(loc[0]).Option(loc[1])
		if opt == nil {
			continue
		}
		for _, v := range opt.Values {
			if _, err := getEngine().compile(v.Text); err != nil {
				add(v.Line, loc[0], loc[1], "bad glob %q: %v", v.Text, err)
			}
		}
	}
}

// lintFragments checks that every exclusion entry compiles as a regular
// expression. In template mode unresolved tokens are masked first, so the
// version-conditional pragma template lints despite its {ident}.
func lintFragments(doc *Document, mode LintMode, add addFunc) {
	for _, key := range [...]string{"exclude_lines", "exclude_also", "partial_branches"} {
		opt := doc.Section("report").Option(key)
		if opt == nil {
			continue
		}
		for _, v := range opt.Values {
			text := v.Text
			if mode == ModeTemplate {
				text = placeholderPattern.ReplaceAllString(text, "x")
			}
			if _, err := regexp.Compile(text); err != nil {
				add(v.Line, "report", key, "bad regex %q: %v", v.Text, err)
			}
		}
	}
}

// bracePattern finds any braced group, well-formed placeholder or not.
var bracePattern = regexp.MustCompile(`\{[^{}]*\}`)

// lintPlaceholders enforces the lifecycle of the template tokens. The
// source-control form keeps its tokens intact; the rendered form has none
// left anywhere.
func lintPlaceholders(doc *Document, mode LintMode, add addFunc) {
	if mode == ModeResolved {
		for _, sec := range doc.Sections() {
			for _, opt := range sec.Options {
				for _, v := range opt.Values {
					if placeholderPattern.MatchString(v.Text) {
						add(v.Line, sec.Name, opt.Key, "unresolved placeholder in %q", v.Text)
					}
				}
			}
		}
		return
	}

	// Path-valued options never contain legitimate braces, so any braced
	// group there must be a well-formed token.
	for _, loc := range [...][2]string{
		{"run", "source"}, {"run", "omit"}, {"run", "include"}, {"run", "data_file"},
		{"report", "omit"}, {"report", "include"},
	} {
		opt := doc.Section(loc[0]).Option(loc[1])
		if opt == nil {
			continue
		}
		for _, v := range opt.Values {
			for _, tok := range bracePattern.FindAllString(v.Text, -1) {
				if !identPattern.MatchString(tok[1 : len(tok)-1]) {
					add(v.Line, loc[0], loc[1], "malformed placeholder %q", tok)
				}
			}
		}
	}

	// The measured-source value is the token the build step substitutes.
	// Seeing it already replaced in the source-control form means someone
	// committed a rendered file.
	if opt := doc.Section("run").Option("source"); opt != nil && len(opt.Values) > 0 {
		found := false
		for _, v := range opt.Values {
			if placeholderPattern.MatchString(v.Text) {
				found = true
				break
			}
		}
		if !found {
			add(opt.Line, "run", "source", "expected an unresolved placeholder; value looks already substituted")
		}
	}
}
