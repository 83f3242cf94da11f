package coveragerc

import (
	"bytes"
	"os"
	"strings"
)

// sectionPrefix marks section headers embedded in a shared tool config file,
// e.g. "[coverage:run]" instead of "[run]". Both spell the same section.
const sectionPrefix = "coverage:"

// Document is the parsed form of one configuration file. It keeps the exact
// source bytes alongside the structural view, so substitution and rendering
// can work on raw text while validation and loading work on the structure.
//
// A Document is immutable after Parse and safe for concurrent use.
type Document struct {
	// Name labels the origin in diagnostics, typically the file path.
	Name string

	// Raw holds the unmodified source bytes.
	Raw []byte

	sections []*Section
}

// Section is an ordered group of options under one [header].
type Section struct {
	// Name is the canonical section name with any "coverage:" prefix removed.
	Name string

	// Prefixed records whether the header spelled the "coverage:" form.
	Prefixed bool

	// Line is the 1-based line of the header.
	Line int

	Options []*Option
}

// Option is one key with its ordered value lines. Single-line options hold
// exactly one Value; list options hold one Value per retained line.
type Option struct {
	// Key is the option name as written. Lookups compare case-insensitively.
	Key string

	// Line is the 1-based line of the "key = ..." line.
	Line int

	Values []Value
}

// Value is one comment-stripped, whitespace-trimmed value line.
type Value struct {
	Text string
	Line int
}

// Parse reads configuration data in the coveragerc dialect: INI-style
// sections, "key = value" options, indented continuation lines, full-line
// comments introduced by "#" or ";", and inline comments introduced by a
// whitespace-preceded "#". Blank lines are ignored everywhere, including
// inside multi-line values. Placeholder tokens and $-forms pass through
// untouched.
func Parse(data []byte) (*Document, error) {
	return parse(data, "")
}

// ParseFile reads and parses the file at path. The path becomes the
// document's Name and appears in error messages.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data, path)
}

func parse(data []byte, name string) (*Document, error) {
	doc := &Document{Name: name, Raw: data}

	var (
		cur     *Section
		curOpt  *Option
		seenSec = map[string]int{}
	)

	body := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // tolerate a UTF-8 BOM
	for i, raw := range strings.Split(string(body), "\n") {
		line := strings.TrimSuffix(raw, "\r")
		lineno := i + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		// Full-line comments, including indented ones inside a value block.
		if trimmed[0] == '#' || trimmed[0] == ';' {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'

		switch {
		case !indented && trimmed[0] == '[':
			end := strings.LastIndexByte(trimmed, ']')
			if end < 0 {
				return nil, parseErrorf(name, lineno, nil, "section header %q is missing a closing bracket", trimmed)
			}
			if rest := strings.TrimSpace(trimmed[end+1:]); rest != "" {
				return nil, parseErrorf(name, lineno, nil, "unexpected text %q after section header", rest)
			}
			header := strings.TrimSpace(trimmed[1:end])
			if header == "" {
				return nil, parseErrorf(name, lineno, nil, "empty section header")
			}
			canonical := strings.TrimPrefix(header, sectionPrefix)
			if prev, dup := seenSec[canonical]; dup {
				return nil, parseErrorf(name, lineno, ErrDuplicateSection, "section [%s] already declared on line %d", canonical, prev)
			}
			seenSec[canonical] = lineno
			cur = &Section{
				Name:     canonical,
				Prefixed: canonical != header,
				Line:     lineno,
			}
			doc.sections = append(doc.sections, cur)
			curOpt = nil

		case indented:
			if curOpt == nil {
				return nil, parseErrorf(name, lineno, nil, "continuation line %q without a preceding option", trimmed)
			}
			if text := stripInlineComment(line); text != "" {
				curOpt.Values = append(curOpt.Values, Value{Text: text, Line: lineno})
			}

		default:
			if cur == nil {
				return nil, parseErrorf(name, lineno, nil, "option %q outside of any section", trimmed)
			}
			key, rest, ok := splitOption(line)
			if !ok {
				return nil, parseErrorf(name, lineno, nil, "expected \"key = value\", got %q", trimmed)
			}
			if key == "" {
				return nil, parseErrorf(name, lineno, nil, "option with empty key")
			}
			if prev := cur.Option(key); prev != nil {
				return nil, parseErrorf(name, lineno, ErrDuplicateOption, "option %q in section [%s] already declared on line %d", key, cur.Name, prev.Line)
			}
			curOpt = &Option{Key: key, Line: lineno}
			if text := stripInlineComment(rest); text != "" {
				curOpt.Values = append(curOpt.Values, Value{Text: text, Line: lineno})
			}
			cur.Options = append(cur.Options, curOpt)
		}
	}

	return doc, nil
}

// splitOption splits "key = rest" or "key : rest" at the earliest separator.
func splitOption(line string) (key, rest string, ok bool) {
	sep := strings.IndexAny(line, "=:")
	if sep < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:sep]), line[sep+1:], true
}

// stripInlineComment trims s and removes a trailing inline comment. An inline
// comment starts at the first "#" preceded by a space or tab; a "#" glued to
// value text is part of the value. A pattern that needs a literal
// whitespace-then-hash spells the whitespace as a regex class instead.
func stripInlineComment(s string) string {
	for i := 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			s = s[:i]
			break
		}
	}
	return strings.TrimSpace(s)
}

// Sections returns the sections in declaration order.
func (d *Document) Sections() []*Section {
	out := make([]*Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// Section returns the named section, or nil. Names are canonical: a
// "[coverage:run]" header is found under "run".
func (d *Document) Section(name string) *Section {
	for _, s := range d.sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// HasSection reports whether the named section exists.
func (d *Document) HasSection(name string) bool { return d.Section(name) != nil }

// Option returns the option with the given key, or nil. Keys compare
// case-insensitively. A nil section has no options, so lookups chain safely.
func (s *Section) Option(key string) *Option {
	if s == nil {
		return nil
	}
	for _, o := range s.Options {
		if strings.EqualFold(o.Key, key) {
			return o
		}
	}
	return nil
}

// Single returns the first value line, or "" for a valueless option.
func (o *Option) Single() string {
	if o == nil || len(o.Values) == 0 {
		return ""
	}
	return o.Values[0].Text
}

// List returns all value lines in order.
func (o *Option) List() []string {
	if o == nil {
		return nil
	}
	out := make([]string, 0, len(o.Values))
	for _, v := range o.Values {
		out = append(out, v.Text)
	}
	return out
}
