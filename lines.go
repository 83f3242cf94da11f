package coveragerc

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// LineExcluder holds the compiled exclude_lines set. A source line whose
// text matches any fragment is marked as intentionally untested. Matching is
// an unanchored search, the way the coverage tool applies these fragments.
//
// Clause-level expansion (excluding a whole function body because its "def"
// line matched) is the consuming tool's business; this type answers only
// about individual lines.
//
// A LineExcluder is immutable and safe for concurrent use.
type LineExcluder struct {
	patterns []string
	union    *regexp.Regexp
}

// NewLineExcluder compiles exclusion regex fragments. Blank entries and
// lines starting with # are skipped. The fragments are combined into a
// single alternation, so one scan per source line answers for the whole set.
func NewLineExcluder(patterns []string) (*LineExcluder, error) {
	e := &LineExcluder{}

	var parts []string
	for i, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("exclusion pattern %d: %w: %q: %v", i+1, ErrBadPattern, p, err)
		}
		e.patterns = append(e.patterns, p)
		parts = append(parts, "(?:"+p+")")
	}

	if len(parts) > 0 {
		union, err := regexp.Compile(strings.Join(parts, "|"))
		if err != nil {
			// Every part compiled on its own, so the union compiles too.
			return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
		}
		e.union = union
	}

	return e, nil
}

// Match reports whether the line is excluded from coverage accounting.
func (e *LineExcluder) Match(line string) bool {
	return e.union != nil && e.union.MatchString(line)
}

// ExcludedLines scans source text and returns the 1-based numbers of lines
// matching any fragment.
func (e *LineExcluder) ExcludedLines(r io.Reader) ([]int, error) {
	var out []int
	if err := e.scan(r, func(n int) { out = append(out, n) }); err != nil {
		return nil, err
	}
	return out, nil
}

// ExcludedRanges scans source text and folds the excluded line numbers into
// contiguous runs.
func (e *LineExcluder) ExcludedRanges(r io.Reader) ([]Range, error) {
	var out []Range
	err := e.scan(r, func(n int) {
		if len(out) > 0 && out[len(out)-1].End == n-1 {
			out[len(out)-1].End = n
			return
		}
		out = append(out, Range{Start: n, End: n})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *LineExcluder) scan(r io.Reader, hit func(int)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for sc.Scan() {
		n++
		if e.Match(sc.Text()) {
			hit(n)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan source line %d: %w", n+1, err)
	}
	return nil
}

// Len returns the number of compiled fragments.
func (e *LineExcluder) Len() int { return len(e.patterns) }

// Patterns returns the compiled fragment texts in declaration order.
func (e *LineExcluder) Patterns() []string {
	out := make([]string, len(e.patterns))
	copy(out, e.patterns)
	return out
}

// Range is a contiguous run of 1-based line numbers, Start and End
// inclusive.
type Range struct {
	Start int
	End   int
}

// In reports whether the line number falls inside the range.
func (r Range) In(line int) bool { return line >= r.Start && line <= r.End }
