package coveragerc

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"sync"
)

// Matcher holds a compiled set of omit globs. Any pattern matching a path
// omits it — the omit dialect has no negation form, so declaration order
// only matters for Explain.
//
// A Matcher is immutable and safe for concurrent use. Compiled patterns are
// shared across Matchers through the package engine, so building the same
// set repeatedly is cheap.
type Matcher struct {
	rules []rule
}

// rule pairs a pattern with its compiled form, keeping the raw text for
// Explain and error reporting.
type rule struct {
	pattern string
	re      *regexp.Regexp
}

// NewMatcher compiles omit globs into a Matcher.
//
// Entries follow the coverage omit dialect:
//   - "*tests*"        omits anything with "tests" in its path
//   - "pkg/extern/*"   omits a subtree
//   - "pkg/version.py" omits one file
//   - "*" matches any run of characters, including path separators
//   - "?" matches exactly one character; "[seq]"/"[!seq]" are classes
//   - Lines starting with # are comments
//   - Empty lines are ignored
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	eng := getEngine()

	for i, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		re, err := eng.compile(p)
		if err != nil {
			return nil, fmt.Errorf("omit pattern %d: %w", i+1, err)
		}
		m.rules = append(m.rules, rule{pattern: p, re: re})
	}

	return m, nil
}

// Match reports whether the given file path is omitted by the compiled
// patterns. The path is normalized first: backslashes become slashes, a
// leading "./" is dropped, repeated slashes collapse, and a trailing slash
// is dropped, so Windows-style and directory-style inputs behave.
func (m *Matcher) Match(path string) bool {
	_, ok := m.Explain(path)
	return ok
}

// Explain returns the first pattern, in declaration order, that omits the
// given path. The second result is false when no pattern matches.
func (m *Matcher) Explain(path string) (string, bool) {
	p := NormalizePath(path)
	for _, r := range m.rules {
		if r.re.MatchString(p) {
			return r.pattern, true
		}
	}
	return "", false
}

// Filter returns only the paths from the input slice that are NOT omitted by
// the compiled patterns, preserving input order.
func (m *Matcher) Filter(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if !m.Match(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// FilterParallel returns only the paths that are NOT omitted, splitting the
// work into runtime.NumCPU() chunks matched concurrently and merged in
// order. Results are identical to Filter.
//
// For small path lists the goroutine overhead may exceed the savings; use
// Filter below a few thousand paths.
func (m *Matcher) FilterParallel(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}
	if numWorkers <= 1 {
		return m.Filter(paths)
	}

	chunkSize := (len(paths) + numWorkers - 1) / numWorkers
	var chunks [][]string
	for i := 0; i < len(paths); i += chunkSize {
		end := i + chunkSize
		if end > len(paths) {
			end = len(paths)
		}
		chunks = append(chunks, paths[i:end])
	}

	results := make([][]string, len(chunks))
	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for i, c := range chunks {
		go func(idx int, part []string) {
			defer wg.Done()
			results[idx] = m.Filter(part)
		}(i, c)
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]string, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

// Len returns the number of compiled patterns (comments and blanks are not
// counted).
func (m *Matcher) Len() int { return len(m.rules) }

// Patterns returns the compiled pattern texts in declaration order.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.pattern
	}
	return out
}

// NormalizePath brings a path into the form patterns are matched against:
// slash-separated, no "./" prefix, no repeated or trailing slashes.
func NormalizePath(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
