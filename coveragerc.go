// Package coveragerc reads, validates, renders, and compiles coveragerc
// configuration files: the INI-style files that tell a coverage tool which
// sources to measure ([run] source, omit) and which lines never count as
// missed ([report] exclude_lines).
//
// The package owns the artifact through its whole lifecycle. In source
// control the file is a template carrying {placeholder} tokens; build
// tooling resolves it with Render or RenderFile; the coverage tool's view
// is the typed Config produced by Load, whose pattern sets compile into a
// Matcher for path omission and a LineExcluder for line exclusion.
//
// # Quick Start
//
//	cfg, err := coveragerc.Load(".coveragerc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := cfg.OmitMatcher()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(m.Match("pkg/tests/test_io.py")) // true  (omitted)
//	fmt.Println(m.Match("pkg/core.py"))          // false (measured)
//
//	kept := m.Filter([]string{"pkg/core.py", "pkg/tests/test_io.py"})
//	// kept == []string{"pkg/core.py"}
//
// # Concurrency
//
// A Matcher and a LineExcluder are immutable once built and safe for
// concurrent use. Compiled patterns are cached in a package-level engine
// shared across matcher lifecycles; the cache is invisible to callers and
// requires no configuration.
//
// For large path lists, FilterParallel splits the work across CPUs:
//
//	kept := m.FilterParallel(millionsOfPaths)
//
// # Pattern Syntax
//
// Omit patterns follow the coverage tool's fnmatch dialect:
//
//   - "*" matches any sequence of characters, including separators
//   - "?" matches any single character
//   - "[abc]" or "[a-z]" matches character classes, "[!abc]" negates one
//   - Everything else matches literally
//   - Lines starting with "#" are comments
//   - Empty lines are ignored
//   - There is no whitelist form: any match omits the path
//
// Exclusion entries under exclude_lines are ordinary regular expressions,
// searched unanchored against each source line.
//
// # Template Placeholders
//
// A {name} token whose name is shaped like an identifier is a build-time
// placeholder. Substitution is textual over the raw bytes, so every byte
// outside the replaced tokens survives rendering unchanged. Regex
// repetition counts such as {2,3} are never treated as tokens.
package coveragerc
