package coveragerc

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// engine is the package-level singleton that translates omit globs into
// compiled regular expressions and caches the results. The same
// configuration is typically compiled by every tool invocation in a test
// cycle, so compiled programs are shared across Matcher lifecycles. Compiled
// regexps are safe for concurrent use, which makes the cache read-mostly.
type engine struct {
	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

var (
	globalEngine *engine
	engineOnce   sync.Once
)

// getEngine returns the singleton engine, creating it on first call.
func getEngine() *engine {
	engineOnce.Do(func() {
		globalEngine = &engine{cache: make(map[string]*regexp.Regexp)}
	})
	return globalEngine
}

// compile returns the compiled form of a single glob, reusing a cached
// program when the same pattern text was compiled before.
func (e *engine) compile(pattern string) (*regexp.Regexp, error) {
	e.mu.RLock()
	re, ok := e.cache[pattern]
	e.mu.RUnlock()
	if ok {
		return re, nil
	}

	src := globRegexp(pattern)
	re, err := regexp.Compile(src)
	if err != nil {
		// Class contents pass through untranslated, so a reversed range
		// like [z-a] surfaces here.
		return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, pattern, err)
	}

	e.mu.Lock()
	e.cache[pattern] = re
	e.mu.Unlock()
	return re, nil
}

// globRegexp translates one omit glob into anchored regexp source. The
// dialect is the coverage tool's fnmatch style: "*" matches any run of
// characters including the path separator (that is what lets "*tests*" cover
// nested tests directories), "?" matches exactly one character, "[seq]" and
// "[!seq]" are character classes, and everything else is literal. The whole
// pattern must match the whole path.
func globRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString(`\A(?:`)

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			class, next, ok := scanClass(runes, i)
			if !ok {
				// No closing bracket: "[" is literal, like fnmatch.
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(class)
			i = next
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteString(`)\z`)
	return b.String()
}

// scanClass reads a character class starting at runes[start] == '['. It
// returns the regexp form, the index of the closing bracket, and whether a
// well-formed class was found. "[!...]" negates; a "]" directly after the
// opening bracket (or the negation) is a literal member, as in fnmatch.
func scanClass(runes []rune, start int) (string, int, bool) {
	i := start + 1
	negate := false
	if i < len(runes) && runes[i] == '!' {
		negate = true
		i++
	}
	first := i
	if i < len(runes) && runes[i] == ']' {
		i++
	}
	for i < len(runes) && runes[i] != ']' {
		i++
	}
	if i >= len(runes) {
		return "", 0, false
	}

	var b strings.Builder
	b.WriteByte('[')
	if negate {
		b.WriteByte('^')
	}
	for _, r := range runes[first:i] {
		// "-" keeps its range meaning, which matches the glob dialect. The
		// escape must escape itself, and "^" is literal in a glob class, so
		// it must not surface as regexp negation.
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '^':
			b.WriteString(`\^`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(']')
	return b.String(), i, true
}
