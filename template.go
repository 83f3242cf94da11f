package coveragerc

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Substitutions maps placeholder names to their replacement text.
type Substitutions map[string]string

// A placeholder token is {ident} where ident looks like an identifier.
// Regex repetition counts such as {2,3} or {0} never qualify, so the
// exclusion fragments can carry them without being treated as tokens.
var (
	placeholderPattern = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)
	identPattern       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Placeholders returns the distinct placeholder names in the template, in
// first-appearance order.
func Placeholders(data []byte) []string {
	var names []string
	seen := map[string]bool{}
	for _, tok := range placeholderPattern.FindAll(data, -1) {
		name := string(tok[1 : len(tok)-1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Render substitutes every placeholder token in the template. Replacement
// is textual and touches nothing but the tokens themselves, so all other
// bytes of the rendered output are identical to the input. Values are
// inserted verbatim, without a second substitution pass.
//
// Rendering is strict both ways: a token with no substitution fails with
// ErrUnresolvedPlaceholder, and a substitution naming no token fails with
// ErrUnusedSubstitution. The latter catches typos in release manifests
// before they silently ship an unresolved config.
func Render(data []byte, subs Substitutions) ([]byte, error) {
	used := map[string]bool{}
	var missing []string

	out := placeholderPattern.ReplaceAllFunc(data, func(tok []byte) []byte {
		name := string(tok[1 : len(tok)-1])
		v, ok := subs[name]
		if !ok {
			missing = append(missing, name)
			return tok
		}
		used[name] = true
		return []byte(v)
	})

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, joinNames(missing))
	}
	var unused []string
	for name := range subs {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnusedSubstitution, joinNames(unused))
	}
	return out, nil
}

// RenderPartial substitutes the placeholders it has values for and passes
// the rest through untouched, for pipelines that resolve tokens in stages.
func RenderPartial(data []byte, subs Substitutions) []byte {
	return placeholderPattern.ReplaceAllFunc(data, func(tok []byte) []byte {
		name := string(tok[1 : len(tok)-1])
		if v, ok := subs[name]; ok {
			return []byte(v)
		}
		return tok
	})
}

func joinNames(names []string) string {
	uniq := map[string]bool{}
	var out []string
	for _, n := range names {
		if !uniq[n] {
			uniq[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

// LoadSubstitutions reads a YAML manifest mapping placeholder names to
// scalar values. Keys must be well-formed placeholder identifiers and
// values must be scalars; anything else is rejected so a malformed release
// manifest fails loudly.
func LoadSubstitutions(path string) (Substitutions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read substitutions: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse substitutions %s: %w", path, err)
	}

	subs := make(Substitutions, len(raw))
	for k, v := range raw {
		if !identPattern.MatchString(k) {
			return nil, fmt.Errorf("substitutions %s: %q is not a placeholder name", path, k)
		}
		switch t := v.(type) {
		case string:
			subs[k] = t
		case int, int64, uint64, float64, bool:
			subs[k] = fmt.Sprint(t)
		case nil:
			return nil, fmt.Errorf("substitutions %s: %q has no value", path, k)
		default:
			return nil, fmt.Errorf("substitutions %s: %q: value must be a scalar", path, k)
		}
	}
	return subs, nil
}

// RenderFile reads a template config, renders it strictly, and writes the
// result to dst atomically so a half-written config is never observable.
func RenderFile(src, dst string, subs Substitutions) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	out, err := Render(data, subs)
	if err != nil {
		return fmt.Errorf("render %s: %w", src, err)
	}
	if err := WriteFileAtomic(dst, out); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
