package coveragerc

import (
	"fmt"
	"os"
	"regexp"
)

// LookupFunc resolves an environment variable. The second return reports
// whether the variable is defined; a defined-but-empty variable is not the
// same as an undefined one for the ${VAR?} and ${VAR-default} forms.
type LookupFunc func(name string) (string, bool)

// MapLookup adapts a plain map for use as a LookupFunc.
func MapLookup(env map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

// Variable references take the shapes $VAR, ${VAR}, ${VAR?}, ${VAR-default}
// and $$ for a literal dollar. Anything else after a dollar sign stays as
// written.
var envVarPattern = regexp.MustCompile(`\$(?:(\$)|([A-Za-z_]\w*)|\{([A-Za-z_]\w*)(\?)?(?:-([^}]*))?\})`)

// ExpandEnv substitutes environment variable references in an option value.
// Undefined variables expand to the empty string unless the reference uses
// the strict ${VAR?} form, which fails with ErrUndefinedVariable, or the
// ${VAR-default} form, which supplies the fallback. A nil lookup reads the
// process environment.
func ExpandEnv(s string, lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	matches := envVarPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var out []byte
	last := 0
	for _, m := range matches {
		out = append(out, s[last:m[0]]...)
		last = m[1]

		group := func(i int) (string, bool) {
			if m[2*i] < 0 {
				return "", false
			}
			return s[m[2*i]:m[2*i+1]], true
		}

		if _, ok := group(1); ok {
			out = append(out, '$')
			continue
		}

		name, ok := group(2)
		if !ok {
			name, _ = group(3)
		}
		_, strict := group(4)
		defval, hasDefault := group(5)

		if v, defined := lookup(name); defined {
			out = append(out, v...)
			continue
		}
		if strict {
			return "", fmt.Errorf("%w: %s", ErrUndefinedVariable, name)
		}
		if hasDefault {
			out = append(out, defval...)
		}
	}
	out = append(out, s[last:]...)
	return string(out), nil
}
