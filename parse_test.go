package coveragerc

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonicalFixture(t *testing.T) {
	data, err := os.ReadFile("testdata/coveragerc")
	require.NoError(t, err)

	doc, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, doc.Sections(), 2)
	require.True(t, doc.HasSection("run"))
	require.True(t, doc.HasSection("report"))

	run := doc.Section("run")
	assert.Equal(t, 1, run.Line)
	assert.Equal(t, "{packagename}", run.Option("source").Single())

	omit := run.Option("omit").List()
	wantOmit := []string{
		"*tests*",
		"*setup_package*",
		"*version*",
		"naima/sherpamod.py", // inline comment stripped
		"*extern*",
	}
	if diff := cmp.Diff(wantOmit, omit); diff != "" {
		t.Errorf("omit mismatch (-want +got):\n%s", diff)
	}

	exclude := doc.Section("report").Option("exclude_lines").List()
	wantExclude := []string{
		"pragma: no cover",
		"except ImportError",
		"raise AssertionError",
		"raise NotImplementedError",
		"raise TypeError",
		"log.warning",
		`def main\(.*\):`,
		"pragma: py{ignore_python_version}",
	}
	if diff := cmp.Diff(wantExclude, exclude); diff != "" {
		t.Errorf("exclude_lines mismatch (-want +got):\n%s", diff)
	}

	// The raw bytes survive parsing untouched.
	assert.Equal(t, data, doc.Raw)
}

func TestParsePrefixedHeaders(t *testing.T) {
	doc, err := Parse([]byte("[coverage:run]\nsource = pkg\n\n[coverage:report]\nshow_missing = true\n"))
	require.NoError(t, err)

	run := doc.Section("run")
	require.NotNil(t, run, "prefixed header should resolve to the canonical name")
	assert.True(t, run.Prefixed)
	assert.Equal(t, "pkg", run.Option("source").Single())
	assert.True(t, doc.HasSection("report"))
}

func TestParseColonSeparator(t *testing.T) {
	doc, err := Parse([]byte("[run]\nsource : pkg\ndata_file: .coverage\n"))
	require.NoError(t, err)

	run := doc.Section("run")
	assert.Equal(t, "pkg", run.Option("source").Single())
	assert.Equal(t, ".coverage", run.Option("data_file").Single())
}

func TestParseKeyCaseInsensitiveLookup(t *testing.T) {
	doc, err := Parse([]byte("[run]\nSource = pkg\n"))
	require.NoError(t, err)

	opt := doc.Section("run").Option("source")
	require.NotNil(t, opt)
	assert.Equal(t, "Source", opt.Key, "spelling is preserved")
	assert.Equal(t, "pkg", opt.Single())
}

func TestParseBOMAndCRLF(t *testing.T) {
	doc, err := Parse([]byte("\xef\xbb\xbf[run]\r\nsource = pkg\r\nomit =\r\n    *tests*\r\n"))
	require.NoError(t, err)

	run := doc.Section("run")
	assert.Equal(t, "pkg", run.Option("source").Single())
	assert.Equal(t, []string{"*tests*"}, run.Option("omit").List())
}

func TestParseBlankAndCommentLinesInsideValue(t *testing.T) {
	doc, err := Parse([]byte(
		"[run]\nomit =\n    *tests*\n\n    # interleaved comment\n    ; and another\n    *extern*\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"*tests*", "*extern*"}, doc.Section("run").Option("omit").List())
}

func TestParseInlineCommentRules(t *testing.T) {
	doc, err := Parse([]byte("[run]\nsource = pkg  # measured package\nomit =\n    a#b\n    c # dropped\n"))
	require.NoError(t, err)

	run := doc.Section("run")
	assert.Equal(t, "pkg", run.Option("source").Single())
	// A hash glued to value text is part of the value.
	assert.Equal(t, []string{"a#b", "c"}, run.Option("omit").List())
}

func TestParseValueLineNumbers(t *testing.T) {
	doc, err := Parse([]byte("[run]\nomit =\n    *tests*\n    *extern*\n"))
	require.NoError(t, err)

	opt := doc.Section("run").Option("omit")
	require.Len(t, opt.Values, 2)
	assert.Equal(t, 2, opt.Line)
	assert.Equal(t, 3, opt.Values[0].Line)
	assert.Equal(t, 4, opt.Values[1].Line)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"continuation without option", "[run]\n    orphan\n", 2},
		{"option outside section", "source = pkg\n", 1},
		{"missing closing bracket", "[run\n", 1},
		{"text after header", "[run] trailing\n", 1},
		{"empty header", "[]\n", 1},
		{"missing separator", "[run]\nsource\n", 2},
		{"empty key", "[run]\n= pkg\n", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.in))
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.line, perr.Line)
		})
	}
}

func TestParseDuplicateSection(t *testing.T) {
	_, err := Parse([]byte("[run]\nsource = a\n[run]\nsource = b\n"))
	require.ErrorIs(t, err, ErrDuplicateSection)

	// The prefixed spelling is the same section.
	_, err = Parse([]byte("[run]\nsource = a\n[coverage:run]\nsource = b\n"))
	require.ErrorIs(t, err, ErrDuplicateSection)
}

func TestParseDuplicateOption(t *testing.T) {
	_, err := Parse([]byte("[run]\nsource = a\nsource = b\n"))
	require.ErrorIs(t, err, ErrDuplicateOption)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)
}

func TestParseFileSetsName(t *testing.T) {
	doc, err := ParseFile("testdata/coveragerc")
	require.NoError(t, err)
	assert.Equal(t, "testdata/coveragerc", doc.Name)
}

func TestParseFileErrorIncludesPath(t *testing.T) {
	_, err := ParseFile("testdata/does-not-exist")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestParsePlaceholdersPassThrough(t *testing.T) {
	doc, err := Parse([]byte("[run]\nsource = {packagename}\nomit =\n    ${HOME}/scratch/*\n"))
	require.NoError(t, err)

	run := doc.Section("run")
	assert.Equal(t, "{packagename}", run.Option("source").Single())
	assert.Equal(t, []string{"${HOME}/scratch/*"}, run.Option("omit").List())
}

func TestNilSafeLookups(t *testing.T) {
	doc, err := Parse([]byte("[run]\nsource = pkg\n"))
	require.NoError(t, err)

	// Chaining through a missing section or option stays nil-safe.
	assert.Equal(t, "", doc.Section("report").Option("exclude_lines").Single())
	assert.Nil(t, doc.Section("report").Option("exclude_lines").List())
	assert.Equal(t, "", doc.Section("run").Option("nope").Single())
}
