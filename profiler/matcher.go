package profiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/yourusername/s3stats/types"
)

// maxClassRunes bounds the expansion of a character class with several ranges
const maxClassRunes = 4096

// Matcher decides whether a name matches a user supplied pattern.
// Glob patterns follow fnmatch: they must match the whole name, `*` also
// matches `/`, and braces, commas and backslashes are ordinary characters.
// Regular expressions are anchored at the start of the name only.
type Matcher struct {
	pattern string
	glob    glob.Glob
	re      *regexp.Regexp
}

// NewMatcher compiles pattern once so it can be shared between workers
func NewMatcher(pattern string, isRegex bool) (*Matcher, error) {
	m := &Matcher{pattern: pattern}

	if isRegex {
		re, err := regexp.Compile(`^(?:` + pattern + `)`)
		if err != nil {
			return nil, NewConfigurationError("regex", pattern, err)
		}
		m.re = re
		return m, nil
	}

	expr, matchable, err := translateGlob(pattern)
	if err != nil {
		return nil, NewConfigurationError("glob", pattern, err)
	}
	if !matchable {
		// An empty character class such as [z-a] never matches
		return m, nil
	}

	g, err := glob.Compile(expr)
	if err != nil {
		return nil, NewConfigurationError("glob", pattern, err)
	}
	m.glob = g
	return m, nil
}

// Match reports whether name matches the compiled pattern
func (m *Matcher) Match(name string) bool {
	switch {
	case m.re != nil:
		return m.re.MatchString(name)
	case m.glob != nil:
		return m.glob.Match(name)
	}
	return false
}

// String returns the pattern as supplied
func (m *Matcher) String() string {
	return m.pattern
}

// Matches is a convenience wrapper compiling pattern on every call.
// Invalid patterns match nothing.
func Matches(pattern, name string, isRegex bool) bool {
	m, err := NewMatcher(pattern, isRegex)
	if err != nil {
		return false
	}
	return m.Match(name)
}

// FilterBuckets keeps the buckets whose name matches pattern
func FilterBuckets(buckets []types.BucketRef, pattern string, isRegex bool) ([]types.BucketRef, error) {
	m, err := NewMatcher(pattern, isRegex)
	if err != nil {
		return nil, err
	}

	var filtered []types.BucketRef
	for _, b := range buckets {
		if m.Match(b.Name) {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// translateGlob rewrites an fnmatch pattern into gobwas/glob syntax. Only `*`,
// `?` and terminated `[...]` classes stay special; everything else is escaped.
// matchable is false when the pattern contains an empty class.
func translateGlob(pattern string) (expr string, matchable bool, err error) {
	p := []rune(pattern)
	var b strings.Builder

	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case '*', '?':
			b.WriteRune(c)
		case '[':
			end := classEnd(p, i+1)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class, ok, err := translateClass(p[i+1 : end])
			if err != nil {
				return "", false, err
			}
			if !ok {
				return "", false, nil
			}
			b.WriteString(class)
			i = end
		case '\\', '{', '}', ',', ']':
			b.WriteRune('\\')
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}

	return b.String(), true, nil
}

// classEnd returns the index of the `]` closing a class whose body starts at
// start, or -1 when the class is unterminated. A `]` right after the opening
// `[` or `[!` belongs to the body.
func classEnd(p []rune, start int) int {
	j := start
	if j < len(p) && p[j] == '!' {
		j++
	}
	if j < len(p) && p[j] == ']' {
		j++
	}
	for ; j < len(p); j++ {
		if p[j] == ']' {
			return j
		}
	}
	return -1
}

// translateClass converts a class body. gobwas accepts either a single range
// or a list of characters, so bodies mixing several ranges are expanded.
func translateClass(body []rune) (string, bool, error) {
	negated := len(body) > 0 && body[0] == '!'
	if negated {
		body = body[1:]
	}

	var singles []rune
	var ranges [][2]rune
	for k := 0; k < len(body); k++ {
		if k+2 < len(body) && body[k+1] == '-' {
			// Reversed ranges are empty
			if body[k] <= body[k+2] {
				ranges = append(ranges, [2]rune{body[k], body[k+2]})
			}
			k += 2
			continue
		}
		singles = append(singles, body[k])
	}

	open := "["
	if negated {
		open = "[!"
	}

	if len(singles) == 0 && len(ranges) == 1 && (negated || ranges[0][0] != '!') {
		return open + string(ranges[0][0]) + "-" + string(ranges[0][1]) + "]", true, nil
	}

	for _, r := range ranges {
		if len(singles)+int(r[1]-r[0])+1 > maxClassRunes {
			return "", false, fmt.Errorf("character class [%s] is too large", string(body))
		}
		for c := r[0]; c <= r[1]; c++ {
			singles = append(singles, c)
		}
	}

	if len(singles) == 0 {
		if negated {
			return "?", true, nil
		}
		return "", false, nil
	}

	return open + classList(singles) + "]", true, nil
}

// classList escapes a character list for a gobwas class. A `-` is moved to
// the end so it never follows the first character unescaped.
func classList(chars []rune) string {
	var b strings.Builder
	dash := false
	for _, c := range chars {
		switch c {
		case '-':
			dash = true
			continue
		case '\\', ']', '[', '!', '{', '}', ',', '*', '?':
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	if dash {
		if b.Len() == 0 {
			return "-"
		}
		b.WriteString(`\-`)
	}
	return b.String()
}
