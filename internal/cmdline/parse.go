package cmdline

import (
	"errors"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/kballard/go-shellquote"
)

// ErrEmpty is returned by Parse for a blank line.
var ErrEmpty = errors.New("empty command")

// Parse splits a command line into the command name and the raw argument
// string. A leading ':' is ignored.
func Parse(line string) (name, args string, err error) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if line == "" {
		return "", "", ErrEmpty
	}
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, "", nil
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace), nil
}

// Fields splits args into words the way a shell would, honoring quotes and
// backslash escapes.
func Fields(args string) ([]string, error) {
	return shellquote.Split(args)
}

// Quote joins words into an argument string that Fields splits back.
func Quote(words ...string) string {
	return shellquote.Join(words...)
}

// Suggest returns the candidate closest to name by edit distance, when it is
// close enough to be a likely typo.
func Suggest(name string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > maxTypoDistance(name) {
		return "", false
	}
	return best, true
}

func maxTypoDistance(name string) int {
	return max(2, len(name)/3)
}
