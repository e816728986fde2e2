package gitdriver

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonSlugChar = regexp.MustCompile(`[^a-z0-9-]`)

// Slug lowercases name (Unicode-aware), turns whitespace into hyphens, and
// strips every character outside [a-z0-9-]. Slug is idempotent:
// Slug(Slug(x)) == Slug(x).
func Slug(name string) string {
	lower := cases.Lower(language.Und).String(name)
	hyphenated := strings.Join(strings.Fields(lower), "-")
	return nonSlugChar.ReplaceAllString(hyphenated, "")
}

// FormatBranch builds "<project>/<taskType>/<slug(name)>". Idempotent in
// name: FormatBranch(p, t, Slug(name)) == FormatBranch(p, t, name).
func FormatBranch(project, taskType, name string) string {
	return project + "/" + taskType + "/" + Slug(name)
}
