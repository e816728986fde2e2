package compose

import (
	"bufio"
	"regexp"
	"strings"
)

// NormalizeEnv strips a leading "export " from each assignment line and
// removes surrounding matching single or double quotes from values. Blank
// and comment lines pass through unchanged. Idempotent: normalizing a
// normalized file yields bytes-for-bytes identical output.
func NormalizeEnv(data []byte) []byte {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	var out strings.Builder
	for scanner.Scan() {
		out.WriteString(normalizeEnvLine(scanner.Text()))
		out.WriteString("\n")
	}
	result := out.String()
	return []byte(strings.TrimSuffix(result, "\n") + trailingNewline(data))
}

func trailingNewline(data []byte) string {
	if len(data) > 0 && data[len(data)-1] == '\n' {
		return "\n"
	}
	return ""
}

func normalizeEnvLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return line
	}

	rest := strings.TrimPrefix(trimmed, "export ")
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return line
	}
	key := rest[:eq]
	value := rest[eq+1:]
	value = unquote(value)
	return key + "=" + value
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// ParseEnv parses normalized .env content into a map, ignoring blank and
// comment lines.
func ParseEnv(data []byte) map[string]string {
	result := map[string]string{}
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		result[line[:eq]] = unquote(line[eq+1:])
	}
	return result
}

// DatabaseURLFromEnv returns env["DATABASE_URL"] if present.
func DatabaseURLFromEnv(env map[string]string) (string, bool) {
	v, ok := env["DATABASE_URL"]
	return v, ok && v != ""
}

var erbExpr = regexp.MustCompile(`<%=\s*(.*?)\s*%>`)
var erbFallbackLiteral = regexp.MustCompile(`["']([^"']*)["']`)

// StripERB replaces every `<%= ... %>` expression with the first literal
// following a `||` inside it, or the empty string if there is none. Input
// free of ERB expressions is returned unchanged.
func StripERB(s string) string {
	return erbExpr.ReplaceAllStringFunc(s, func(expr string) string {
		inner := erbExpr.FindStringSubmatch(expr)[1]
		parts := strings.SplitN(inner, "||", 2)
		if len(parts) != 2 {
			return ""
		}
		if m := erbFallbackLiteral.FindStringSubmatch(parts[1]); m != nil {
			return m[1]
		}
		return ""
	})
}

var databaseYMLDevelopmentKey = regexp.MustCompile(`(?s)development:.*?\n\s*database:\s*(.+)`)

// DatabaseFromYAML extracts the development.database value from the
// contents of a config/database.yml-style file, ERB-stripped.
func DatabaseFromYAML(data []byte) (string, bool) {
	stripped := StripERB(string(data))
	m := databaseYMLDevelopmentKey.FindStringSubmatch(stripped)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(strings.SplitN(m[1], "\n", 2)[0])
	value = unquote(value)
	if value == "" {
		return "", false
	}
	return value, true
}
