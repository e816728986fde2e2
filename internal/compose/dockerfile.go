package compose

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	dockerfileDirective = regexp.MustCompile(`(?m)^\s*dockerfile:\s*(\S+)\s*$`)
	argDirective        = regexp.MustCompile(`(?m)^\s*ARG\s+([A-Za-z_][A-Za-z0-9_]*)`)
	secretMount         = regexp.MustCompile(`--mount=type=secret,id=([A-Za-z_][A-Za-z0-9_]*)`)
	fromAsDirective     = regexp.MustCompile(`(?mi)^\s*FROM\s+\S+\s+AS\s+(\S+)`)
)

// FallbackDockerfileNames is tried, in order, when the rendered template
// names no dockerfile directive.
var FallbackDockerfileNames = []string{"Dockerfile.dev", "Dockerfile"}

// ResolveDockerfileName scans rendered for the first line whose trimmed
// form begins with "dockerfile:", returning its argument. Falls back to
// Dockerfile.dev when no such line exists.
func ResolveDockerfileName(rendered string) string {
	if m := dockerfileDirective.FindStringSubmatch(rendered); m != nil {
		return m[1]
	}
	return FallbackDockerfileNames[0]
}

// BuildArgs returns the names declared by `ARG NAME[=default]` lines in
// dockerfile that also appear as a key in env.
func BuildArgs(dockerfile string, env map[string]string) []string {
	var names []string
	for _, m := range argDirective.FindAllStringSubmatch(dockerfile, -1) {
		name := m[1]
		if _, ok := env[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// BuildSecrets returns the names referenced by `--mount=type=secret,id=NAME`
// in RUN directives that also appear as a key in env.
func BuildSecrets(dockerfile string, env map[string]string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range secretMount.FindAllStringSubmatch(dockerfile, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		if _, ok := env[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	return names
}

// MultiStageTarget returns the stage to build, or "" if the Dockerfile is
// single-stage. Prefers a stage literally named "development"; otherwise
// falls back to the first non-final stage.
func MultiStageTarget(dockerfile string) string {
	matches := fromAsDirective.FindAllStringSubmatch(dockerfile, -1)
	if len(matches) < 2 {
		return ""
	}
	for _, m := range matches {
		if m[1] == "development" {
			return m[1]
		}
	}
	return matches[0][1]
}

// Introspection is the result of analyzing a Dockerfile against an env map.
type Introspection struct {
	DockerfileName string
	BuildArgs      []string
	Secrets        []string
	Target         string
	Warnings       []string
}

// Introspect resolves dockerfileName from the rendered compose text and
// analyzes dockerfileContent for build args, build secrets, and a
// multi-stage target, keeping only names present in env.
func Introspect(rendered, dockerfileContent string, env map[string]string) Introspection {
	return Introspection{
		DockerfileName: ResolveDockerfileName(rendered),
		BuildArgs:      BuildArgs(dockerfileContent, env),
		Secrets:        BuildSecrets(dockerfileContent, env),
		Target:         MultiStageTarget(dockerfileContent),
	}
}

var buildAnchor = regexp.MustCompile(`(?m)^(\s*)(dockerfile|context):\s*\S+\s*$`)

// ApplyIntrospection injects build:args, build:secrets, top-level secrets,
// and a build:target entry into the rendered compose text, anchored under
// the first "dockerfile:" or "context:" line found. A pre-existing
// build:args: or top-level secrets: block at the expected indentation is
// merged into rather than duplicated. Returns the modified text and any
// warnings (e.g. no anchor found).
func ApplyIntrospection(rendered string, in Introspection) (string, []string) {
	var warnings []string
	loc := buildAnchor.FindStringSubmatchIndex(rendered)
	if loc == nil {
		if len(in.BuildArgs) > 0 || len(in.Secrets) > 0 || in.Target != "" {
			warnings = append(warnings, "no build: anchor (dockerfile:/context:) found; skipping build args/secrets/target injection")
		}
		return rendered, warnings
	}

	indent := rendered[loc[2]:loc[3]]
	lineEnd := strings.IndexByte(rendered[loc[1]:], '\n')
	insertAt := loc[1]
	if lineEnd >= 0 {
		insertAt = loc[1] + lineEnd + 1
	}
	blockEnd := indentedBlockEnd(rendered, insertAt, indent)

	out := rendered
	if len(in.BuildArgs) > 0 {
		out, blockEnd = mergeListBlock(out, insertAt, blockEnd, indent, "args", func(name string) string {
			return fmt.Sprintf("- %s=${%s}", name, name)
		}, in.BuildArgs)
	}
	if in.Target != "" && !hasLine(out[insertAt:blockEnd], indent+"target: "+in.Target) {
		out = out[:insertAt] + indent + "target: " + in.Target + "\n" + out[insertAt:]
		blockEnd += len(indent) + len("target: "+in.Target) + 1
	}
	if len(in.Secrets) > 0 {
		out, _ = mergeListBlock(out, insertAt, blockEnd, indent, "secrets", func(name string) string {
			return "- " + name
		}, in.Secrets)
		out = mergeTopLevelSecrets(out, in.Secrets)
	}
	return out, warnings
}

// indentedBlockEnd returns the offset one past the last line, starting at
// start, whose indentation is at least len(indent) (or blank). This is the
// extent of the mapping that directly follows the dockerfile:/context: line.
func indentedBlockEnd(rendered string, start int, indent string) int {
	pos := start
	for pos < len(rendered) {
		nl := strings.IndexByte(rendered[pos:], '\n')
		lineEnd := len(rendered)
		advance := len(rendered) - pos
		if nl >= 0 {
			lineEnd = pos + nl
			advance = nl + 1
		}
		line := rendered[pos:lineEnd]
		trimmed := strings.TrimLeft(line, " ")
		if trimmed != "" && len(line)-len(trimmed) < len(indent) {
			break
		}
		pos += advance
		if nl < 0 {
			break
		}
	}
	return pos
}

// hasLine reports whether region contains a line equal to want.
func hasLine(region, want string) bool {
	for _, line := range strings.Split(region, "\n") {
		if line == want {
			return true
		}
	}
	return false
}

// mergeListBlock ensures region [start,end) of rendered contains a
// "<indent><key>:" mapping with a "<indent>  <item>" entry for each name,
// appending only the names missing from an existing block and creating the
// block from scratch when none exists yet. Returns the updated text and the
// new end offset of the block.
func mergeListBlock(rendered string, start, end int, indent, key string, item func(name string) string, names []string) (string, int) {
	headerRe := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(indent) + regexp.QuoteMeta(key) + `:\s*\n`)
	region := rendered[start:end]
	hloc := headerRe.FindStringIndex(region)

	if hloc == nil {
		var b strings.Builder
		b.WriteString(indent + key + ":\n")
		for _, name := range names {
			b.WriteString(indent + "  " + item(name) + "\n")
		}
		out := rendered[:start] + b.String() + rendered[start:]
		return out, end + b.Len()
	}

	itemRe := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(indent) + `  - ([A-Za-z_][A-Za-z0-9_]*).*$`)
	itemsEnd := hloc[1]
	existing := map[string]bool{}
	for {
		rest := region[itemsEnd:]
		m := itemRe.FindStringSubmatchIndex(rest)
		if m == nil || m[0] != 0 {
			break
		}
		existing[rest[m[2]:m[3]]] = true
		next := strings.IndexByte(rest, '\n')
		if next < 0 {
			itemsEnd = len(region)
			break
		}
		itemsEnd += next + 1
	}

	var b strings.Builder
	for _, name := range names {
		if existing[name] {
			continue
		}
		b.WriteString(indent + "  " + item(name) + "\n")
	}
	if b.Len() == 0 {
		return rendered, end
	}
	absInsert := start + itemsEnd
	out := rendered[:absInsert] + b.String() + rendered[absInsert:]
	return out, end + b.Len()
}

var topLevelSecretsHeader = regexp.MustCompile(`(?m)^secrets:\s*\n`)
var topLevelSecretName = regexp.MustCompile(`(?m)^  ([A-Za-z_][A-Za-z0-9_]*):\s*$`)

// mergeTopLevelSecrets ensures a single root-level secrets: mapping declares
// an entry for each name, merging into an existing mapping rather than
// appending a second "secrets:" root key (which would be invalid YAML).
func mergeTopLevelSecrets(rendered string, names []string) string {
	hloc := topLevelSecretsHeader.FindStringIndex(rendered)
	if hloc == nil {
		var b strings.Builder
		b.WriteString("secrets:\n")
		for _, name := range names {
			b.WriteString(fmt.Sprintf("  %s:\n    environment: %s\n", name, name))
		}
		return rendered + b.String()
	}

	existing := map[string]bool{}
	pos := hloc[1]
	for pos < len(rendered) {
		rest := rendered[pos:]
		m := topLevelSecretName.FindStringSubmatchIndex(rest)
		if m == nil || m[0] != 0 {
			break
		}
		existing[rest[m[2]:m[3]]] = true
		pos = indentedBlockEnd(rendered, pos+m[1], "    ")
	}

	var b strings.Builder
	for _, name := range names {
		if existing[name] {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s:\n    environment: %s\n", name, name))
	}
	if b.Len() == 0 {
		return rendered
	}
	return rendered[:pos] + b.String() + rendered[pos:]
}
