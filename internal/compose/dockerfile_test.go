package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleDockerfile = `FROM node:20 AS development
ARG API_KEY
ARG UNUSED_ARG
RUN --mount=type=secret,id=NPM_TOKEN npm install
FROM development AS production
RUN echo build
`

func TestResolveDockerfileName(t *testing.T) {
	assert.Equal(t, "Dockerfile.custom", ResolveDockerfileName("  dockerfile: Dockerfile.custom  \n"))
	assert.Equal(t, "Dockerfile.dev", ResolveDockerfileName("services:\n  app:\n    build: .\n"))
}

func TestBuildArgs_OnlyKeepsEnvPresentNames(t *testing.T) {
	env := map[string]string{"API_KEY": "x"}
	assert.Equal(t, []string{"API_KEY"}, BuildArgs(sampleDockerfile, env))
}

func TestBuildSecrets_OnlyKeepsEnvPresentNames(t *testing.T) {
	env := map[string]string{"NPM_TOKEN": "x"}
	assert.Equal(t, []string{"NPM_TOKEN"}, BuildSecrets(sampleDockerfile, env))
}

func TestMultiStageTarget_PrefersDevelopment(t *testing.T) {
	assert.Equal(t, "development", MultiStageTarget(sampleDockerfile))
}

func TestMultiStageTarget_SingleStageReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", MultiStageTarget("FROM node:20\nRUN echo hi\n"))
}

func TestApplyIntrospection_InjectsUnderAnchor(t *testing.T) {
	rendered := "services:\n  app:\n    build:\n      context: .\n      dockerfile: Dockerfile.dev\n"
	in := Introspection{BuildArgs: []string{"API_KEY"}, Secrets: []string{"NPM_TOKEN"}, Target: "development"}

	out, warnings := ApplyIntrospection(rendered, in)
	assert.Empty(t, warnings)
	assert.Contains(t, out, "args:\n")
	assert.Contains(t, out, "- API_KEY=${API_KEY}")
	assert.Contains(t, out, "target: development")
	assert.Contains(t, out, "- NPM_TOKEN")
	assert.Contains(t, out, "NPM_TOKEN:\n    environment: NPM_TOKEN")
}

func TestApplyIntrospection_NoAnchorWarnsWhenNeeded(t *testing.T) {
	_, warnings := ApplyIntrospection("services:\n  app:\n    image: x\n", Introspection{BuildArgs: []string{"X"}})
	assert.Len(t, warnings, 1)
}

func TestApplyIntrospection_NoAnchorSilentWhenNothingToInject(t *testing.T) {
	_, warnings := ApplyIntrospection("services:\n  app:\n    image: x\n", Introspection{})
	assert.Empty(t, warnings)
}

func TestApplyIntrospection_MergesIntoExistingArgsBlockWithoutDuplicating(t *testing.T) {
	rendered := "services:\n  app:\n    build:\n      context: .\n      dockerfile: Dockerfile.dev\n      args:\n        - API_KEY=${API_KEY}\n"
	in := Introspection{BuildArgs: []string{"API_KEY", "NPM_TOKEN"}}

	out, warnings := ApplyIntrospection(rendered, in)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, strings.Count(out, "args:\n"))
	assert.Equal(t, 1, strings.Count(out, "API_KEY=${API_KEY}"))
	assert.Contains(t, out, "- NPM_TOKEN=${NPM_TOKEN}")
}

func TestApplyIntrospection_MergesIntoExistingTopLevelSecretsBlock(t *testing.T) {
	rendered := "services:\n  app:\n    build:\n      context: .\n      dockerfile: Dockerfile.dev\nsecrets:\n  NPM_TOKEN:\n    environment: NPM_TOKEN\n"
	in := Introspection{Secrets: []string{"NPM_TOKEN", "DB_PASSWORD"}}

	out, warnings := ApplyIntrospection(rendered, in)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, strings.Count(out, "\nsecrets:\n"))
	assert.Equal(t, 1, strings.Count(out, "NPM_TOKEN:\n"))
	assert.Contains(t, out, "DB_PASSWORD:\n    environment: DB_PASSWORD")
}

func TestApplyIntrospection_SkipsDuplicateTarget(t *testing.T) {
	rendered := "services:\n  app:\n    build:\n      context: .\n      dockerfile: Dockerfile.dev\n      target: development\n"
	in := Introspection{Target: "development"}

	out, warnings := ApplyIntrospection(rendered, in)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, strings.Count(out, "target: development"))
}
