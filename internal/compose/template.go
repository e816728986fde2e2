// Package compose renders the compose template for a planted environment,
// introspects its Dockerfile, normalizes its .env file, and drives
// `docker compose` through internal/shell for up/down/health/exec.
package compose

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const templateFileName = "compose-template.yml"

// DefaultTemplate is used when <state_root>/compose-template.yml is absent.
const DefaultTemplate = `version: "3.8"
services:
  app:
    build:
      context: .
      dockerfile: Dockerfile.dev
    ports:
      - "{{APP_PORT}}:3000"
    volumes:
      - "{{WORKTREE_PATH}}:/app"
    environment:
      WORKER_NAME: "{{WORKER_NAME}}"
  db:
    image: postgres:15
    ports:
      - "{{DB_PORT}}:5432"
  cache:
    image: redis:7
    ports:
      - "{{REDIS_PORT}}:6379"
`

// RenderVars holds the substitution values for a compose template.
type RenderVars struct {
	WorkerName   string
	WorktreePath string
	AppPort      uint16
	DBPort       uint16
	CachePort    uint16
}

// LoadTemplate returns the compose template text: the project-level
// override at <stateRoot>/compose-template.yml if present, else the
// built-in default.
func LoadTemplate(stateRoot string) (string, error) {
	path := filepath.Join(stateRoot, templateFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultTemplate, nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Render substitutes {{WORKER_NAME}}, {{WORKTREE_PATH}}, {{APP_PORT}},
// {{DB_PORT}}, and {{REDIS_PORT}} literally in tmpl.
func Render(tmpl string, vars RenderVars) string {
	replacer := strings.NewReplacer(
		"{{WORKER_NAME}}", vars.WorkerName,
		"{{WORKTREE_PATH}}", vars.WorktreePath,
		"{{APP_PORT}}", portString(vars.AppPort),
		"{{DB_PORT}}", portString(vars.DBPort),
		"{{REDIS_PORT}}", portString(vars.CachePort),
	)
	return replacer.Replace(tmpl)
}

func portString(p uint16) string {
	if p == 0 {
		return ""
	}
	return strconv.Itoa(int(p))
}
