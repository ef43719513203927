package testutil

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Project is an isolated hive project on disk: a temp directory holding
// hive.yml and docs/hive_state.json, optionally under Git
type Project struct {
	T           *testing.T
	Dir         string
	OriginalDir string
	StatePath   string
	OutputDir   string
}

// SetupProject creates a project with the given hive.yml and state document and
// changes into it. The previous working directory is restored on cleanup.
func SetupProject(t *testing.T, hiveYML, stateJSON string) *Project {
	t.Helper()

	dir := t.TempDir()
	outputDir := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(outputDir, 0755))

	statePath := filepath.Join(outputDir, "hive_state.json")
	require.NoError(t, os.WriteFile(statePath, []byte(stateJSON), 0644), "Failed to write hive_state.json")
	if hiveYML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hive.yml"), []byte(hiveYML), 0644), "Failed to write hive.yml")
	}

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir), "Failed to change to project directory")
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	return &Project{
		T:           t,
		Dir:         dir,
		OriginalDir: originalDir,
		StatePath:   statePath,
		OutputDir:   outputDir,
	}
}

// InitGit turns the project into a Git repository with one commit. The test
// is skipped when git is not installed.
func (p *Project) InitGit() {
	p.T.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		p.T.Skip("git not installed")
	}

	for _, args := range [][]string{
		{"init", "-q"},
		{"config", "user.email", "test@hive.local"},
		{"config", "user.name", "Hive Test"},
		{"add", "."},
		{"commit", "-q", "-m", "Initial commit"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = p.Dir
		out, err := cmd.CombinedOutput()
		require.NoError(p.T, err, "git %v: %s", args, out)
	}
}

// ReadArtifact decodes a JSON file from the output directory
func (p *Project) ReadArtifact(name string) map[string]any {
	p.T.Helper()
	data, err := os.ReadFile(filepath.Join(p.OutputDir, name))
	require.NoError(p.T, err, "Failed to read %s", name)

	var out map[string]any
	require.NoError(p.T, json.Unmarshal(data, &out), "%s is not valid JSON", name)
	return out
}

// VerifyFileExists checks that a file exists relative to the project root
func (p *Project) VerifyFileExists(name string) {
	p.T.Helper()
	_, err := os.Stat(filepath.Join(p.Dir, name))
	require.NoError(p.T, err, "File %s does not exist", name)
}

// VerifyFileMissing checks that a file does not exist relative to the project root
func (p *Project) VerifyFileMissing(name string) {
	p.T.Helper()
	_, err := os.Stat(filepath.Join(p.Dir, name))
	require.True(p.T, os.IsNotExist(err), "File %s should not exist", name)
}

// DefaultHiveYML returns a minimal hive.yml
func DefaultHiveYML() string {
	return `version: "1"
state: docs/hive_state.json
output: docs
`
}

// ValidStateJSON returns a hive state that normalizes with no warnings or
// errors and exercises every feed source
func ValidStateJSON() string {
	return `{
  "meta": {
    "schema": "solarflow.hive_state.v1",
    "schemaVersion": 1,
    "updatedAt": "2024-03-01T12:00:00Z",
    "source": "test"
  },
  "world": {
    "max_minions": 5,
    "health": {"virtual_voltage": 0.8, "entropy": 0.2, "loop_risk": 0.1}
  },
  "ledger": {
    "credits_total": 300,
    "transactions": [
      {"id": "t1", "timestamp": "2024-03-01T10:00:00Z", "from": "ATLAS", "to": "BOLT", "amount": 5, "memo": "help"}
    ]
  },
  "minions": {
    "roster": [
      {"id": "BOLT", "tier": 2, "role": "runner", "mode": "active", "avatar_url": "./avatars/bolt.png"},
      {"id": "ATLAS", "tier": 1, "role": "planner", "mode": "idle", "avatar_url": "./avatars/atlas.png"}
    ]
  },
  "activities": {
    "status": {"ci": "green", "overall": 42, "milestones": [{"id": "m1", "label": "Boot", "status": "done"}]},
    "feed_posts": [
      {"who": "ATLAS", "when": "2024-03-01 09:00Z", "text": "Morning sync"}
    ]
  },
  "agora": {
    "mode": "SIMULATED",
    "notes": "demo",
    "messages": [
      {"sender_id": "bolt", "timestamp": "2024-03-01T11:00:00Z", "intent": "FETCH_RESULT",
       "payload": {"url": "https://example.com", "status": 200, "content_type": "text/html", "bytes": 512}}
    ]
  },
  "tasks": {
    "board": [
      {"id": "T2", "title": "Second", "status": "open"},
      {"id": "T1", "title": "First", "status": "done", "description": "from description"}
    ]
  }
}
`
}

// InvalidStateJSON returns a hive state with duplicate ids and an absolute avatar
func InvalidStateJSON() string {
	return `{
  "meta": {"schema": "solarflow.hive_state.v1", "schemaVersion": 1, "updatedAt": "2024-03-01T12:00:00Z"},
  "world": {"max_minions": 5},
  "minions": {
    "roster": [
      {"id": "atlas"},
      {"id": "ATLAS", "avatar_url": "https://cdn.example.com/a.png"}
    ]
  }
}
`
}
