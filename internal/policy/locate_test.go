package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindConfigFileNothingPresent(t *testing.T) {
	assert.Equal(t, "", FindConfigFile(t.TempDir()))
}

func TestFindConfigFilePlainName(t *testing.T) {
	dir := t.TempDir()
	expected := filepath.Join(dir, "package-policy.info")
	writeFile(t, expected, "")

	assert.Equal(t, expected, FindConfigFile(dir))
}

func TestFindConfigFileLevelPrecedence(t *testing.T) {
	// package beats project beats repository.
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "repository-policy.info"), "")
	writeFile(t, filepath.Join(dir, "project-policy.info"), "")

	assert.Equal(t, filepath.Join(dir, "project-policy.info"), FindConfigFile(dir))

	writeFile(t, filepath.Join(dir, "package-policy.info"), "")
	assert.Equal(t, filepath.Join(dir, "package-policy.info"), FindConfigFile(dir))
}

func TestFindConfigFileDirBeforeSubdir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".rl-secure", "package-policy.info"), "")

	assert.Equal(t, filepath.Join(dir, ".rl-secure", "package-policy.info"), FindConfigFile(dir))

	writeFile(t, filepath.Join(dir, "package-policy.info"), "")
	assert.Equal(t, filepath.Join(dir, "package-policy.info"), FindConfigFile(dir))
}

func TestFindConfigFileSubdirLevelBeatsTopLevelLowerLevel(t *testing.T) {
	// A package-level file in .rl-secure wins over a project-level file at
	// the top: the level loop is outermost.
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "project-policy.info"), "")
	writeFile(t, filepath.Join(dir, ".rl-secure", "package-policy.info"), "")

	assert.Equal(t, filepath.Join(dir, ".rl-secure", "package-policy.info"), FindConfigFile(dir))
}

func TestFindConfigFileNamingVariants(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"dotfile variant", ".package-policy.info"},
		{"underscore variant", "package_policy.info"},
		{"dotfile underscore variant", ".project_policy.info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			expected := filepath.Join(dir, tt.filename)
			writeFile(t, expected, "")

			assert.Equal(t, expected, FindConfigFile(dir))
		})
	}
}

func TestFindConfigFileIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "package-policy.info"), 0o755))

	assert.Equal(t, "", FindConfigFile(dir))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repository-policy.info")
	writeFile(t, path, `
overrides {
    policies "SQ12345" {
        enabled false
    }
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.DisabledPolicies, "SQ12345")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.info"))
	assert.Error(t, err)
}
