package policy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rl-gate/rl-gate/pkg/shared/files"
)

// FindConfigFile auto-detects a policy config file under searchDir, checking
// naming conventions in order of precedence: package before project before
// repository level, the directory itself before the .rl-secure subdirectory,
// and the plain name before the dotfile variant, with both `-policy.info` and
// `_policy.info` suffixes. Returns "" when nothing matches.
func FindConfigFile(searchDir string) string {
	levels := []string{"package", "project", "repository"}
	subdirs := []string{"", ".rl-secure"}
	prefixes := []string{"", "."}

	for _, level := range levels {
		for _, subdir := range subdirs {
			base := searchDir
			if subdir != "" {
				base = filepath.Join(searchDir, subdir)
			}
			if info, err := os.Stat(base); err != nil || !info.IsDir() {
				continue
			}
			for _, prefix := range prefixes {
				names := []string{
					prefix + level + "-policy.info",
					prefix + level + "_policy.info",
				}
				for _, name := range names {
					candidate := filepath.Join(base, name)
					if err := files.ValidatePath(candidate); err == nil {
						return candidate
					}
				}
			}
		}
	}
	return ""
}

// LoadConfig reads and parses the policy config file at path.
func LoadConfig(path string) (*PolicyConfig, error) {
	if err := files.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("policy config: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy config %q: %w", path, err)
	}
	return ParseConfig(string(data)), nil
}
