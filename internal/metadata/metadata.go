package metadata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
)

// prefixToFile routes a policy id to the metadata file that documents it.
var prefixToFile = map[string]string{
	"SQ12": "licenses.json",
	"SQ14": "windows.json",
	"SQ18": "linux.json",
	"SQ20": "signatures.json",
	"SQ25": "integrity.json",
	"SQ30": "threats.json",
	"SQ31": "vulnerabilities.json",
	"SQ34": "secrets.json",
	"SQ40": "containers.json",
	"TH":   "hunting.json",
}

// PolicyMetadata is the human-readable documentation for one policy id.
type PolicyMetadata struct {
	Label       string
	Description string
	Steps       []string
	RLLevel     int
}

// metadata file wire schema: policy id -> localized documentation.
type metadataEntry struct {
	Policy struct {
		Localization []struct {
			Language    string `json:"language"`
			Label       string `json:"label"`
			Description string `json:"description"`
			Steps       []struct {
				Content string `json:"content"`
			} `json:"steps"`
		} `json:"localization"`
	} `json:"policy"`
	Quality struct {
		RLLevel int `json:"rl-level"`
	} `json:"quality"`
}

// LoadFromDir loads metadata for the given policy ids from JSON files in a
// local metadata directory. Missing files and unknown ids are skipped, not
// errors: enrichment is best-effort.
func LoadFromDir(policyIDs []string, dir string, logger hclog.Logger) map[string]PolicyMetadata {
	result := map[string]PolicyMetadata{}
	for filename, pids := range groupByFile(policyIDs) {
		data, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			logger.Debug("metadata file not readable, skipping", "file", filename, "error", err)
			continue
		}
		mergeMetadata(result, data, pids, logger)
	}
	return result
}

// Fetch loads metadata for the given policy ids from a metadata bundle served
// over HTTP, one GET per needed file under baseURL. Non-200 responses are
// skipped the same way missing local files are.
func Fetch(policyIDs []string, baseURL string, client *resty.Client, logger hclog.Logger) (map[string]PolicyMetadata, error) {
	result := map[string]PolicyMetadata{}
	for filename, pids := range groupByFile(policyIDs) {
		resp, err := client.R().Get(fmt.Sprintf("%s/%s", baseURL, filename))
		if err != nil {
			return result, fmt.Errorf("fetch metadata %q: %w", filename, err)
		}
		if resp.StatusCode() != http.StatusOK {
			logger.Debug("metadata file not available, skipping", "file", filename, "status", resp.StatusCode())
			continue
		}
		mergeMetadata(result, resp.Body(), pids, logger)
	}
	return result, nil
}

// fileForPolicy returns the metadata filename for a policy id, or "" when the
// id matches no known prefix.
func fileForPolicy(policyID string) string {
	for prefix, filename := range prefixToFile {
		if len(policyID) >= len(prefix) && policyID[:len(prefix)] == prefix {
			return filename
		}
	}
	return ""
}

func groupByFile(policyIDs []string) map[string][]string {
	files := map[string][]string{}
	for _, pid := range policyIDs {
		if filename := fileForPolicy(pid); filename != "" {
			files[filename] = append(files[filename], pid)
		}
	}
	for _, pids := range files {
		sort.Strings(pids)
	}
	return files
}

// mergeMetadata decodes one metadata file and records the en-US localization
// for each requested policy id found in it.
func mergeMetadata(result map[string]PolicyMetadata, data []byte, policyIDs []string, logger hclog.Logger) {
	var entries map[string]metadataEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("malformed metadata file, skipping", "error", err)
		return
	}

	for _, pid := range policyIDs {
		entry, ok := entries[pid]
		if !ok {
			continue
		}
		for _, loc := range entry.Policy.Localization {
			if loc.Language != "en-US" {
				continue
			}
			meta := PolicyMetadata{
				Label:       loc.Label,
				Description: loc.Description,
				RLLevel:     entry.Quality.RLLevel,
			}
			for _, step := range loc.Steps {
				if step.Content != "" {
					meta.Steps = append(meta.Steps, step.Content)
				}
			}
			result[pid] = meta
			break
		}
	}
}
