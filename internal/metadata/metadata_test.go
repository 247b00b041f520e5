package metadata

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secretsJSON = []byte(`{
  "SQ34108": {
    "policy": {
      "localization": [
        {
          "language": "de-DE",
          "label": "Falsches Label",
          "description": "nicht verwendet"
        },
        {
          "language": "en-US",
          "label": "Detected PEM private key",
          "description": "A PEM encoded private key was found in the package.",
          "steps": [
            {"content": "Remove the key from the package."},
            {"content": "Rotate the exposed credential."}
          ]
        }
      ]
    },
    "quality": {"rl-level": 3}
  },
  "SQ34101": {
    "policy": {
      "localization": [
        {"language": "fr-FR", "label": "Sans anglais"}
      ]
    }
  }
}`)

func TestFileForPolicy(t *testing.T) {
	tests := []struct {
		policyID string
		expected string
	}{
		{"SQ34108", "secrets.json"},
		{"SQ31101", "vulnerabilities.json"},
		{"SQ12001", "licenses.json"},
		{"TH20001", "hunting.json"},
		{"XX99999", ""},
		{"SQ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.policyID, func(t *testing.T) {
			assert.Equal(t, tt.expected, fileForPolicy(tt.policyID))
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets.json"), secretsJSON, 0o644))

	meta := LoadFromDir([]string{"SQ34108", "SQ34101", "SQ31101"}, dir, hclog.NewNullLogger())

	require.Contains(t, meta, "SQ34108")
	m := meta["SQ34108"]
	assert.Equal(t, "Detected PEM private key", m.Label)
	assert.Equal(t, "A PEM encoded private key was found in the package.", m.Description)
	assert.Equal(t, []string{"Remove the key from the package.", "Rotate the exposed credential."}, m.Steps)
	assert.Equal(t, 3, m.RLLevel)

	// No en-US localization means no metadata for the id.
	assert.NotContains(t, meta, "SQ34101")
	// vulnerabilities.json does not exist in the dir; skipped silently.
	assert.NotContains(t, meta, "SQ31101")
}

func TestLoadFromDirMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets.json"), []byte("not json"), 0o644))

	meta := LoadFromDir([]string{"SQ34108"}, dir, hclog.NewNullLogger())
	assert.Empty(t, meta)
}

func TestLoadFromDirUnknownPrefix(t *testing.T) {
	meta := LoadFromDir([]string{"XX12345"}, t.TempDir(), hclog.NewNullLogger())
	assert.Empty(t, meta)
}

func TestFetch(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if r.URL.Path == "/secrets.json" {
			w.Write(secretsJSON)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resty.New()
	meta, err := Fetch([]string{"SQ34108", "SQ31101"}, server.URL, client, hclog.NewNullLogger())
	require.NoError(t, err)

	require.Contains(t, meta, "SQ34108")
	assert.Equal(t, "Detected PEM private key", meta["SQ34108"].Label)
	// The missing vulnerabilities.json is skipped, not an error.
	assert.NotContains(t, meta, "SQ31101")
	assert.Contains(t, requested, "/secrets.json")
	assert.Contains(t, requested, "/vulnerabilities.json")
}

func TestFetchNoMatchingFiles(t *testing.T) {
	client := resty.New()
	meta, err := Fetch([]string{"XX12345"}, "http://unreachable.invalid", client, hclog.NewNullLogger())

	require.NoError(t, err)
	assert.Empty(t, meta)
}
