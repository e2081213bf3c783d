package targets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "targets.yaml", `
targets:
  - id: zoo
    name: City Zoo
    record: Animal
    url: https://zoo.example.com/api/animals
    config:
      user_agent: listfetch-test
  - id: raw
    record: json
    url: https://api.example.com/items
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	all := reg.All()
	if len(all) != 2 || all[0].ID != "zoo" || all[1].ID != "raw" {
		t.Fatalf("unexpected targets %#v", all)
	}

	zoo, ok := reg.ByID("zoo")
	if !ok {
		t.Fatalf("expected zoo target")
	}
	if zoo.Record != RecordAnimal {
		t.Fatalf("record kind should be normalized, got %q", zoo.Record)
	}
	if got := Headers(zoo)["User-Agent"]; got != "listfetch-test" {
		t.Fatalf("User-Agent = %q", got)
	}

	raw, _ := reg.ByID("raw")
	if raw.Name != "raw" {
		t.Fatalf("name should default to id, got %q", raw.Name)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "targets.json", `{"targets":[{"id":"zoo","record":"animal","url":"https://zoo.example.com"}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 1 {
		t.Fatalf("expected 1 target")
	}
}

func TestLoadRegistryRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "duplicate", content: `
targets:
  - {id: dup, record: json, url: "https://a.example"}
  - {id: dup, record: json, url: "https://b.example"}
`, wantErr: "duplicate target id"},
		{name: "relative url", content: `
targets:
  - {id: rel, record: json, url: "/animals"}
`, wantErr: "absolute"},
		{name: "missing record", content: `
targets:
  - {id: norec, url: "https://a.example"}
`, wantErr: "record is required"},
		{name: "empty", content: "targets: []\n", wantErr: "no targets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(writeFile(t, "targets.yaml", tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadRegistryEmptyPath(t *testing.T) {
	if _, err := LoadRegistry("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestHeadersSkipsBlankValues(t *testing.T) {
	headers := Headers(Target{Config: map[string]any{
		ConfigAcceptKey:       "application/json",
		ConfigCacheControlKey: "  ",
		ConfigUserAgentKey:    42,
	}})
	if len(headers) != 1 || headers["Accept"] != "application/json" {
		t.Fatalf("unexpected headers %#v", headers)
	}
}
