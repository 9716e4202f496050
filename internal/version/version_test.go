package version

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"valid", write("ok.json", `{"version":"1.2.3"}`), "1.2.3"},
		{"empty version", write("empty.json", `{"version":""}`), fallback},
		{"malformed", write("bad.json", `{version`), fallback},
		{"missing", filepath.Join(dir, "nope.json"), fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loadFile(tt.path).Version; got != tt.want {
				t.Errorf("version = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadPrefersBuildStamp(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "9.9.9"
	if got := Load().Version; got != "9.9.9" {
		t.Errorf("version = %q", got)
	}
}
