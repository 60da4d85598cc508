package structure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shotdeck/shotdeck-agent/internal/template"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	fallback := filepath.Join(t.TempDir(), "Projects")
	return New(Config{FallbackBase: fallback}), fallback
}

func testTemplate() *template.Template {
	return &template.Template{
		Root:          []string{"assets", "editorial", "renders"},
		ShotStructure: []string{"plates", "comp"},
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected directory %s: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", path)
	}
}

func assertAbsent(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err = %v", path, err)
	}
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s error", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("error kind = %s, want %s (err: %v)", got, want, err)
	}
}

func childNames(n *Node) map[string]bool {
	names := make(map[string]bool, len(n.Children))
	for _, c := range n.Children {
		names[c.Name] = true
	}
	return names
}
