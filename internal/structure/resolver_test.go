package structure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolve_WritableBase(t *testing.T) {
	base := t.TempDir()
	r := NewResolver(filepath.Join(t.TempDir(), "fallback"), nil)

	res, err := r.Resolve(base)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Base != base || res.UsedFallback {
		t.Errorf("Resolve() = %+v, want base %s without fallback", res, base)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("probe left %d entries behind", len(entries))
	}
}

func TestResolve_CreatesMissingBaseRecursively(t *testing.T) {
	base := filepath.Join(t.TempDir(), "a", "b", "c")
	r := NewResolver("", nil)

	res, err := r.Resolve(base)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.UsedFallback {
		t.Error("UsedFallback = true, want false")
	}
	assertDir(t, base)

	if _, err := r.Resolve(base); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
}

func TestResolve_MarkerNameUsesClock(t *testing.T) {
	base := t.TempDir()
	// A directory squatting on the marker name makes the probe fail.
	mustMkdir(t, filepath.Join(base, ".write_test_42"))

	fallback := filepath.Join(t.TempDir(), "Projects")
	r := NewResolver(fallback, nil)
	r.now = func() time.Time { return time.Unix(0, 42) }

	res, err := r.Resolve(base)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.UsedFallback {
		t.Error("UsedFallback = false, want true")
	}
}

func TestResolve_FallsBackWhenBaseUnusable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	mustWriteFile(t, blocker)
	requested := filepath.Join(blocker, "projects")

	fallback := filepath.Join(t.TempDir(), "home", "Projects")
	r := NewResolver(fallback, nil)

	res, err := r.Resolve(requested)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.UsedFallback {
		t.Fatal("UsedFallback = false, want true")
	}
	if res.Base != fallback {
		t.Errorf("Base = %s, want %s", res.Base, fallback)
	}
	if res.Reason == nil {
		t.Error("Reason = nil, want probe error")
	}
	assertDir(t, fallback)
}

func TestResolve_FallbackExhausted(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	mustWriteFile(t, blocker)

	requested := filepath.Join(blocker, "projects")
	fallback := filepath.Join(blocker, "Projects")
	r := NewResolver(fallback, nil)

	_, err := r.Resolve(requested)
	assertKind(t, err, KindFallbackExhausted)

	msg := err.Error()
	if !strings.Contains(msg, requested) || !strings.Contains(msg, fallback) {
		t.Errorf("error %q should name %s and %s", msg, requested, fallback)
	}
}

func TestResolve_NoFallbackConfigured(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	mustWriteFile(t, blocker)

	_, err := NewResolver("", nil).Resolve(filepath.Join(blocker, "x"))
	assertKind(t, err, KindFallbackExhausted)
}
