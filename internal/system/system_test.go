package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDetectWorkers(t *testing.T) {
	workers := DetectWorkers()
	if workers < 1 {
		t.Errorf("Expected at least 1 worker, got %d", workers)
	}
	t.Logf("Detected %d workers", workers)
}

func TestFindLatestScript(t *testing.T) {
	dir := t.TempDir()

	files := []string{"old_script.json", "mid_script.yaml", "new_script.yml"}
	for i, name := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("topic: x"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i-len(files)) * time.Hour)
		os.Chtimes(path, modTime, modTime)
	}
	// Non-script files are ignored.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	latest, err := FindLatestScript(dir)
	if err != nil {
		t.Fatalf("FindLatestScript failed: %v", err)
	}
	if filepath.Base(latest) != "new_script.yml" {
		t.Errorf("Expected new_script.yml, got %s", latest)
	}
}

func TestFindLatestScriptEmptyDir(t *testing.T) {
	if _, err := FindLatestScript(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without scripts")
	}
}
