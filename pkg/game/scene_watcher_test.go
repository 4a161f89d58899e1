package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSceneWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("name: a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewSceneWatcher(path)
	if err != nil {
		t.Fatalf("NewSceneWatcher error: %v", err)
	}
	defer w.Close()

	if w.Changed() {
		t.Fatal("no change expected before writing")
	}

	// 其他文件的修改不触发
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("name: b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for !w.Changed() {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not report the change")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSceneWatcherMissingDir(t *testing.T) {
	if _, err := NewSceneWatcher(filepath.Join(t.TempDir(), "nope", "scene.yaml")); err == nil {
		t.Error("watching a missing directory should fail")
	}
}
