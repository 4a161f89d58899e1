package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decker502/scrollscene/pkg/scenes"
)

const appSceneYAML = `
name: app-test
actors:
  - name: table
    mesh: {kind: box, size: [2, 1, 1]}
    window: {min: 0, max: 1}
    translation: false
`

// newTestApp 在临时 HOME 下创建应用，避免写入真实的设置目录
func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))

	if cfg.ScenePath == "" {
		cfg.ScenePath = filepath.Join(t.TempDir(), "scene.yaml")
		if err := os.WriteFile(cfg.ScenePath, []byte(appSceneYAML), 0644); err != nil {
			t.Fatal(err)
		}
	}

	a, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp error: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewApp_LoadsScene(t *testing.T) {
	a := newTestApp(t, Config{})

	scene, ok := a.GetSceneManager().GetCurrentScene().(*scenes.OffsetScene)
	if !ok {
		t.Fatalf("current scene = %T, want *scenes.OffsetScene", a.GetSceneManager().GetCurrentScene())
	}
	if scene.Name() != "app-test" {
		t.Errorf("scene name = %q", scene.Name())
	}
	if got := a.settingsManager.GetSettings().LastScene; got != a.ScenePath() {
		t.Errorf("LastScene = %q, want %q", got, a.ScenePath())
	}

	if err := a.Update(); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if scene.Frame() != 1 {
		t.Errorf("scene frame = %d, want 1", scene.Frame())
	}
}

func TestNewApp_InvalidScene(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := NewApp(Config{ScenePath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Error("expected error for a missing scene file")
	}
}

func TestNewApp_DriverOverrideValidated(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "scene.yaml")
	os.WriteFile(path, []byte(appSceneYAML), 0644)

	// mqtt 驱动器缺少地址时在连接之前就被拒绝
	if _, err := NewApp(Config{ScenePath: path, Driver: "mqtt"}); err == nil {
		t.Error("expected error for mqtt driver without url")
	}
}

func TestApp_ToggleDebug(t *testing.T) {
	a := newTestApp(t, Config{})
	scene := a.GetSceneManager().GetCurrentScene().(*scenes.OffsetScene)

	a.toggleDebug()
	if !a.settingsManager.GetSettings().ShowDebug || !scene.DebugVisible() {
		t.Error("debug overlay should be visible after toggle")
	}

	a.toggleDebug()
	if a.settingsManager.GetSettings().ShowDebug || scene.DebugVisible() {
		t.Error("debug overlay should be hidden after second toggle")
	}
}

func TestApp_ReloadScene(t *testing.T) {
	a := newTestApp(t, Config{})
	old := a.GetSceneManager().GetCurrentScene().(*scenes.OffsetScene)

	updated := appSceneYAML + `
  - name: chair
    mesh: {kind: box, size: [1, 1, 1]}
    window: {min: 0.5, max: 1}
    opacity: true
    translation: false
`
	if err := os.WriteFile(a.ScenePath(), []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}
	a.reloadScene()

	current := a.GetSceneManager().GetCurrentScene().(*scenes.OffsetScene)
	if current == old {
		t.Fatal("scene should be replaced")
	}
	if current.Node("chair") == nil {
		t.Error("reloaded scene should contain the new actor")
	}
	for _, node := range old.Nodes() {
		if !node.Disposed() {
			t.Errorf("old node %q should be disposed", node.Name)
		}
	}

	// 写入无效内容时保留当前场景
	os.WriteFile(a.ScenePath(), []byte("name: broken\n"), 0644)
	a.reloadScene()
	if a.GetSceneManager().GetCurrentScene() != current {
		t.Error("failed reload should keep the current scene")
	}
}
