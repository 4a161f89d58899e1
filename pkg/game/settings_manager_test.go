package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestStorage 在临时 HOME 下打开 gdata
func openTestStorage(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return manager
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
	if settings.ShowDebug {
		t.Error("ShowDebug: got true, want false")
	}
	if settings.WindowWidth != DefaultWindowWidth || settings.WindowHeight != DefaultWindowHeight {
		t.Errorf("window size: got %dx%d, want %dx%d",
			settings.WindowWidth, settings.WindowHeight, DefaultWindowWidth, DefaultWindowHeight)
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil)

	settings := sm.GetSettings()
	if settings == nil {
		t.Fatal("GetSettings() returned nil in degraded mode")
	}

	sm.SetFullscreen(true)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should not fail: %v", err)
	}
	if sm.GetSettings().Fullscreen {
		t.Error("degraded Load() should reset to defaults")
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	manager := openTestStorage(t, "test_scrollscene_settings")

	sm := NewSettingsManager(manager)
	sm.SetFullscreen(true)
	sm.SetShowDebug(true)
	sm.SetWindowSize(1024, 768)
	sm.SetLastScene("data/scenes/showroom.yaml")
	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// 新实例从存储读取
	sm2 := NewSettingsManager(manager)
	got := sm2.GetSettings()
	if !got.Fullscreen || !got.ShowDebug {
		t.Errorf("flags not persisted: %+v", got)
	}
	if got.WindowWidth != 1024 || got.WindowHeight != 768 {
		t.Errorf("window size = %dx%d, want 1024x768", got.WindowWidth, got.WindowHeight)
	}
	if got.LastScene != "data/scenes/showroom.yaml" {
		t.Errorf("LastScene = %q", got.LastScene)
	}
}

// TestSettingsCorruptedData 损坏的数据回退到默认设置
func TestSettingsCorruptedData(t *testing.T) {
	manager := openTestStorage(t, "test_scrollscene_corrupt")

	if err := manager.SaveObjectProp(settingsObject, settingsProperty, []byte("fullscreen: [")); err != nil {
		t.Fatalf("SaveObjectProp error: %v", err)
	}

	sm := NewSettingsManager(manager)
	if err := sm.Load(); err == nil {
		t.Error("Load() should report corrupted data")
	}
	if sm.GetSettings().Fullscreen {
		t.Error("corrupted settings should fall back to defaults")
	}
}

func TestSetWindowSizeClamp(t *testing.T) {
	sm := NewSettingsManager(nil)

	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"正常", 800, 600, 800, 600},
		{"过小", 100, 50, DefaultWindowWidth, DefaultWindowHeight},
		{"负数", -1, 600, DefaultWindowWidth, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm.SetWindowSize(tt.width, tt.height)
			s := sm.GetSettings()
			if s.WindowWidth != tt.wantW || s.WindowHeight != tt.wantH {
				t.Errorf("SetWindowSize(%d, %d) -> %dx%d, want %dx%d",
					tt.width, tt.height, s.WindowWidth, s.WindowHeight, tt.wantW, tt.wantH)
			}
		})
	}
}
