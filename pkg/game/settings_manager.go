package game

import (
	"fmt"
	"log"

	"github.com/decker502/scrollscene/pkg/utils"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 窗口尺寸限制
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
	minWindowSize       = 320
)

// ViewerSettings 查看器设置
// 注意：只保存查看器偏好，从不保存动画状态（offset 每次启动都从 0 开始）
type ViewerSettings struct {
	// 显示设置
	Fullscreen   bool `yaml:"fullscreen"`   // 启动时是否全屏
	WindowWidth  int  `yaml:"windowWidth"`  // 窗口宽度
	WindowHeight int  `yaml:"windowHeight"` // 窗口高度

	// 调试设置
	ShowDebug bool `yaml:"showDebug"` // 是否显示调试信息（offset、各演员进度）

	// LastScene 上次打开的场景文件
	LastScene string `yaml:"lastScene"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		Fullscreen:   false,
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
		ShowDebug:    false,
	}
}

// SettingsManager 设置管理器
// 负责查看器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *ViewerSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 加载失败不是致命错误，使用默认设置并记录警告。
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm
}

// OpenSettingsStorage 打开 gdata 存储
// 失败时返回 nil 和错误，调用方可以继续以降级模式运行
func OpenSettingsStorage(appName string) (*gdata.Manager, error) {
	if err := utils.EnsureStorageDir(appName); err != nil {
		return nil, err
	}
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings storage: %w", err)
	}
	return manager, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或数据不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 以默认值为底，缺失字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.WindowWidth = clampWindowSize(loaded.WindowWidth, DefaultWindowWidth)
	loaded.WindowHeight = clampWindowSize(loaded.WindowHeight, DefaultWindowHeight)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetFullscreen 设置全屏模式
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetShowDebug 设置调试信息开关
func (sm *SettingsManager) SetShowDebug(enabled bool) {
	sm.settings.ShowDebug = enabled
}

// SetWindowSize 设置窗口尺寸，过小的值会被修正
func (sm *SettingsManager) SetWindowSize(width, height int) {
	sm.settings.WindowWidth = clampWindowSize(width, DefaultWindowWidth)
	sm.settings.WindowHeight = clampWindowSize(height, DefaultWindowHeight)
}

// SetLastScene 记录最近打开的场景
func (sm *SettingsManager) SetLastScene(path string) {
	sm.settings.LastScene = path
}

// clampWindowSize 小于最小尺寸时回退到默认值
func clampWindowSize(size, fallback int) int {
	if size < minWindowSize {
		return fallback
	}
	return size
}
