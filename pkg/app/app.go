// Package app 提供查看器应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/game"
	"github.com/decker502/scrollscene/pkg/scenes"
	"github.com/decker502/scrollscene/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// DefaultScenePath 未指定场景时加载的内置场景
const DefaultScenePath = "data/scenes/showroom.yaml"

// settingsAppName gdata 存储使用的应用名
const settingsAppName = "scrollscene"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ScenePath 场景文件，为空时使用上次打开的场景或 DefaultScenePath
	ScenePath string
	// Watch 监听场景文件，修改后自动重新加载
	Watch bool

	// Driver 覆盖场景文件中的驱动器类型（oscillator / mqtt），为空则不覆盖
	Driver    string
	MQTTURL   string
	MQTTTopic string
}

// debugToggler 支持切换调试面板的场景
type debugToggler interface {
	SetDebugVisible(visible bool)
}

// App 是查看器应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager    *game.SceneManager
	settingsManager *game.SettingsManager
	watcher         *game.SceneWatcher

	scenePath string
	verbose   bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化查看器应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	// 设置存储失败时以降级模式运行（仅内存设置）
	storage, err := game.OpenSettingsStorage(settingsAppName)
	if err != nil {
		log.Printf("[App] Warning: %v (settings will not be saved)", err)
	}
	settingsManager := game.NewSettingsManager(storage)
	settings := settingsManager.GetSettings()

	resourceManager := game.NewResourceManager()

	sceneManager := game.NewSceneManager()
	sceneManager.SetSceneFactory(func(scenePath string) (game.Scene, error) {
		sceneCfg, err := config.LoadSceneConfig(scenePath)
		if err != nil {
			return nil, err
		}
		if err := sceneCfg.OverrideDriver(cfg.Driver, cfg.MQTTURL, cfg.MQTTTopic); err != nil {
			return nil, err
		}
		return scenes.NewOffsetScene(sceneCfg, resourceManager, scenes.Options{
			ShowDebug: settingsManager.GetSettings().ShowDebug,
		})
	})

	scenePath := cfg.ScenePath
	if scenePath == "" {
		scenePath = settings.LastScene
	}
	if scenePath == "" {
		scenePath = DefaultScenePath
	}

	log.Printf("[App] Starting scene: %s", scenePath)
	if err := sceneManager.LoadScene(scenePath); err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", scenePath, err)
	}

	settingsManager.SetLastScene(scenePath)
	if err := settingsManager.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	a := &App{
		sceneManager:    sceneManager,
		settingsManager: settingsManager,
		scenePath:       scenePath,
		verbose:         cfg.Verbose,
	}

	if cfg.Watch && !utils.IsMobile() {
		a.startWatcher(scenePath)
	}

	return a, nil
}

// startWatcher 监听磁盘上的场景文件；仅存在于嵌入资源中的场景无法监听
func (a *App) startWatcher(scenePath string) {
	if _, err := os.Stat(scenePath); err != nil {
		log.Printf("[App] Warning: cannot watch %s: %v", scenePath, err)
		return
	}
	watcher, err := game.NewSceneWatcher(scenePath)
	if err != nil {
		log.Printf("[App] Warning: %v", err)
		return
	}
	a.watcher = watcher
	log.Printf("[App] Watching %s for changes", watcher.Path())
}

// ApplyWindowSettings 在 RunGame 之前应用保存的窗口设置
func (a *App) ApplyWindowSettings() {
	if utils.IsMobile() {
		return
	}
	settings := a.settingsManager.GetSettings()
	ebiten.SetWindowSize(settings.WindowWidth, settings.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(settings.Fullscreen)
}

// Update 更新查看器逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			settings := a.settingsManager.GetSettings()
			ebiten.SetWindowSize(settings.WindowWidth, settings.WindowHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", settings.WindowWidth, settings.WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	// F3 切换调试面板
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		a.toggleDebug()
	}

	if a.watcher != nil && a.watcher.Changed() {
		a.reloadScene()
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settingsManager.SetFullscreen(false)
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
	} else {
		// 记录窗口尺寸，退出全屏时恢复
		w, h := ebiten.WindowSize()
		a.settingsManager.SetWindowSize(w, h)
		ebiten.SetFullscreen(true)
		a.settingsManager.SetFullscreen(true)
	}
	if err := a.settingsManager.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

func (a *App) toggleDebug() {
	visible := !a.settingsManager.GetSettings().ShowDebug
	a.settingsManager.SetShowDebug(visible)
	if scene, ok := a.sceneManager.GetCurrentScene().(debugToggler); ok {
		scene.SetDebugVisible(visible)
	}
	if err := a.settingsManager.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// reloadScene 重新加载场景文件；失败时保留当前场景
func (a *App) reloadScene() {
	log.Printf("[App] Scene file changed, reloading %s", a.scenePath)
	if err := a.sceneManager.LoadScene(a.scenePath); err != nil {
		log.Printf("[App] Warning: reload failed, keeping current scene: %v", err)
	}
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// Layout 逻辑屏幕与窗口同尺寸，投影矩阵按实际宽高比计算
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Close 保存窗口设置并释放场景
// 在 ebiten.RunGame 返回后调用
func (a *App) Close() {
	if !ebiten.IsFullscreen() {
		w, h := ebiten.WindowSize()
		a.settingsManager.SetWindowSize(w, h)
	}
	if err := a.settingsManager.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	if a.watcher != nil {
		a.watcher.Close()
	}
	a.sceneManager.Close()
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// ScenePath 返回当前场景文件路径
func (a *App) ScenePath() string {
	return a.scenePath
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
