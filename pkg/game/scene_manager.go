package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 场景工厂函数类型
// 根据场景文件路径创建场景，避免 game 包依赖 scenes 包
type SceneFactory func(scenePath string) (Scene, error)

// SceneManager manages which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene to the provided scene.
// The previous scene is disposed if it implements Disposable.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene != nil && sm.currentScene != scene {
		if d, ok := sm.currentScene.(Disposable); ok {
			d.Dispose()
		}
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadScene 通过工厂函数加载场景并切换
// 加载失败时保留当前场景
func (sm *SceneManager) LoadScene(scenePath string) error {
	log.Printf("[SceneManager] 加载场景: %s", scenePath)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] 错误: SceneFactory 未设置")
		return errNoSceneFactory
	}

	newScene, err := sm.sceneFactory(scenePath)
	if err != nil {
		log.Printf("[SceneManager] 错误: 无法创建场景 %s: %v", scenePath, err)
		return err
	}

	sm.SwitchTo(newScene)
	log.Printf("[SceneManager] 成功切换到场景: %s", scenePath)
	return nil
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

// Close disposes the active scene.
func (sm *SceneManager) Close() {
	sm.SwitchTo(nil)
}
