package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a viewer scene.
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update advances the scene by one frame.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Disposable 是一个可选接口，场景被替换或程序退出时调用 Dispose
//
// 实现此接口的场景需要在 Dispose 中：
//   - 取消所有帧回调订阅
//   - 销毁节点，使绑定的演员不再被更新
//   - 关闭外部连接（例如远程 offset 源）
type Disposable interface {
	Dispose()
}
