package components

import "github.com/decker502/scrollscene/pkg/scene3d"

// RenderableComponent 需要绘制的场景节点
// 与演员实体分开：节点在贴图加载完成之前就可以被绘制
type RenderableComponent struct {
	Node *scene3d.Node
}
