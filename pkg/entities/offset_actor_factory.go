package entities

import (
	"errors"
	"fmt"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/scene3d"
	"github.com/decker502/scrollscene/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrRenderableNotReady 启用了通道但节点或材质尚未就绪
// 调用方应保留该绑定，在之后的帧重试
var ErrRenderableNotReady = errors.New("renderable not ready")

// OffsetActorSpec 创建演员所需的参数
type OffsetActorSpec struct {
	Name   string
	Window utils.Window
	Easing utils.EasingFunc // nil 表示线性

	Opacity     bool // 启用透明度通道
	Translation bool // 启用平移通道

	Node      *scene3d.Node
	Start     mgl64.Vec3
	End       mgl64.Vec3
	Smoothing float64 // 0 表示使用默认值 0.1
}

// NewOffsetActorEntity 创建一个由 offset 驱动的演员实体
// 参数:
//   - em: EntityManager 实例
//   - spec: 演员参数，Window 必须满足 Min < Max
//
// 返回:
//   - 实体ID
//   - utils.ErrDegenerateWindow: 窗口无效
//   - ErrRenderableNotReady: 启用的通道所需的节点/材质尚未就绪
//
// 两个通道都关闭的演员仍会被创建，它每帧读取 offset 但不修改任何东西。
func NewOffsetActorEntity(em *ecs.EntityManager, spec OffsetActorSpec) (ecs.EntityID, error) {
	if err := spec.Window.Validate(); err != nil {
		return 0, fmt.Errorf("actor %q: %w", spec.Name, err)
	}

	smoothing := spec.Smoothing
	if smoothing == 0 {
		smoothing = config.DefaultSmoothing
	}
	if smoothing < 0 || smoothing > 1 {
		return 0, fmt.Errorf("actor %q: smoothing must be in (0, 1], got %v", spec.Name, smoothing)
	}

	if spec.Translation && !nodeReady(spec.Node) {
		return 0, fmt.Errorf("actor %q translation channel: %w", spec.Name, ErrRenderableNotReady)
	}
	if spec.Opacity {
		if !nodeReady(spec.Node) {
			return 0, fmt.Errorf("actor %q opacity channel: %w", spec.Name, ErrRenderableNotReady)
		}
		for _, mat := range spec.Node.Materials() {
			if mat.Disposed() || !mat.Ready() {
				return 0, fmt.Errorf("actor %q material %q: %w", spec.Name, mat.Name, ErrRenderableNotReady)
			}
		}
	}

	easing := spec.Easing
	if easing == nil {
		easing, _ = utils.LookupEasing(utils.DefaultEasing)
	}

	id := em.CreateEntity()

	ecs.AddComponent(em, id, &components.OffsetActorComponent{
		Name:   spec.Name,
		Window: spec.Window,
		Easing: easing,
	})

	opacity := &components.OpacityChannelComponent{Enabled: spec.Opacity}
	if spec.Opacity {
		// 复制切片，之后网格材质列表的变化不影响已绑定的通道
		opacity.Materials = append([]*scene3d.Material(nil), spec.Node.Materials()...)
	}
	ecs.AddComponent(em, id, opacity)

	translation := &components.TranslationChannelComponent{
		Enabled:   spec.Translation,
		Start:     spec.Start,
		End:       spec.End,
		Smoothing: smoothing,
	}
	if spec.Translation {
		translation.Node = spec.Node
	}
	ecs.AddComponent(em, id, translation)

	return id, nil
}

func nodeReady(node *scene3d.Node) bool {
	return node != nil && node.Ready()
}
