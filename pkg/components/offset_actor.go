package components

import (
	"github.com/decker502/scrollscene/pkg/scene3d"
	"github.com/decker502/scrollscene/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// OffsetActorComponent 由共享 offset 驱动的演员
//
// 每帧根据 Window 把 offset 换算成 0~1 的进度，再交给各通道组件。
// 演员之间互不可见，只共享同一个 offset。
type OffsetActorComponent struct {
	Name   string
	Window utils.Window     // 创建后不可修改
	Easing utils.EasingFunc // nil 视为线性

	// Progress 最近一帧计算出的进度，仅供调试显示，不参与下一帧计算
	Progress float64
}

// OpacityChannelComponent 透明度通道
// 启用时每帧把所有材质设置为透明，并令 Opacity = progress
type OpacityChannelComponent struct {
	Enabled   bool
	Materials []*scene3d.Material
}

// TranslationChannelComponent 平移通道
//
// 目标位置 target = End + (Start-End)*progress，
// 即 progress=0 时位于 End，progress=1 时位于 Start；
// 节点每帧向目标逼近 Smoothing 比例的距离。
type TranslationChannelComponent struct {
	Enabled   bool
	Node      *scene3d.Node
	Start     mgl64.Vec3
	End       mgl64.Vec3
	Smoothing float64
}

// Target 返回给定进度下的目标位置
func (t *TranslationChannelComponent) Target(progress float64) mgl64.Vec3 {
	return utils.LerpVec3(t.End, t.Start, progress)
}
