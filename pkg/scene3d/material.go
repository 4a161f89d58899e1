// Package scene3d 定义宿主渲染器拥有的场景句柄：节点、网格、材质和相机。
//
// 动画系统只持有这些句柄的引用并就地修改（透明度、位置），
// 句柄的创建、纹理加载和销毁都由场景负责。
package scene3d

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Material 材质句柄
type Material struct {
	Name string

	// Color 基础颜色（有纹理时与纹理相乘）
	Color colorful.Color
	// Emissive 自发光颜色，按 EmissiveIntensity 叠加到基础颜色上
	Emissive          colorful.Color
	EmissiveIntensity float64

	// Opacity 不透明度 0.0 ~ 1.0，仅在 Transparent 为 true 时生效
	Opacity     float64
	Transparent bool

	// DoubleSide 背面是否可见
	DoubleSide bool

	// Texture 贴图，nil 表示纯色材质
	Texture *ebiten.Image
	// TexturePath 贴图资源路径，Texture 为 nil 且该字段非空时表示贴图尚未加载
	TexturePath string

	disposed bool
}

// NewMaterial 创建不透明的纯色材质
func NewMaterial(name string, color colorful.Color) *Material {
	return &Material{
		Name:    name,
		Color:   color,
		Opacity: 1,
	}
}

// Ready 材质所需资源是否已就绪
func (m *Material) Ready() bool {
	return m.TexturePath == "" || m.Texture != nil
}

// EffectiveAlpha 渲染时使用的 alpha
func (m *Material) EffectiveAlpha() float64 {
	if !m.Transparent {
		return 1
	}
	if m.Opacity < 0 {
		return 0
	}
	if m.Opacity > 1 {
		return 1
	}
	return m.Opacity
}

// ShadedColor 返回叠加自发光后的颜色
func (m *Material) ShadedColor() colorful.Color {
	c := m.Color
	if m.EmissiveIntensity > 0 {
		c = colorful.Color{
			R: c.R + m.Emissive.R*m.EmissiveIntensity,
			G: c.G + m.Emissive.G*m.EmissiveIntensity,
			B: c.B + m.Emissive.B*m.EmissiveIntensity,
		}
	}
	return c.Clamped()
}

// Dispose 标记材质已销毁，之后不应再被修改
func (m *Material) Dispose() {
	m.disposed = true
	m.Texture = nil
}

// Disposed 材质是否已销毁
func (m *Material) Disposed() bool {
	return m.disposed
}
