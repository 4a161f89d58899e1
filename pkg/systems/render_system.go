package systems

import (
	"image"
	"image/color"
	"sort"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/scene3d"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// 固定的方向光与环境光，只用于区分长方体的各个面
var lightDir = mgl64.Vec3{0.4, 1.0, 0.6}.Normalize()

const (
	ambientLight = 0.55
	diffuseLight = 0.45
)

// box 六个面，按 +X -X +Y -Y +Z -Z 排列；顶点逆时针（从面外看）
var boxFaces = [6]struct {
	normal  mgl64.Vec3
	corners [4]mgl64.Vec3
}{
	{mgl64.Vec3{1, 0, 0}, [4]mgl64.Vec3{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}},
	{mgl64.Vec3{-1, 0, 0}, [4]mgl64.Vec3{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}},
	{mgl64.Vec3{0, 1, 0}, [4]mgl64.Vec3{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}},
	{mgl64.Vec3{0, -1, 0}, [4]mgl64.Vec3{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}},
	{mgl64.Vec3{0, 0, 1}, [4]mgl64.Vec3{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
	{mgl64.Vec3{0, 0, -1}, [4]mgl64.Vec3{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}},
}

// plane 位于本地 XY 平面，法线 +Z；UV 的 v 轴向下，与图片坐标一致
var (
	planeCorners = [4]mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
	planeUV      = [4][2]float64{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
)

// ProjectedFace 已投影到屏幕、等待绘制的四边形
type ProjectedFace struct {
	Points   [4][2]float32
	UV       [4][2]float64
	Depth    float64 // 平均 NDC 深度，越大越远
	Color    colorful.Color
	Alpha    float64
	Material *scene3d.Material
}

// RenderSystem 绘制所有 RenderableComponent 节点
//
// 使用画家算法：所有面投影后按深度从远到近排序，用 DrawTriangles 逐个绘制。
// 单面材质做背面剔除；已销毁的节点和完全透明的面被跳过。
type RenderSystem struct {
	entityManager *ecs.EntityManager
	Camera        scene3d.Camera
	Background    colorful.Color

	whiteImage *ebiten.Image
	faces      []ProjectedFace // 复用，避免每帧分配
	vertices   []ebiten.Vertex // 复用
	indices    []uint16        // 复用
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem(em *ecs.EntityManager, camera scene3d.Camera, background colorful.Color) *RenderSystem {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &RenderSystem{
		entityManager: em,
		Camera:        camera,
		Background:    background,
		whiteImage:    white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		faces:         make([]ProjectedFace, 0, 64),
		vertices:      make([]ebiten.Vertex, 0, 4),
		indices:       make([]uint16, 0, 6),
	}
}

// Draw 绘制场景
func (s *RenderSystem) Draw(screen *ebiten.Image) {
	screen.Fill(s.Background)

	bounds := screen.Bounds()
	s.faces = s.CollectFaces(bounds.Dx(), bounds.Dy(), s.faces[:0])
	for i := range s.faces {
		s.drawFace(screen, &s.faces[i])
	}
}

// CollectFaces 投影所有可见面并按从远到近排序，结果追加到 dst
func (s *RenderSystem) CollectFaces(width, height int, dst []ProjectedFace) []ProjectedFace {
	vp := s.Camera.ViewProjection(width, height)

	entities := ecs.GetEntitiesWith1[*components.RenderableComponent](s.entityManager)
	for _, id := range entities {
		renderable, ok := ecs.GetComponent[*components.RenderableComponent](s.entityManager, id)
		if !ok || renderable.Node == nil || renderable.Node.Disposed() || renderable.Node.Mesh == nil {
			continue
		}
		dst = s.appendNodeFaces(dst, renderable.Node, vp, width, height)
	}

	// 稳定排序，深度相同的面保持注册顺序
	sort.SliceStable(dst, func(i, j int) bool {
		return dst[i].Depth > dst[j].Depth
	})
	return dst
}

func (s *RenderSystem) appendNodeFaces(dst []ProjectedFace, node *scene3d.Node, vp mgl64.Mat4, width, height int) []ProjectedFace {
	mesh := node.Mesh
	if len(mesh.Materials) == 0 {
		return dst
	}
	model := node.ModelMatrix()
	half := mesh.Size.Mul(0.5)

	switch mesh.Kind {
	case scene3d.MeshBox:
		for i, face := range boxFaces {
			mat := mesh.Materials[i%len(mesh.Materials)]
			var corners [4]mgl64.Vec3
			for k, c := range face.corners {
				corners[k] = mgl64.Vec3{c.X() * half.X(), c.Y() * half.Y(), c.Z() * half.Z()}
			}
			dst = s.appendFace(dst, model, vp, width, height, corners, face.normal, [4][2]float64{}, mat)
		}
	case scene3d.MeshPlane:
		var corners [4]mgl64.Vec3
		for k, c := range planeCorners {
			corners[k] = mgl64.Vec3{c.X() * half.X(), c.Y() * half.Y(), 0}
		}
		dst = s.appendFace(dst, model, vp, width, height, corners, mgl64.Vec3{0, 0, 1}, planeUV, mesh.Materials[0])
	}
	return dst
}

func (s *RenderSystem) appendFace(
	dst []ProjectedFace,
	model, vp mgl64.Mat4,
	width, height int,
	corners [4]mgl64.Vec3,
	localNormal mgl64.Vec3,
	uv [4][2]float64,
	mat *scene3d.Material,
) []ProjectedFace {
	if mat == nil || mat.Disposed() {
		return dst
	}
	alpha := mat.EffectiveAlpha()
	if alpha <= 0 {
		return dst
	}

	var world [4]mgl64.Vec3
	center := mgl64.Vec3{}
	for k, c := range corners {
		world[k] = mgl64.TransformCoordinate(c, model)
		center = center.Add(world[k])
	}
	center = center.Mul(0.25)

	normal := mgl64.TransformNormal(localNormal, model)
	if normal.Len() > 0 {
		normal = normal.Normalize()
	}
	facing := normal.Dot(s.Camera.Position.Sub(center))
	if facing <= 0 {
		if !mat.DoubleSide {
			return dst
		}
		normal = normal.Mul(-1)
	}

	face := ProjectedFace{
		UV:       uv,
		Alpha:    alpha,
		Material: mat,
	}
	for k, p := range world {
		x, y, depth, ok := scene3d.Project(vp, p, width, height)
		if !ok {
			return dst
		}
		face.Points[k] = [2]float32{float32(x), float32(y)}
		face.Depth += depth / 4
	}

	shade := ambientLight + diffuseLight*max(0, normal.Dot(lightDir))
	c := mat.ShadedColor()
	face.Color = colorful.Color{R: c.R * shade, G: c.G * shade, B: c.B * shade}.Clamped()
	return append(dst, face)
}

func (s *RenderSystem) drawFace(screen *ebiten.Image, face *ProjectedFace) {
	src := s.whiteImage
	srcW, srcH := float32(0), float32(0)
	srcX0, srcY0 := float32(1), float32(1)
	if tex := face.Material.Texture; tex != nil {
		src = tex
		b := tex.Bounds()
		srcW, srcH = float32(b.Dx()), float32(b.Dy())
		srcX0, srcY0 = float32(b.Min.X), float32(b.Min.Y)
	}

	s.vertices = s.vertices[:0]
	for k := 0; k < 4; k++ {
		s.vertices = append(s.vertices, ebiten.Vertex{
			DstX:   face.Points[k][0],
			DstY:   face.Points[k][1],
			SrcX:   srcX0 + float32(face.UV[k][0])*srcW,
			SrcY:   srcY0 + float32(face.UV[k][1])*srcH,
			ColorR: float32(face.Color.R),
			ColorG: float32(face.Color.G),
			ColorB: float32(face.Color.B),
			ColorA: float32(face.Alpha),
		})
	}
	s.indices = append(s.indices[:0], 0, 1, 2, 0, 2, 3)

	op := &ebiten.DrawTrianglesOptions{}
	op.FillRule = ebiten.FillRuleFillAll
	op.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
	screen.DrawTriangles(s.vertices, s.indices, src, op)
}
