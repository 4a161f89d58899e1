package scene3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera 透视相机
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	// Fov 垂直视场角（度）
	Fov  float64
	Near float64
	Far  float64
	Zoom float64
}

// DefaultCamera 返回默认相机 (5,5,5) 看向原点
func DefaultCamera() Camera {
	return Camera{
		Position: mgl64.Vec3{5, 5, 5},
		Target:   mgl64.Vec3{0, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		Fov:      45,
		Near:     0.01,
		Far:      2000000,
		Zoom:     1,
	}
}

// ViewProjection 返回给定视口宽高比下的 VP 矩阵
func (c Camera) ViewProjection(width, height int) mgl64.Mat4 {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	// zoom 缩小有效视场角
	fov := 2 * math.Atan(math.Tan(mgl64.DegToRad(c.Fov)/2)/zoom)
	up := c.Up
	if up.Len() == 0 {
		up = mgl64.Vec3{0, 1, 0}
	}
	projection := mgl64.Perspective(fov, aspect, c.Near, c.Far)
	view := mgl64.LookAtV(c.Position, c.Target, up)
	return projection.Mul4(view)
}

// Project 将世界坐标投影到屏幕像素坐标
// 返回的 depth 为 NDC 深度，越大越远；点位于相机后方时 ok 为 false
func Project(viewProjection mgl64.Mat4, p mgl64.Vec3, width, height int) (x, y, depth float64, ok bool) {
	clip := viewProjection.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * float64(width)
	y = (1 - ndc.Y()) / 2 * float64(height)
	return x, y, ndc.Z(), true
}
