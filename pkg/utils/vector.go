package utils

import "github.com/go-gl/mathgl/mgl64"

// LerpVec3 三维向量线性插值，t=0 返回 a，t=1 返回 b
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// ApproachVec3 将 current 向 target 移动剩余距离的 factor 比例
// 每帧调用一次即为指数逼近，结果只会无限接近 target
func ApproachVec3(current, target mgl64.Vec3, factor float64) mgl64.Vec3 {
	return current.Add(target.Sub(current).Mul(factor))
}
