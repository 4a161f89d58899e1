package scene3d

import (
	"github.com/go-gl/mathgl/mgl64"
)

// MeshKind 网格类型
type MeshKind string

const (
	// MeshBox 长方体，六个面依次循环使用材质
	MeshBox MeshKind = "box"
	// MeshPlane 位于本地 XY 平面的矩形，法线朝 +Z
	MeshPlane MeshKind = "plane"
)

// Mesh 网格句柄
type Mesh struct {
	Kind MeshKind
	// Size 尺寸，plane 只使用 X、Y
	Size      mgl64.Vec3
	Materials []*Material
}

// Ready 所有材质是否已就绪
func (m *Mesh) Ready() bool {
	for _, mat := range m.Materials {
		if !mat.Ready() {
			return false
		}
	}
	return true
}

// Node 持有变换的场景节点
type Node struct {
	Name string

	// Position 实时位置，由平移通道就地修改
	Position mgl64.Vec3
	// Rotation 欧拉角（弧度），按 X、Y、Z 顺序应用
	Rotation mgl64.Vec3
	Scale    float64

	Mesh *Mesh

	disposed bool
}

// NewNode 创建节点
func NewNode(name string, mesh *Mesh) *Node {
	return &Node{
		Name:  name,
		Scale: 1,
		Mesh:  mesh,
	}
}

// Ready 节点及其网格资源是否已就绪
func (n *Node) Ready() bool {
	if n.disposed {
		return false
	}
	return n.Mesh == nil || n.Mesh.Ready()
}

// Materials 返回网格上的所有材质
func (n *Node) Materials() []*Material {
	if n.Mesh == nil {
		return nil
	}
	return n.Mesh.Materials
}

// ModelMatrix 返回本地到世界的变换矩阵
func (n *Node) ModelMatrix() mgl64.Mat4 {
	scale := n.Scale
	if scale == 0 {
		scale = 1
	}
	rotation := mgl64.HomogRotate3DZ(n.Rotation.Z()).
		Mul4(mgl64.HomogRotate3DY(n.Rotation.Y())).
		Mul4(mgl64.HomogRotate3DX(n.Rotation.X()))
	return mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).
		Mul4(rotation).
		Mul4(mgl64.Scale3D(scale, scale, scale))
}

// Dispose 销毁节点及其材质
// 销毁后绑定到该节点的演员在下一帧被安全移除
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	for _, mat := range n.Materials() {
		mat.Dispose()
	}
}

// Disposed 节点是否已销毁
func (n *Node) Disposed() bool {
	return n.disposed
}
