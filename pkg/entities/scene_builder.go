package entities

import (
	"fmt"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/scene3d"
	"github.com/decker502/scrollscene/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// BuildNode 根据演员配置创建场景节点及其材质
//
// 带贴图的材质只记录 TexturePath，贴图由场景在加载完成后通过 BindTextures 绑定。
// 启用透明度通道的演员，其材质从完全透明开始。
func BuildNode(cfg config.ActorConfig) (*scene3d.Node, error) {
	mesh := &scene3d.Mesh{Kind: scene3d.MeshKind(cfg.Mesh.Kind)}
	switch mesh.Kind {
	case scene3d.MeshBox:
		if len(cfg.Mesh.Size) != 3 {
			return nil, fmt.Errorf("actor %q: box size needs 3 values", cfg.Name)
		}
		mesh.Size = mgl64.Vec3{cfg.Mesh.Size[0], cfg.Mesh.Size[1], cfg.Mesh.Size[2]}
	case scene3d.MeshPlane:
		if len(cfg.Mesh.Size) != 2 {
			return nil, fmt.Errorf("actor %q: plane size needs 2 values", cfg.Name)
		}
		mesh.Size = mgl64.Vec3{cfg.Mesh.Size[0], cfg.Mesh.Size[1], 0}
	default:
		return nil, fmt.Errorf("actor %q: unknown mesh kind %q", cfg.Name, cfg.Mesh.Kind)
	}

	for _, matCfg := range cfg.Mesh.Materials {
		color, err := config.ParseColor(matCfg.Color)
		if err != nil {
			return nil, fmt.Errorf("actor %q material %q: %w", cfg.Name, matCfg.Name, err)
		}
		emissive, err := config.ParseColor(matCfg.Emissive)
		if err != nil {
			return nil, fmt.Errorf("actor %q material %q: %w", cfg.Name, matCfg.Name, err)
		}

		mat := scene3d.NewMaterial(matCfg.Name, color)
		mat.Emissive = emissive
		mat.EmissiveIntensity = matCfg.EmissiveIntensity
		mat.DoubleSide = cfg.Mesh.DoubleSide
		mat.TexturePath = cfg.Mesh.Texture
		if cfg.OpacityEnabled() {
			mat.Transparent = true
			mat.Opacity = 0
		}
		mesh.Materials = append(mesh.Materials, mat)
	}

	node := scene3d.NewNode(cfg.Name, mesh)
	node.Position = mgl64.Vec3(cfg.Position)
	node.Rotation = mgl64.Vec3(cfg.Rotation)
	node.Scale = cfg.Scale
	return node, nil
}

// ActorSpecFromConfig 把演员配置转换为 OffsetActorSpec
func ActorSpecFromConfig(cfg config.ActorConfig, node *scene3d.Node) (OffsetActorSpec, error) {
	easing, err := utils.LookupEasing(cfg.Easing)
	if err != nil {
		return OffsetActorSpec{}, fmt.Errorf("actor %q: %w", cfg.Name, err)
	}

	spec := OffsetActorSpec{
		Name:        cfg.Name,
		Window:      cfg.Window,
		Easing:      easing,
		Opacity:     cfg.OpacityEnabled(),
		Translation: cfg.TranslationEnabled(),
		Node:        node,
		Smoothing:   cfg.Smoothing,
	}
	if cfg.Start != nil {
		spec.Start = mgl64.Vec3(*cfg.Start)
	}
	if cfg.End != nil {
		spec.End = mgl64.Vec3(*cfg.End)
	}
	return spec, nil
}

// BindTextures 为节点上尚未加载贴图的材质绑定贴图
// lookup 返回 nil 表示贴图仍在加载；所有材质就绪时返回 true
func BindTextures(node *scene3d.Node, lookup func(path string) *ebiten.Image) bool {
	ready := true
	for _, mat := range node.Materials() {
		if mat.Ready() {
			continue
		}
		if img := lookup(mat.TexturePath); img != nil {
			mat.Texture = img
			continue
		}
		ready = false
	}
	return ready
}

// TexturePaths 返回节点所有材质引用的贴图路径（去重）
func TexturePaths(nodes []*scene3d.Node) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, node := range nodes {
		for _, mat := range node.Materials() {
			if mat.TexturePath == "" || seen[mat.TexturePath] {
				continue
			}
			seen[mat.TexturePath] = true
			paths = append(paths, mat.TexturePath)
		}
	}
	return paths
}

// NewRenderableEntity 为节点创建渲染实体
func NewRenderableEntity(em *ecs.EntityManager, node *scene3d.Node) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.RenderableComponent{Node: node})
	return id
}
