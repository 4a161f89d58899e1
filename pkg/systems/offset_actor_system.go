package systems

import (
	"log"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/game"
	"github.com/decker502/scrollscene/pkg/utils"
)

// OffsetActorSystem 每帧把共享 offset 应用到所有演员
//
// 对每个演员：progress = easing(Window.Progress(offset))，然后
//   - 透明度通道：材质 Transparent = true，Opacity = progress
//   - 平移通道：target = End + (Start-End)*progress，
//     节点位置每帧向 target 逼近 Smoothing 比例
//
// 节点或材质已被宿主销毁的演员会被跳过并标记删除，从不修改已销毁的句柄。
type OffsetActorSystem struct {
	entityManager *ecs.EntityManager
	offset        game.OffsetReader
}

// NewOffsetActorSystem 创建演员系统
func NewOffsetActorSystem(em *ecs.EntityManager, offset game.OffsetReader) *OffsetActorSystem {
	return &OffsetActorSystem{
		entityManager: em,
		offset:        offset,
	}
}

// Update 推进一帧
// 平移的逼近比例是每帧常量，deltaTime 不参与计算
func (s *OffsetActorSystem) Update(deltaTime float64) {
	// 每帧只读取一次，保证同一帧内所有演员看到相同的 offset
	offset := s.offset.Offset()

	entities := ecs.GetEntitiesWith1[*components.OffsetActorComponent](s.entityManager)
	for _, id := range entities {
		actor, ok := ecs.GetComponent[*components.OffsetActorComponent](s.entityManager, id)
		if !ok {
			continue
		}
		opacity, _ := ecs.GetComponent[*components.OpacityChannelComponent](s.entityManager, id)
		translation, _ := ecs.GetComponent[*components.TranslationChannelComponent](s.entityManager, id)

		if stale(opacity, translation) {
			log.Printf("[OffsetActorSystem] Actor %q lost its renderable, unregistering", actor.Name)
			s.entityManager.DestroyEntity(id)
			continue
		}

		progress := actor.Window.Progress(offset)
		if actor.Easing != nil {
			progress = actor.Easing(progress)
		}
		actor.Progress = progress

		if opacity != nil && opacity.Enabled {
			applyOpacity(opacity, progress)
		}
		if translation != nil && translation.Enabled {
			applyTranslation(translation, progress)
		}
	}
}

func applyOpacity(ch *components.OpacityChannelComponent, progress float64) {
	for _, mat := range ch.Materials {
		mat.Transparent = true
		mat.Opacity = progress
	}
}

func applyTranslation(ch *components.TranslationChannelComponent, progress float64) {
	target := ch.Target(progress)
	ch.Node.Position = utils.ApproachVec3(ch.Node.Position, target, ch.Smoothing)
}

// stale 启用的通道所引用的句柄是否已被销毁
func stale(opacity *components.OpacityChannelComponent, translation *components.TranslationChannelComponent) bool {
	if translation != nil && translation.Enabled {
		if translation.Node == nil || translation.Node.Disposed() {
			return true
		}
	}
	if opacity != nil && opacity.Enabled {
		for _, mat := range opacity.Materials {
			if mat.Disposed() {
				return true
			}
		}
	}
	return false
}
