package systems

import (
	"fmt"
	"strings"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// DebugOverlaySystem 调试面板（F3 切换）
// 显示当前 offset、驱动器状态和每个演员的进度
type DebugOverlaySystem struct {
	entityManager *ecs.EntityManager
	offset        game.OffsetReader
	driver        OffsetDriver

	Visible bool
	// Status 附加的状态行，如贴图加载进度
	Status string
}

// NewDebugOverlaySystem 创建调试面板
func NewDebugOverlaySystem(em *ecs.EntityManager, offset game.OffsetReader, driver OffsetDriver) *DebugOverlaySystem {
	return &DebugOverlaySystem{
		entityManager: em,
		offset:        offset,
		driver:        driver,
	}
}

// Lines 返回面板内容
func (s *DebugOverlaySystem) Lines() []string {
	lines := []string{
		fmt.Sprintf("TPS %.1f  FPS %.1f", ebiten.ActualTPS(), ebiten.ActualFPS()),
		fmt.Sprintf("offset %.4f", s.offset.Offset()),
	}
	if s.driver != nil {
		lines = append(lines, "driver "+s.driver.Describe())
	}
	if s.Status != "" {
		lines = append(lines, s.Status)
	}

	for _, id := range ecs.GetEntitiesWith1[*components.OffsetActorComponent](s.entityManager) {
		actor, _ := ecs.GetComponent[*components.OffsetActorComponent](s.entityManager, id)
		line := fmt.Sprintf("%-12s [%.2f, %.2f] p=%.3f", actor.Name, actor.Window.Min, actor.Window.Max, actor.Progress)

		if ch, ok := ecs.GetComponent[*components.OpacityChannelComponent](s.entityManager, id); ok && ch.Enabled && len(ch.Materials) > 0 {
			line += fmt.Sprintf(" a=%.3f", ch.Materials[0].Opacity)
		}
		if ch, ok := ecs.GetComponent[*components.TranslationChannelComponent](s.entityManager, id); ok && ch.Enabled && ch.Node != nil {
			p := ch.Node.Position
			line += fmt.Sprintf(" pos=(%.2f, %.2f, %.2f)", p.X(), p.Y(), p.Z())
		}
		lines = append(lines, line)
	}
	return lines
}

// Draw 绘制调试面板
func (s *DebugOverlaySystem) Draw(screen *ebiten.Image) {
	if !s.Visible {
		return
	}
	ebitenutil.DebugPrint(screen, strings.Join(s.Lines(), "\n"))
}
