package systems

import (
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/game"
)

// OscillatorDirection 振荡器当前方向
type OscillatorDirection int

const (
	// OscillatorFalling offset 每帧减少 Speed（初始状态）
	OscillatorFalling OscillatorDirection = iota
	// OscillatorRising offset 每帧增加 Speed
	OscillatorRising
)

// String 返回方向名称
func (d OscillatorDirection) String() string {
	if d == OscillatorRising {
		return "rising"
	}
	return "falling"
}

// OscillatorDriverSystem 在 [Lower, Upper] 之间来回推动 offset 的内置驱动器
//
// 每帧依次执行：
//  1. Rising 且 offset > Upper 时转为 Falling
//  2. Falling 且 offset < Lower 时转为 Rising
//  3. 按当前方向步进 Speed
//
// 步长与帧时长无关。初始方向为 Falling，所以从 0 开始时
// 第一帧得到 -Speed，第二帧反向并回到 0。
type OscillatorDriverSystem struct {
	state *game.OffsetState

	Speed float64
	Lower float64
	Upper float64

	direction OscillatorDirection
}

// NewOscillatorDriverSystem 使用默认参数（speed=0.002, lower=0, upper=1）创建振荡器
func NewOscillatorDriverSystem(state *game.OffsetState) *OscillatorDriverSystem {
	return &OscillatorDriverSystem{
		state:     state,
		Speed:     config.DefaultDriverSpeed,
		Lower:     config.DefaultDriverLower,
		Upper:     config.DefaultDriverUpper,
		direction: OscillatorFalling,
	}
}

// NewOscillatorDriverFromConfig 根据驱动器配置创建振荡器
func NewOscillatorDriverFromConfig(state *game.OffsetState, cfg config.DriverConfig) *OscillatorDriverSystem {
	s := NewOscillatorDriverSystem(state)
	s.Speed = cfg.Speed
	s.Lower = cfg.Lower
	s.Upper = cfg.UpperBound()
	return s
}

// Direction 返回当前方向
func (s *OscillatorDriverSystem) Direction() OscillatorDirection {
	return s.direction
}

// Update 推进一帧，deltaTime 不参与计算
func (s *OscillatorDriverSystem) Update(deltaTime float64) {
	offset := s.state.Offset()

	if s.direction == OscillatorRising && offset > s.Upper {
		s.direction = OscillatorFalling
	} else if s.direction == OscillatorFalling && offset < s.Lower {
		s.direction = OscillatorRising
	}

	if s.direction == OscillatorRising {
		s.state.AddOffset(s.Speed)
	} else {
		s.state.AddOffset(-s.Speed)
	}
}

// Describe 调试面板使用的状态描述
func (s *OscillatorDriverSystem) Describe() string {
	return "oscillator " + s.direction.String()
}

// Close 振荡器没有需要释放的资源
func (s *OscillatorDriverSystem) Close() error {
	return nil
}
