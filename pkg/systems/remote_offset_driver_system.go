package systems

import (
	"log"

	"github.com/decker502/scrollscene/internal/remote"
	"github.com/decker502/scrollscene/pkg/game"
)

// OffsetSource 外部 offset 来源
type OffsetSource interface {
	// Drain 非阻塞地取出上一帧以来到达的消息，按到达顺序排列
	Drain() []remote.OffsetMessage
	Describe() string
	Close() error
}

// RemoteOffsetDriverSystem 把外部消息写入 offset 的驱动器
// 同一帧内的多条消息按到达顺序依次应用；没有消息时 offset 保持不变
type RemoteOffsetDriverSystem struct {
	state  *game.OffsetState
	source OffsetSource

	received int
	rejected int
}

// NewRemoteOffsetDriverSystem 创建远程驱动器
func NewRemoteOffsetDriverSystem(state *game.OffsetState, source OffsetSource) *RemoteOffsetDriverSystem {
	return &RemoteOffsetDriverSystem{
		state:  state,
		source: source,
	}
}

// Update 应用本帧收到的所有消息
// 结果不是有限值的消息（NaN、Inf、增量溢出）被丢弃，offset 保持原值
func (s *RemoteOffsetDriverSystem) Update(deltaTime float64) {
	for _, msg := range s.source.Drain() {
		next := msg.Value
		if msg.Relative {
			next = s.state.Offset() + msg.Value
		}
		if !remote.IsFinite(next) {
			s.rejected++
			log.Printf("[RemoteDriver] Warning: rejecting non-finite offset (value=%v relative=%v)", msg.Value, msg.Relative)
			continue
		}
		s.state.SetOffset(next)
		s.received++
	}
}

// Received 已应用的消息总数
func (s *RemoteOffsetDriverSystem) Received() int {
	return s.received
}

// Rejected 因结果不是有限值而被丢弃的消息数
func (s *RemoteOffsetDriverSystem) Rejected() int {
	return s.rejected
}

// Describe 调试面板使用的状态描述
func (s *RemoteOffsetDriverSystem) Describe() string {
	return s.source.Describe()
}

// Close 关闭外部来源
func (s *RemoteOffsetDriverSystem) Close() error {
	return s.source.Close()
}
