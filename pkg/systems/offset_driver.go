package systems

// OffsetDriver 每帧写入 offset 的驱动器
// 一个场景同时只有一个驱动器，它是 offset 唯一的写入者
type OffsetDriver interface {
	Update(deltaTime float64)
	// Describe 返回调试面板显示的状态
	Describe() string
	Close() error
}

var (
	_ OffsetDriver = (*OscillatorDriverSystem)(nil)
	_ OffsetDriver = (*RemoteOffsetDriverSystem)(nil)
)
