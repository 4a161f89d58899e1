package game

// OffsetReader 只读的 offset 访问接口
// 演员和渲染系统只持有该接口，无法修改 offset
type OffsetReader interface {
	Offset() float64
}

// OffsetState 场景内唯一的 offset 状态
//
// 每个场景创建一个实例，以指针形式在驱动器和演员之间共享，从不复制。
// 所有访问都发生在单线程帧循环内，因此不加锁；
// 每帧只有一个写入者（当前激活的驱动器）。
type OffsetState struct {
	offset float64
}

// NewOffsetState 创建 offset 为 0 的状态
func NewOffsetState() *OffsetState {
	return &OffsetState{}
}

// Offset 返回当前 offset
func (s *OffsetState) Offset() float64 {
	return s.offset
}

// SetOffset 设置 offset
func (s *OffsetState) SetOffset(v float64) {
	s.offset = v
}

// AddOffset 在当前 offset 上累加
func (s *OffsetState) AddOffset(delta float64) {
	s.offset += delta
}
