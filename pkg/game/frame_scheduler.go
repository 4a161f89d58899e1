package game

import (
	"log"
	"sort"
)

// 订阅优先级，数值越小越先执行
const (
	// PriorityDriver offset 驱动器，必须先于所有演员执行
	PriorityDriver = -100
	// PriorityActors 演员更新
	PriorityActors = 0
	// PriorityLate 依赖演员结果的后处理
	PriorityLate = 100
)

// FrameFunc 每帧回调
// dt 为本帧时间（秒），动画规则按帧计算，不依赖 dt
type FrameFunc func(dt float64)

// Subscription 帧回调订阅句柄
type Subscription struct {
	name      string
	priority  int
	seq       uint64
	fn        FrameFunc
	scheduler *FrameScheduler
	active    bool
}

// Name 返回订阅名称
func (s *Subscription) Name() string {
	return s.name
}

// Active 订阅是否仍然有效
func (s *Subscription) Active() bool {
	return s.active
}

// Unsubscribe 取消订阅
//
// 可以在任意时刻调用，包括在 Tick 执行过程中：
// 被取消的回调从下一次调用起不再执行（本帧尚未执行到的也会跳过）。
// 重复调用是安全的。
func (s *Subscription) Unsubscribe() {
	if !s.active {
		return
	}
	s.active = false
	s.scheduler.dirty = true
}

// FrameScheduler 显式的帧回调列表
//
// 回调按 (priority, 注册顺序) 排序执行，同一场景多次运行的顺序完全一致。
// 宿主在绘制之前调用 Tick，保证所有回调都先于渲染执行。
type FrameScheduler struct {
	subscriptions []*Subscription
	nextSeq       uint64
	ticking       bool
	dirty         bool
	frame         uint64
}

// NewFrameScheduler 创建帧调度器
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{
		subscriptions: make([]*Subscription, 0),
	}
}

// Subscribe 注册帧回调
func (fs *FrameScheduler) Subscribe(name string, priority int, fn FrameFunc) *Subscription {
	sub := &Subscription{
		name:      name,
		priority:  priority,
		seq:       fs.nextSeq,
		fn:        fn,
		scheduler: fs,
		active:    true,
	}
	fs.nextSeq++

	if fs.ticking {
		// Tick 过程中注册的回调从下一帧开始执行
		fs.subscriptions = append(fs.subscriptions, sub)
		fs.dirty = true
		return sub
	}

	fs.subscriptions = append(fs.subscriptions, sub)
	fs.sort()
	log.Printf("[FrameScheduler] Subscribed %q (priority=%d)", name, priority)
	return sub
}

// Tick 按顺序执行所有有效回调
func (fs *FrameScheduler) Tick(dt float64) {
	fs.ticking = true
	// 只执行 Tick 开始时已存在的回调
	count := len(fs.subscriptions)
	for i := 0; i < count; i++ {
		sub := fs.subscriptions[i]
		if !sub.active {
			continue
		}
		sub.fn(dt)
	}
	fs.ticking = false
	fs.frame++

	if fs.dirty {
		fs.compact()
	}
}

// Frame 返回已执行的帧数
func (fs *FrameScheduler) Frame() uint64 {
	return fs.frame
}

// Len 返回有效订阅数量
func (fs *FrameScheduler) Len() int {
	n := 0
	for _, sub := range fs.subscriptions {
		if sub.active {
			n++
		}
	}
	return n
}

// Clear 取消所有订阅
func (fs *FrameScheduler) Clear() {
	for _, sub := range fs.subscriptions {
		sub.active = false
	}
	if fs.ticking {
		fs.dirty = true
		return
	}
	fs.subscriptions = fs.subscriptions[:0]
}

func (fs *FrameScheduler) compact() {
	kept := fs.subscriptions[:0]
	for _, sub := range fs.subscriptions {
		if sub.active {
			kept = append(kept, sub)
		}
	}
	// 清理尾部引用，避免持有已取消的回调
	for i := len(kept); i < len(fs.subscriptions); i++ {
		fs.subscriptions[i] = nil
	}
	fs.subscriptions = kept
	fs.sort()
	fs.dirty = false
}

func (fs *FrameScheduler) sort() {
	sort.SliceStable(fs.subscriptions, func(i, j int) bool {
		a, b := fs.subscriptions[i], fs.subscriptions[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.seq < b.seq
	})
}
