package utils

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateWindow 窗口区间无效（min >= max 或包含 NaN）
var ErrDegenerateWindow = errors.New("degenerate animation window")

// ClampedProgress 将全局 offset 映射到窗口 [min, max] 内的归一化进度
//
//   - offset < min: 返回 0
//   - offset > max: 返回 1
//   - 其余: 线性归一化 (offset-min)/(max-min)
//
// 调用方需保证 min < max，见 Window.Validate。
func ClampedProgress(offset, min, max float64) float64 {
	if offset < min {
		return 0
	}
	if offset > max {
		return 1
	}
	return (offset - min) / (max - min)
}

// Window 演员的动画窗口，offset 在该区间内时演员处于过渡状态
type Window struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// NewWindow 创建并校验窗口
func NewWindow(min, max float64) (Window, error) {
	w := Window{Min: min, Max: max}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate 校验 Min < Max
func (w Window) Validate() error {
	if math.IsNaN(w.Min) || math.IsNaN(w.Max) || w.Min >= w.Max {
		return fmt.Errorf("%w: min=%v max=%v", ErrDegenerateWindow, w.Min, w.Max)
	}
	return nil
}

// Progress 返回 offset 在窗口内的进度 [0, 1]
func (w Window) Progress(offset float64) float64 {
	return ClampedProgress(offset, w.Min, w.Max)
}
