package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

// Easing Functions (缓动函数)
//
// 缓动函数作用在演员的窗口进度上，输入 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 默认 "linear"，即进度原样传递给各通道。

// EasingFunc 缓动函数签名
type EasingFunc func(t float64) float64

// ErrUnknownEasing 未知的缓动名称
var ErrUnknownEasing = errors.New("unknown easing")

// DefaultEasing 未配置时使用的缓动名称
const DefaultEasing = "linear"

var easings = map[string]EasingFunc{
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"inExpo":     ease.InExpo,
	"outExpo":    ease.OutExpo,
	"inOutExpo":  ease.InOutExpo,
}

// LookupEasing 根据名称查找缓动函数
// 空字符串视为 "linear"，名称不区分大小写
func LookupEasing(name string) (EasingFunc, error) {
	if name == "" {
		name = DefaultEasing
	}
	for key, fn := range easings {
		if strings.EqualFold(key, name) {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownEasing, name, strings.Join(EasingNames(), ", "))
}

// EasingNames 返回所有已注册的缓动名称（排序后）
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
