//go:build !mobile

package utils

import "os"

// MobileEmulateEnv 设置为 1 时桌面端按移动端行为运行（用于本地调试）
const MobileEmulateEnv = "SCROLLSCENE_MOBILE_EMULATE"

// IsMobile 是否以移动端方式运行
// 移动端没有窗口设置和场景文件监听
func IsMobile() bool {
	return os.Getenv(MobileEmulateEnv) == "1"
}
