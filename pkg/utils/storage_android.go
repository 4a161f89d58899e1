//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureStorageDir 确保 Android 上的设置目录存在并可写
//
// gdata 在 Android 上把数据写到 /data/data/{package}/{appName}，
// 但不会预先创建该目录。需要在 gdata.Open 之前调用。
func EnsureStorageDir(appName string) error {
	pkg, err := androidPackageName()
	if err != nil {
		return fmt.Errorf("failed to detect Android package: %w", err)
	}

	dir := filepath.Join("/data/data", pkg, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("storage directory %s is not writable: %w", dir, err)
	}
	os.Remove(probe)
	return nil
}

// androidPackageName 从 /proc/self/cmdline 读取包名
func androidPackageName() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}
	// cmdline 以 NUL 分隔参数，包名是第一个
	name := strings.TrimSpace(strings.SplitN(string(data), "\x00", 2)[0])
	if name == "" {
		return "", fmt.Errorf("empty /proc/self/cmdline")
	}
	return name, nil
}
