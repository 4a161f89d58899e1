//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译。构建前需要把根目录的
// assets/ 和 data/scenes/ 复制到 mobile/ 下：
//
//	cp -r assets mobile/ && mkdir -p mobile/data && cp -r data/scenes mobile/data/
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.scrollscene -o build/android/scrollscene.aar -v ./mobile
//	ebitenmobile bind -target ios -tags mobile -o build/ios/ScrollScene.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/scrollscene/pkg/app"
	"github.com/decker502/scrollscene/pkg/embedded"
)

func init() {
	// assetsFS 和 dataFS 在 embed.go 中声明
	embedded.Init(assetsFS, dataFS)

	// 移动端总是打开内置展厅场景
	cfg := app.Config{
		Verbose:   true,
		ScenePath: app.DefaultScenePath,
	}

	viewer, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	mobile.SetGame(viewer)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
