package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/scrollscene/pkg/app"
	"github.com/decker502/scrollscene/pkg/embedded"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	scenePath := flag.String("scene", "", "场景文件路径，默认使用上次打开的场景或 "+app.DefaultScenePath)
	watch := flag.Bool("watch", false, "场景文件修改后自动重新加载")
	driver := flag.String("driver", "", "覆盖场景中的驱动器类型: oscillator 或 mqtt")
	mqttURL := flag.String("mqtt-url", "", "MQTT broker 地址，如 tcp://localhost:1883")
	mqttTopic := flag.String("mqtt-topic", "", "接收 offset 的 MQTT 主题")
	flag.Parse()

	// 初始化嵌入资源
	embedded.Init(assetsFS, dataFS)

	viewer, err := app.NewApp(app.Config{
		Verbose:   *verbose,
		ScenePath: *scenePath,
		Watch:     *watch,
		Driver:    *driver,
		MQTTURL:   *mqttURL,
		MQTTTopic: *mqttTopic,
	})
	if err != nil {
		// 非 verbose 模式下日志已被丢弃，致命错误仍需输出
		log.SetOutput(os.Stderr)
		log.Fatalf("初始化失败: %v", err)
	}
	defer viewer.Close()

	viewer.ApplyWindowSettings()
	ebiten.SetWindowTitle("scrollscene")

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
