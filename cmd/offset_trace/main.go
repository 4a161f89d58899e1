// Package main 以无窗口方式运行场景并逐帧打印 offset 与各演员状态
//
// Usage:
//
//	go run ./cmd/offset_trace [flags]
//
// Flags:
//
//	--scene <path>   场景文件 (default: data/scenes/showroom.yaml)
//	--frames <n>     运行帧数 (default: 600)
//	--every <n>      每隔多少帧输出一次 (default: 30)
//	--verbose        启用详细日志
//
// 贴图在追踪时被忽略，所有演员在第 0 帧即完成绑定，输出与运行环境无关。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/embedded"
	"github.com/decker502/scrollscene/pkg/scenes"
)

var (
	sceneFlag   = flag.String("scene", "data/scenes/showroom.yaml", "Scene file to trace")
	framesFlag  = flag.Int("frames", 600, "Number of frames to run")
	everyFlag   = flag.Int("every", 30, "Print every N frames")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}
	if *everyFlag <= 0 {
		*everyFlag = 1
	}

	// 命令行工具从工作目录读取 data/ 与 assets/
	embedded.Init(os.DirFS("."), os.DirFS("."))

	cfg, err := config.LoadSceneConfig(*sceneFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for i := range cfg.Actors {
		cfg.Actors[i].Mesh.Texture = ""
	}

	scene, err := scenes.NewOffsetScene(cfg, nil, scenes.Options{Headless: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer scene.Dispose()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "frame\toffset\tactor\tprogress\topacity\tposition")

	const deltaTime = 1.0 / 60
	for frame := 1; frame <= *framesFlag; frame++ {
		scene.Update(deltaTime)
		if frame%*everyFlag != 0 {
			continue
		}
		printFrame(w, frame, scene)
	}
	w.Flush()
}

func printFrame(w io.Writer, frame int, scene *scenes.OffsetScene) {
	em := scene.EntityManager()
	for _, id := range ecs.GetEntitiesWith1[*components.OffsetActorComponent](em) {
		actor, _ := ecs.GetComponent[*components.OffsetActorComponent](em, id)

		opacity := "-"
		if ch, ok := ecs.GetComponent[*components.OpacityChannelComponent](em, id); ok && ch.Enabled && len(ch.Materials) > 0 {
			opacity = fmt.Sprintf("%.3f", ch.Materials[0].Opacity)
		}
		position := "-"
		if ch, ok := ecs.GetComponent[*components.TranslationChannelComponent](em, id); ok && ch.Enabled {
			p := ch.Node.Position
			position = fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X(), p.Y(), p.Z())
		}

		fmt.Fprintf(w, "%d\t%.4f\t%s\t%.3f\t%s\t%s\n", frame, scene.Offset(), actor.Name, actor.Progress, opacity, position)
	}
}
