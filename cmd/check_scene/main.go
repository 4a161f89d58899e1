// Package main 校验场景文件
//
// Usage:
//
//	go run ./cmd/check_scene [scene.yaml ...]
//
// 不带参数时校验 data/scenes/ 下的所有场景。
// 除了配置本身，还会解码每个引用的贴图；任一文件失败时退出码为 1。
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/embedded"
	"github.com/decker502/scrollscene/pkg/game"
)

func main() {
	flag.Parse()
	log.SetOutput(io.Discard)

	embedded.Init(os.DirFS("."), os.DirFS("."))

	paths := flag.Args()
	if len(paths) == 0 {
		matches, err := embedded.Glob("data/scenes/*.yaml")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		paths = matches
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "No scene files found")
		os.Exit(1)
	}

	failed := 0
	for _, path := range paths {
		if err := checkScene(path); err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s\n", path)
	}

	if failed > 0 {
		fmt.Printf("%d of %d scene files failed\n", failed, len(paths))
		os.Exit(1)
	}
}

func checkScene(path string) error {
	cfg, err := config.LoadSceneConfig(path)
	if err != nil {
		return err
	}

	for _, actor := range cfg.Actors {
		if actor.Mesh.Texture == "" {
			continue
		}
		data, err := game.ReadResource(actor.Mesh.Texture)
		if err != nil {
			return fmt.Errorf("actor %q texture: %w", actor.Name, err)
		}
		img, err := game.DecodeTexture(bytes.NewReader(data), game.MaxTextureSize)
		if err != nil {
			return fmt.Errorf("actor %q texture %s: %w", actor.Name, actor.Mesh.Texture, err)
		}
		b := img.Bounds()
		fmt.Printf("     %s: %s %dx%d\n", actor.Name, actor.Mesh.Texture, b.Dx(), b.Dy())
	}
	return nil
}
