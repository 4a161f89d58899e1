package game

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// SceneWatcher 监听场景文件的修改
//
// fsnotify 在自己的 goroutine 中投递事件，SceneWatcher 把它们合并成
// 一个 "已修改" 标记，帧循环通过 Changed() 非阻塞地读取。
// 监听的是文件所在目录，以兼容编辑器 "写临时文件再重命名" 的保存方式。
type SceneWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	changed chan struct{}
	done    chan struct{}
}

// NewSceneWatcher 开始监听 path
func NewSceneWatcher(path string) (*SceneWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scene path %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	w := &SceneWatcher{
		watcher: watcher,
		path:    absPath,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()

	log.Printf("[SceneWatcher] Watching %s", absPath)
	return w, nil
}

func (w *SceneWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// 合并多次事件，帧循环只需要知道 "有变化"
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[SceneWatcher] Warning: %v", err)
		}
	}
}

// Path 返回被监听文件的绝对路径
func (w *SceneWatcher) Path() string {
	return w.path
}

// Changed 自上次调用以来文件是否被修改，不阻塞
func (w *SceneWatcher) Changed() bool {
	select {
	case <-w.changed:
		return true
	default:
		return false
	}
}

// Close 停止监听
func (w *SceneWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
