package scenes

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/decker502/scrollscene/internal/remote"
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/entities"
	"github.com/decker502/scrollscene/pkg/game"
	"github.com/decker502/scrollscene/pkg/scene3d"
	"github.com/decker502/scrollscene/pkg/systems"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// DriverFactory 根据驱动器配置创建驱动器
type DriverFactory func(state *game.OffsetState, cfg config.DriverConfig) (systems.OffsetDriver, error)

// Options 场景创建选项
type Options struct {
	// Driver 为 nil 时使用 NewDriver
	Driver DriverFactory
	// Headless 不创建渲染相关的系统，用于命令行工具和测试
	Headless bool
	// ShowDebug 初始是否显示调试面板
	ShowDebug bool
}

// NewDriver 默认的驱动器工厂：oscillator 使用内置振荡器，mqtt 连接远程 broker
func NewDriver(state *game.OffsetState, cfg config.DriverConfig) (systems.OffsetDriver, error) {
	switch cfg.Type {
	case config.DriverOscillator:
		return systems.NewOscillatorDriverFromConfig(state, cfg), nil
	case config.DriverMQTT:
		source, err := remote.DialMQTT(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("failed to start mqtt driver: %w", err)
		}
		return systems.NewRemoteOffsetDriverSystem(state, source), nil
	default:
		return nil, fmt.Errorf("unknown driver type %q", cfg.Type)
	}
}

// pendingBinding 等待节点就绪的演员
type pendingBinding struct {
	cfg  config.ActorConfig
	node *scene3d.Node
}

// OffsetScene 由单个 offset 驱动的 3D 场景
//
// 帧内执行顺序由 FrameScheduler 保证：
//  1. driver   (PriorityDriver)   写入 offset
//  2. bindings (PriorityActors-1) 绑定贴图已加载完成的演员
//  3. actors   (PriorityActors)   把 offset 应用到所有演员
//  4. cleanup  (PriorityLate)     移除已失效的演员
//
// 所有订阅都在 Draw 之前完成。
type OffsetScene struct {
	name string

	entityManager   *ecs.EntityManager
	scheduler       *game.FrameScheduler
	state           *game.OffsetState
	resourceManager *game.ResourceManager

	driver       systems.OffsetDriver
	actorSystem  *systems.OffsetActorSystem
	renderSystem *systems.RenderSystem
	debugOverlay *systems.DebugOverlaySystem

	nodes         []*scene3d.Node
	pending       []pendingBinding
	subscriptions []*game.Subscription

	preloadCtx    context.Context
	cancelPreload context.CancelFunc
	disposed      bool
}

// LoadOffsetScene 从场景文件创建场景
func LoadOffsetScene(path string, rm *game.ResourceManager, opts Options) (*OffsetScene, error) {
	cfg, err := config.LoadSceneConfig(path)
	if err != nil {
		return nil, err
	}
	return NewOffsetScene(cfg, rm, opts)
}

// NewOffsetScene 根据已校验的配置创建场景
func NewOffsetScene(cfg *config.SceneConfig, rm *game.ResourceManager, opts Options) (*OffsetScene, error) {
	s := &OffsetScene{
		name:            cfg.Name,
		entityManager:   ecs.NewEntityManager(),
		scheduler:       game.NewFrameScheduler(),
		state:           game.NewOffsetState(),
		resourceManager: rm,
	}

	newDriver := opts.Driver
	if newDriver == nil {
		newDriver = NewDriver
	}
	driver, err := newDriver(s.state, cfg.Driver)
	if err != nil {
		return nil, err
	}
	s.driver = driver

	for _, actorCfg := range cfg.Actors {
		node, err := entities.BuildNode(actorCfg)
		if err != nil {
			s.driver.Close()
			return nil, err
		}
		s.nodes = append(s.nodes, node)
		entities.NewRenderableEntity(s.entityManager, node)
		s.pending = append(s.pending, pendingBinding{cfg: actorCfg, node: node})
	}

	s.actorSystem = systems.NewOffsetActorSystem(s.entityManager, s.state)
	s.debugOverlay = systems.NewDebugOverlaySystem(s.entityManager, s.state, s.driver)
	s.debugOverlay.Visible = opts.ShowDebug

	if !opts.Headless {
		background, err := config.ParseColor(cfg.Background)
		if err != nil {
			s.driver.Close()
			return nil, err
		}
		s.renderSystem = systems.NewRenderSystem(s.entityManager, cameraFromConfig(cfg.Camera), background)
	}

	if paths := entities.TexturePaths(s.nodes); len(paths) > 0 && rm != nil {
		s.preloadCtx, s.cancelPreload = context.WithCancel(context.Background())
		rm.PreloadTextures(s.preloadCtx, paths)
	}

	s.subscriptions = []*game.Subscription{
		s.scheduler.Subscribe("driver", game.PriorityDriver, s.driver.Update),
		s.scheduler.Subscribe("bindings", game.PriorityActors-1, s.resolvePendingBindings),
		s.scheduler.Subscribe("actors", game.PriorityActors, s.actorSystem.Update),
		s.scheduler.Subscribe("cleanup", game.PriorityLate, s.removeMarkedEntities),
	}

	// 无需贴图的演员立即绑定
	s.resolvePendingBindings(0)

	log.Printf("[OffsetScene] Scene %q ready: %d actors, %d waiting for resources", s.name, len(cfg.Actors), len(s.pending))
	return s, nil
}

func cameraFromConfig(cfg config.CameraConfig) scene3d.Camera {
	cam := scene3d.DefaultCamera()
	cam.Position = mgl64.Vec3(*cfg.Position)
	cam.Target = mgl64.Vec3(*cfg.Target)
	cam.Fov = cfg.Fov
	cam.Near = cfg.Near
	cam.Far = cfg.Far
	cam.Zoom = cfg.Zoom
	return cam
}

// resolvePendingBindings 尝试创建尚未就绪的演员
func (s *OffsetScene) resolvePendingBindings(deltaTime float64) {
	if len(s.pending) == 0 {
		return
	}
	if s.resourceManager != nil {
		s.resourceManager.PollLoaded()
	}

	remaining := s.pending[:0]
	for _, binding := range s.pending {
		if binding.node.Disposed() {
			continue
		}
		s.bindTextures(binding.node)

		spec, err := entities.ActorSpecFromConfig(binding.cfg, binding.node)
		if err == nil {
			_, err = entities.NewOffsetActorEntity(s.entityManager, spec)
		}
		switch {
		case err == nil:
		case errors.Is(err, entities.ErrRenderableNotReady):
			remaining = append(remaining, binding)
		default:
			log.Printf("[OffsetScene] Warning: dropping actor %q: %v", binding.cfg.Name, err)
		}
	}
	s.pending = remaining
}

// bindTextures 绑定已加载的贴图；加载失败的贴图退化为纯色材质
func (s *OffsetScene) bindTextures(node *scene3d.Node) {
	if s.resourceManager == nil {
		return
	}
	if entities.BindTextures(node, s.resourceManager.GetImage) {
		return
	}
	var requeue []string
	for _, mat := range node.Materials() {
		if mat.Ready() {
			continue
		}
		if err := s.resourceManager.LoadError(mat.TexturePath); err != nil {
			log.Printf("[OffsetScene] Warning: material %q falls back to flat color: %v", mat.Name, err)
			mat.TexturePath = ""
			continue
		}
		// 预加载被其他场景取消后既不在加载中也没有结果，需要重新请求
		if !s.resourceManager.IsPending(mat.TexturePath) {
			requeue = append(requeue, mat.TexturePath)
		}
	}
	if len(requeue) > 0 && s.preloadCtx != nil {
		s.resourceManager.PreloadTextures(s.preloadCtx, requeue)
	}
}

func (s *OffsetScene) removeMarkedEntities(deltaTime float64) {
	s.entityManager.RemoveMarkedEntities()
}

// Update 推进一帧
func (s *OffsetScene) Update(deltaTime float64) {
	if s.disposed {
		return
	}
	s.scheduler.Tick(deltaTime)

	if len(s.pending) > 0 {
		s.debugOverlay.Status = fmt.Sprintf("waiting for %d actors", len(s.pending))
	} else {
		s.debugOverlay.Status = ""
	}
}

// Draw 绘制场景
func (s *OffsetScene) Draw(screen *ebiten.Image) {
	if s.disposed || s.renderSystem == nil {
		return
	}
	s.renderSystem.Draw(screen)
	s.debugOverlay.Draw(screen)
}

// Dispose 释放场景：取消订阅、停止贴图预加载、销毁节点并关闭驱动器
func (s *OffsetScene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	for _, sub := range s.subscriptions {
		sub.Unsubscribe()
	}
	s.scheduler.Clear()

	if s.cancelPreload != nil {
		s.cancelPreload()
	}

	for _, node := range s.nodes {
		node.Dispose()
	}
	for _, id := range s.entityManager.GetEntitiesWith() {
		s.entityManager.DestroyEntity(id)
	}
	s.entityManager.RemoveMarkedEntities()
	s.pending = nil

	if err := s.driver.Close(); err != nil {
		log.Printf("[OffsetScene] Warning: closing driver: %v", err)
	}
	log.Printf("[OffsetScene] Scene %q disposed", s.name)
}

// Name 场景名称
func (s *OffsetScene) Name() string {
	return s.name
}

// Offset 当前 offset
func (s *OffsetScene) Offset() float64 {
	return s.state.Offset()
}

// Frame 已执行的帧数
func (s *OffsetScene) Frame() uint64 {
	return s.scheduler.Frame()
}

// EntityManager 返回场景的实体管理器
func (s *OffsetScene) EntityManager() *ecs.EntityManager {
	return s.entityManager
}

// Node 按名称查找节点
func (s *OffsetScene) Node(name string) *scene3d.Node {
	for _, node := range s.nodes {
		if node.Name == name {
			return node
		}
	}
	return nil
}

// Nodes 返回所有节点，按配置顺序排列
func (s *OffsetScene) Nodes() []*scene3d.Node {
	return s.nodes
}

// PendingCount 等待绑定的演员数量
func (s *OffsetScene) PendingCount() int {
	return len(s.pending)
}

// SetDebugVisible 显示或隐藏调试面板
func (s *OffsetScene) SetDebugVisible(visible bool) {
	s.debugOverlay.Visible = visible
}

// DebugVisible 调试面板是否可见
func (s *OffsetScene) DebugVisible() bool {
	return s.debugOverlay.Visible
}
