package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/decker502/scrollscene/pkg/embedded"
	"github.com/decker502/scrollscene/pkg/utils"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// 驱动器类型
const (
	DriverOscillator = "oscillator" // 内置振荡器，在 lower 与 upper 之间往返
	DriverMQTT       = "mqtt"       // 通过 MQTT 接收外部 offset
)

// 默认值
const (
	DefaultDriverSpeed = 0.002 // 振荡器每帧步长
	DefaultDriverLower = 0.0
	DefaultDriverUpper = 1.0
	DefaultSmoothing   = 0.1 // 平移通道每帧逼近比例
	DefaultBackground  = "#87ceeb"
	DefaultMQTTTopic   = "scrollscene/offset"
	DefaultMQTTClient  = "scrollscene"
)

// Vec3 YAML 中的三维向量，写作 [x, y, z]
type Vec3 [3]float64

// SceneConfig 场景配置文件
type SceneConfig struct {
	Name       string        `yaml:"name"`       // 场景名称
	Background string        `yaml:"background"` // 背景颜色（十六进制或颜色名），默认天蓝色
	Camera     CameraConfig  `yaml:"camera"`     // 相机
	Driver     DriverConfig  `yaml:"driver"`     // offset 驱动器
	Actors     []ActorConfig `yaml:"actors"`     // 演员列表，按声明顺序注册
}

// CameraConfig 相机配置
type CameraConfig struct {
	Position *Vec3   `yaml:"position"` // 默认 [5, 5, 5]
	Target   *Vec3   `yaml:"target"`   // 默认原点
	Fov      float64 `yaml:"fov"`      // 垂直视场角（度），默认 45
	Near     float64 `yaml:"near"`     // 默认 0.01
	Far      float64 `yaml:"far"`      // 默认 2000000
	Zoom     float64 `yaml:"zoom"`     // 默认 1
}

// DriverConfig offset 驱动器配置
type DriverConfig struct {
	Type  string   `yaml:"type"`  // "oscillator"（默认）或 "mqtt"
	Speed float64  `yaml:"speed"` // 振荡器每帧步长，默认 0.002
	Lower float64  `yaml:"lower"` // 低于该值时转为上升，默认 0
	Upper *float64 `yaml:"upper"` // 高于该值时转为下降，默认 1

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig 远程 offset 源配置
type MQTTConfig struct {
	URL      string `yaml:"url"` // 如 tcp://localhost:1883
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"clientID"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ActorConfig 演员配置
type ActorConfig struct {
	Name     string     `yaml:"name"`
	Mesh     MeshConfig `yaml:"mesh"`
	Position Vec3       `yaml:"position"` // 节点初始位置
	Rotation Vec3       `yaml:"rotation"` // 欧拉角（弧度）
	Scale    float64    `yaml:"scale"`    // 默认 1

	Window utils.Window `yaml:"window"` // 动画窗口，要求 min < max

	Opacity     *bool `yaml:"opacity"`     // 透明度通道，默认 false
	Translation *bool `yaml:"translation"` // 平移通道，默认 true

	Start     *Vec3   `yaml:"start"`     // 平移通道 progress=1 时的目标
	End       *Vec3   `yaml:"end"`       // 平移通道 progress=0 时的目标
	Smoothing float64 `yaml:"smoothing"` // 每帧逼近比例，默认 0.1
	Easing    string  `yaml:"easing"`    // 进度缓动，默认 linear
}

// MeshConfig 网格配置
type MeshConfig struct {
	Kind       string    `yaml:"kind"`       // "box" 或 "plane"
	Size       []float64 `yaml:"size"`       // box 为 [x, y, z]，plane 为 [w, h]
	Texture    string    `yaml:"texture"`    // 贴图路径（仅 plane）
	DoubleSide bool      `yaml:"doubleSide"` // 背面是否可见

	Materials []MaterialConfig `yaml:"materials"` // 为空时生成一个默认材质
}

// MaterialConfig 材质配置
type MaterialConfig struct {
	Name              string  `yaml:"name"`
	Color             string  `yaml:"color"`             // 默认白色
	Emissive          string  `yaml:"emissive"`          // 默认黑色
	EmissiveIntensity float64 `yaml:"emissiveIntensity"` // 默认 0
}

// OpacityEnabled 透明度通道是否启用
func (a *ActorConfig) OpacityEnabled() bool {
	return a.Opacity != nil && *a.Opacity
}

// TranslationEnabled 平移通道是否启用
func (a *ActorConfig) TranslationEnabled() bool {
	return a.Translation == nil || *a.Translation
}

// UpperBound 振荡器上界
func (d *DriverConfig) UpperBound() float64 {
	if d.Upper == nil {
		return DefaultDriverUpper
	}
	return *d.Upper
}

// LoadSceneConfig 从YAML文件加载场景配置
//
// 以 "data/" 或 "assets/" 开头的路径优先从嵌入资源读取，其余路径从磁盘读取。
func LoadSceneConfig(path string) (*SceneConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene config file %s: %w", path, err)
	}

	cfg, err := ParseSceneConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid scene config in %s: %w", path, err)
	}
	return cfg, nil
}

// ParseSceneConfig 解析并校验场景配置
func ParseSceneConfig(data []byte) (*SceneConfig, error) {
	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scene YAML: %w", err)
	}

	applySceneDefaults(&cfg)

	if err := validateSceneConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// OverrideDriver 用命令行参数覆盖驱动器配置并重新校验，空字符串表示不覆盖
func (cfg *SceneConfig) OverrideDriver(driverType, mqttURL, mqttTopic string) error {
	if driverType != "" {
		cfg.Driver.Type = driverType
	}
	if mqttURL != "" {
		cfg.Driver.MQTT.URL = mqttURL
	}
	if mqttTopic != "" {
		cfg.Driver.MQTT.Topic = mqttTopic
	}
	if err := validateDriverConfig(&cfg.Driver); err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	return nil
}

func readConfigFile(path string) ([]byte, error) {
	if embedded.IsInitialized() && (strings.HasPrefix(path, "data/") || strings.HasPrefix(path, "assets/")) {
		if data, err := embedded.ReadFile(path); err == nil {
			return data, nil
		}
	}
	return os.ReadFile(path)
}

// applySceneDefaults 为缺失的可选字段设置默认值
func applySceneDefaults(cfg *SceneConfig) {
	if cfg.Background == "" {
		cfg.Background = DefaultBackground
	}

	cam := &cfg.Camera
	if cam.Position == nil {
		cam.Position = &Vec3{5, 5, 5}
	}
	if cam.Target == nil {
		cam.Target = &Vec3{0, 0, 0}
	}
	if cam.Fov == 0 {
		cam.Fov = 45
	}
	if cam.Near == 0 {
		cam.Near = 0.01
	}
	if cam.Far == 0 {
		cam.Far = 2000000
	}
	if cam.Zoom == 0 {
		cam.Zoom = 1
	}

	drv := &cfg.Driver
	if drv.Type == "" {
		drv.Type = DriverOscillator
	}
	if drv.Speed == 0 {
		drv.Speed = DefaultDriverSpeed
	}
	if drv.MQTT.Topic == "" {
		drv.MQTT.Topic = DefaultMQTTTopic
	}
	if drv.MQTT.ClientID == "" {
		drv.MQTT.ClientID = DefaultMQTTClient
	}

	for i := range cfg.Actors {
		actor := &cfg.Actors[i]
		if actor.Scale == 0 {
			actor.Scale = 1
		}
		if actor.Smoothing == 0 {
			actor.Smoothing = DefaultSmoothing
		}
		if actor.Easing == "" {
			actor.Easing = utils.DefaultEasing
		}
		if len(actor.Mesh.Materials) == 0 {
			actor.Mesh.Materials = []MaterialConfig{{Name: actor.Name}}
		}
		for j := range actor.Mesh.Materials {
			mat := &actor.Mesh.Materials[j]
			if mat.Name == "" {
				mat.Name = fmt.Sprintf("%s-%d", actor.Name, j)
			}
			if mat.Color == "" {
				mat.Color = "#ffffff"
			}
			if mat.Emissive == "" {
				mat.Emissive = "#000000"
			}
		}
	}
}

// validateSceneConfig 验证场景配置的完整性和合法性
func validateSceneConfig(cfg *SceneConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("scene name is required")
	}
	if _, err := ParseColor(cfg.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}

	if cfg.Camera.Near <= 0 || cfg.Camera.Far <= cfg.Camera.Near {
		return fmt.Errorf("camera: require 0 < near < far, got near=%v far=%v", cfg.Camera.Near, cfg.Camera.Far)
	}
	if cfg.Camera.Fov <= 0 || cfg.Camera.Fov >= 180 {
		return fmt.Errorf("camera: fov must be in (0, 180), got %v", cfg.Camera.Fov)
	}

	if err := validateDriverConfig(&cfg.Driver); err != nil {
		return fmt.Errorf("driver: %w", err)
	}

	if len(cfg.Actors) == 0 {
		return fmt.Errorf("at least one actor is required")
	}

	seen := make(map[string]bool, len(cfg.Actors))
	for i := range cfg.Actors {
		actor := &cfg.Actors[i]
		if actor.Name == "" {
			return fmt.Errorf("actor %d: name is required", i)
		}
		if seen[actor.Name] {
			return fmt.Errorf("actor %d: duplicate name %q", i, actor.Name)
		}
		seen[actor.Name] = true

		if err := validateActorConfig(actor); err != nil {
			return fmt.Errorf("actor %q: %w", actor.Name, err)
		}
	}
	return nil
}

func validateDriverConfig(drv *DriverConfig) error {
	switch drv.Type {
	case DriverOscillator:
		if drv.Speed <= 0 {
			return fmt.Errorf("speed must be positive, got %v", drv.Speed)
		}
		if drv.Lower >= drv.UpperBound() {
			return fmt.Errorf("require lower < upper, got lower=%v upper=%v", drv.Lower, drv.UpperBound())
		}
	case DriverMQTT:
		if drv.MQTT.URL == "" {
			return fmt.Errorf("mqtt.url is required for the mqtt driver")
		}
	default:
		return fmt.Errorf("unknown driver type %q", drv.Type)
	}
	return nil
}

func validateActorConfig(actor *ActorConfig) error {
	if err := actor.Window.Validate(); err != nil {
		return err
	}

	switch actor.Mesh.Kind {
	case "box":
		if len(actor.Mesh.Size) != 3 || !allPositive(actor.Mesh.Size) {
			return fmt.Errorf("box size must be three positive values, got %v", actor.Mesh.Size)
		}
		if actor.Mesh.Texture != "" {
			return fmt.Errorf("textures are only supported on planes")
		}
	case "plane":
		if len(actor.Mesh.Size) != 2 || !allPositive(actor.Mesh.Size) {
			return fmt.Errorf("plane size must be two positive values, got %v", actor.Mesh.Size)
		}
	default:
		return fmt.Errorf("unknown mesh kind %q (want box or plane)", actor.Mesh.Kind)
	}

	for _, mat := range actor.Mesh.Materials {
		if _, err := ParseColor(mat.Color); err != nil {
			return fmt.Errorf("material %q color: %w", mat.Name, err)
		}
		if _, err := ParseColor(mat.Emissive); err != nil {
			return fmt.Errorf("material %q emissive: %w", mat.Name, err)
		}
		if mat.EmissiveIntensity < 0 {
			return fmt.Errorf("material %q: emissiveIntensity cannot be negative", mat.Name)
		}
	}

	if actor.TranslationEnabled() && (actor.Start == nil || actor.End == nil) {
		return fmt.Errorf("translation is enabled but start/end are missing (set translation: false to disable)")
	}
	if actor.Smoothing <= 0 || actor.Smoothing > 1 {
		return fmt.Errorf("smoothing must be in (0, 1], got %v", actor.Smoothing)
	}
	if _, err := utils.LookupEasing(actor.Easing); err != nil {
		return err
	}
	if actor.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", actor.Scale)
	}
	return nil
}

func allPositive(values []float64) bool {
	for _, v := range values {
		if v <= 0 {
			return false
		}
	}
	return true
}

// namedColors 配置中允许使用的颜色名
var namedColors = map[string]string{
	"white": "#ffffff",
	"black": "#000000",
	"cyan":  "#00ffff",
	"red":   "#ff0000",
	"green": "#00ff00",
	"blue":  "#0000ff",
	"sky":   "#87ceeb",
}

// ParseColor 解析十六进制颜色（#rgb / #rrggbb）或颜色名
func ParseColor(s string) (colorful.Color, error) {
	value := strings.TrimSpace(strings.ToLower(s))
	if hex, ok := namedColors[value]; ok {
		value = hex
	}
	c, err := colorful.Hex(value)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
