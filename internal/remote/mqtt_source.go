// Package remote 从 MQTT 主题接收外部 offset，作为真实输入的适配器。
//
// paho 在自己的 goroutine 中回调消息，这里只负责解析并放入缓冲通道；
// 帧循环通过 Drain 非阻塞地取走本帧之前到达的全部消息。
package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/decker502/scrollscene/pkg/config"
)

const (
	// messageBuffer 两帧之间最多缓存的消息数，超出时丢弃新消息
	messageBuffer  = 256
	connectTimeout = 10 * time.Second
)

var (
	// ErrEmptyPayload 消息体为空
	ErrEmptyPayload = errors.New("empty offset payload")
	// ErrNonFiniteOffset offset 或增量是 NaN / Inf
	ErrNonFiniteOffset = errors.New("offset must be finite")
)

// OffsetMessage 一条 offset 更新
type OffsetMessage struct {
	Value float64
	// Relative 为 true 时 Value 是增量，否则是绝对值
	Relative bool
}

// ParseOffsetMessage 解析消息体
//
// 支持三种格式：
//
//	{"offset": 0.5}   绝对值
//	{"delta": -0.01}  增量
//	0.5               裸数字，绝对值
//
// NaN 和 Inf 在所有格式下都被拒绝。
func ParseOffsetMessage(payload []byte) (OffsetMessage, error) {
	m, err := parseOffsetMessage(payload)
	if err != nil {
		return OffsetMessage{}, err
	}
	if !IsFinite(m.Value) {
		return OffsetMessage{}, fmt.Errorf("invalid offset payload %q: %w", strings.TrimSpace(string(payload)), ErrNonFiniteOffset)
	}
	return m, nil
}

// IsFinite 既不是 NaN 也不是 ±Inf
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseOffsetMessage(payload []byte) (OffsetMessage, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return OffsetMessage{}, ErrEmptyPayload
	}

	if !strings.HasPrefix(text, "{") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return OffsetMessage{}, fmt.Errorf("invalid offset payload %q: %w", text, err)
		}
		return OffsetMessage{Value: v}, nil
	}

	var body struct {
		Offset *float64 `json:"offset"`
		Delta  *float64 `json:"delta"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return OffsetMessage{}, fmt.Errorf("invalid offset payload: %w", err)
	}
	switch {
	case body.Offset != nil && body.Delta != nil:
		return OffsetMessage{}, fmt.Errorf("offset payload sets both offset and delta")
	case body.Offset != nil:
		return OffsetMessage{Value: *body.Offset}, nil
	case body.Delta != nil:
		return OffsetMessage{Value: *body.Delta, Relative: true}, nil
	default:
		return OffsetMessage{}, fmt.Errorf("offset payload has neither offset nor delta")
	}
}

// sessionCounter 进程内已创建的连接数
var sessionCounter atomic.Uint64

// sessionClientID 给配置的 client ID 加上进程号和连接序号
//
// 热重载时新场景会在旧场景释放之前连接；broker 会踢掉使用相同 client ID
// 的旧连接，两个连接互相顶替。每次连接使用不同的 ID 可以避免这种情况。
func sessionClientID(base string) string {
	return fmt.Sprintf("%s-%d-%d", base, os.Getpid(), sessionCounter.Add(1))
}

// MQTTSource 订阅 MQTT 主题的 offset 源
type MQTTSource struct {
	client   mqtt.Client
	topic    string
	messages chan OffsetMessage
	dropped  atomic.Int64
}

// DialMQTT 连接 broker 并订阅主题
// 断线后由 paho 自动重连，重连成功时重新订阅
func DialMQTT(cfg config.MQTTConfig) (*MQTTSource, error) {
	s := newMQTTSource(nil, cfg.Topic)

	options := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(sessionClientID(cfg.ClientID)).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(s.handleOnConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("[RemoteDriver] Warning: connection lost: %v", err)
		})
	s.client = mqtt.NewClient(options)

	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		// 停止仍在进行的连接尝试，否则它的 goroutine 会一直存在
		s.client.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: timed out after %v", cfg.URL, connectTimeout)
	}
	if err := token.Error(); err != nil {
		s.client.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: %w", cfg.URL, err)
	}
	log.Printf("[RemoteDriver] Connected to %s, topic %s", cfg.URL, cfg.Topic)
	return s, nil
}

func newMQTTSource(client mqtt.Client, topic string) *MQTTSource {
	return &MQTTSource{
		client:   client,
		topic:    topic,
		messages: make(chan OffsetMessage, messageBuffer),
	}
}

func (s *MQTTSource) handleOnConnect(client mqtt.Client) {
	if token := client.Subscribe(s.topic, 0, s.handleMessage); token.Wait() && token.Error() != nil {
		log.Printf("[RemoteDriver] Warning: subscribe %s failed: %v", s.topic, token.Error())
	}
}

func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	m, err := ParseOffsetMessage(msg.Payload())
	if err != nil {
		log.Printf("[RemoteDriver] Warning: ignoring message on %s: %v", msg.Topic(), err)
		return
	}

	select {
	case s.messages <- m:
	default:
		s.dropped.Add(1)
	}
}

// Drain 取出当前缓存的全部消息，按到达顺序排列，从不阻塞
func (s *MQTTSource) Drain() []OffsetMessage {
	var out []OffsetMessage
	for {
		select {
		case m := <-s.messages:
			out = append(out, m)
		default:
			return out
		}
	}
}

// Dropped 因缓冲区已满被丢弃的消息数
func (s *MQTTSource) Dropped() int64 {
	return s.dropped.Load()
}

// Describe 调试面板使用的状态描述
func (s *MQTTSource) Describe() string {
	state := "disconnected"
	if s.client != nil && s.client.IsConnectionOpen() {
		state = "connected"
	}
	return fmt.Sprintf("mqtt %s (%s)", s.topic, state)
}

// Close 断开连接
func (s *MQTTSource) Close() error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	return nil
}
