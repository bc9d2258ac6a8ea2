// Package events 把账本的变更事件发布到 Redis Pub/Sub，供机器人、看板等外部订阅者使用。
//
// 频道名按实例隔离: guo:{instance}:pot_events。发布是尽力而为的，
// 失败只记录日志，不会影响已经提交并落盘的操作。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 事件类型
const (
	TypePotCreated   = "pot_created"
	TypePotJoined    = "pot_joined"
	TypePotLeft      = "pot_left"
	TypePotFinished  = "pot_finished"
	TypePotEdited    = "pot_edited"
	TypeDemandEdited = "demand_edited"
	TypePotsCleared  = "pots_cleared"
)

const publishTimeout = 2 * time.Second

// Event 是发布到频道上的一条消息。
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// PotEventsChannel 返回实例的事件频道名。
func PotEventsChannel(instance string) string {
	return fmt.Sprintf("guo:%s:pot_events", instance)
}

// Publisher 把事件发布到 Redis。
type Publisher struct {
	rdb     *redis.Client
	channel string
	healthy func() bool
	log     *logger.Logger
	nowFunc func() time.Time
}

// NewPublisher 创建发布器。healthy 为 nil 时视为 Redis 永远可用。
func NewPublisher(rdb *redis.Client, instance string, healthy func() bool, log *logger.Logger) (*Publisher, error) {
	if rdb == nil {
		return nil, fmt.Errorf("Redis客户端不能为空")
	}
	if instance == "" {
		return nil, fmt.Errorf("实例名不能为空")
	}
	return &Publisher{
		rdb:     rdb,
		channel: PotEventsChannel(instance),
		healthy: healthy,
		log:     log,
		nowFunc: time.Now,
	}, nil
}

// Channel 返回发布器使用的频道名。
func (p *Publisher) Channel() string {
	return p.channel
}

// Publish 发布一条事件。Redis 处于降级状态时直接跳过。
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) {
	if p.healthy != nil && !p.healthy() {
		p.log.Debug("Redis不可用，跳过事件发布", "type", eventType)
		return
	}

	ev, err := NewEvent(eventType, payload, p.nowFunc())
	if err != nil {
		p.log.Error("事件序列化失败", "type", eventType, "error", err)
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("事件序列化失败", "type", eventType, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		p.log.Warn("事件发布失败", "type", eventType, "channel", p.channel, "error", err)
		return
	}
	p.log.Debug("事件已发布", "type", eventType, "id", ev.ID)
}

// NewEvent 构造一条带有随机ID的事件。
func NewEvent(eventType string, payload any, at time.Time) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("无法序列化事件内容: %w", err)
	}
	return &Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		At:      at.UTC(),
		Payload: raw,
	}, nil
}

// Subscription 是对事件频道的订阅。
type Subscription struct {
	pubsub *redis.PubSub
	events chan *Event
	errors chan error
	cancel context.CancelFunc
}

// Events 返回解码后的事件。
func (s *Subscription) Events() <-chan *Event { return s.events }

// Errors 返回解码失败的错误。
func (s *Subscription) Errors() <-chan error { return s.errors }

// Close 取消订阅。
func (s *Subscription) Close() error {
	s.cancel()
	return s.pubsub.Close()
}

// Subscribe 订阅实例的事件频道。返回前订阅已经确认生效。
func Subscribe(ctx context.Context, rdb *redis.Client, instance string) (*Subscription, error) {
	pubsub := rdb.Subscribe(ctx, PotEventsChannel(instance))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("无法订阅事件频道: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan *Event, 16),
		errors: make(chan error, 4),
		cancel: cancel,
	}

	go func() {
		defer close(sub.events)
		defer close(sub.errors)
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case sub.errors <- fmt.Errorf("无法解析事件: %w", err):
					default:
					}
					continue
				}
				select {
				case sub.events <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}
