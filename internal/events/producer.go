package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ataurwd/vps-backend-server/internal/logger"
)

// Producer publishes envelopes to Kafka without blocking request
// handlers. Publish enqueues onto an inbox channel; a background
// goroutine drains it. A full inbox drops the event with a warning
// rather than stalling a settlement.
type Producer struct {
	writer *kafka.Writer
	inbox  chan kafka.Message
	done   chan struct{}
}

func NewProducer(brokers []string, topic string) *Producer {
	p := &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		inbox: make(chan kafka.Message, 256),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish serializes the envelope and enqueues it keyed by key so
// events for one order keep their order within a partition.
func (p *Producer) Publish(key, eventType string, data any) {
	env := Envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		logger.Log.WithError(err).WithField("type", eventType).Warn("event marshal failed")
		return
	}

	msg := kafka.Message{Key: []byte(key), Value: body}
	select {
	case p.inbox <- msg:
	default:
		logger.Log.WithField("type", eventType).Warn("event inbox full, dropping")
	}
}

func (p *Producer) run() {
	for msg := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			logger.Log.WithError(err).Warn("event publish failed")
		}
		cancel()
	}
	close(p.done)
}

// Close drains the inbox and shuts the writer down.
func (p *Producer) Close() error {
	close(p.inbox)
	<-p.done
	return p.writer.Close()
}
