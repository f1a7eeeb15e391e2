package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/fathima-sithara/quote-chat/internal/models"
)

// Broadcaster fans an event out to every live realtime connection.
type Broadcaster interface {
	Broadcast(ev models.Event)
}

// Publisher mirrors broadcast events onto a Kafka topic for external
// consumers. It does not participate in client fan-out.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
	}
}

func (p *Publisher) Publish(ev models.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("event marshal failed")
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.Type),
		Value: data,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		log.Warn().Err(err).Str("type", string(ev.Type)).Msg("event mirror publish failed")
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Tee broadcasts to the hub and mirrors to Kafka. Mirror failures never
// affect fan-out.
type Tee struct {
	hub  Broadcaster
	prod *Publisher
}

func NewTee(hub Broadcaster, prod *Publisher) *Tee {
	return &Tee{hub: hub, prod: prod}
}

func (t *Tee) Broadcast(ev models.Event) {
	t.hub.Broadcast(ev)
	t.prod.Publish(ev)
}
