package workflow

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"cloud.google.com/go/pubsub"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SettlementEvent is published once a transaction is fully paid.
type SettlementEvent struct {
	CorrelationId     string                   `json:"correlation_id"`
	TransactionId     int                      `json:"transaction_id"`
	TransactionNumber string                   `json:"transaction_number"`
	TransactionType   models.TransactionType   `json:"transaction_type"`
	Status            models.TransactionStatus `json:"status"`
	PaymentMethod     models.PaymentMethod     `json:"payment_method"`
	TotalPrice        decimal.Decimal          `json:"total_price"`
	PaidTotal         decimal.Decimal          `json:"paid_total"`
	SettledAt         time.Time                `json:"settled_at"`
	SettledById       int                      `json:"settled_by_id"`
}

type SettlementPublisher interface {
	PublishSettlement(ctx context.Context, event SettlementEvent) error
}

// PubSubPublisher sends settlement events to a Pub/Sub topic.
type PubSubPublisher struct {
	topic *pubsub.Topic
}

func NewPubSubPublisher(client *pubsub.Client, topicName string) *PubSubPublisher {
	return &PubSubPublisher{topic: client.Topic(topicName)}
}

func (p *PubSubPublisher) PublishSettlement(ctx context.Context, event SettlementEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event":          "transaction.settled",
			"correlation_id": event.CorrelationId,
		},
	})
	_, err = res.Get(ctx)
	return err
}

// Stop flushes pending messages.
func (p *PubSubPublisher) Stop() {
	p.topic.Stop()
}

// LogPublisher only logs settlements, used when Pub/Sub is not configured.
type LogPublisher struct {
	logger logrus.FieldLogger
}

func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishSettlement(ctx context.Context, event SettlementEvent) error {
	p.logger.WithFields(logrus.Fields{
		"correlation_id":     event.CorrelationId,
		"transaction_id":     event.TransactionId,
		"transaction_number": event.TransactionNumber,
		"status":             event.Status,
	}).Info("transaction settled")
	return nil
}
