package kafka

import (
	"context"

	"unilab/pkg/model"
)

const (
	EventNotificationCreated = "notification.created"
	NotificationSchemaV1     = "1"
)

// publisher is the part of *Producer NotificationPublisher relies on.
type publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// NotificationPublisher turns stored notifications into notification.created
// events on the configured topic.
type NotificationPublisher struct {
	producer publisher
	source   string
}

func NewNotificationPublisher(producer *Producer, source string) *NotificationPublisher {
	return &NotificationPublisher{producer: producer, source: source}
}

func (p *NotificationPublisher) PublishNotification(ctx context.Context, n *model.Notification) error {
	recipients := make([]string, 0, len(n.To))
	for _, r := range n.To {
		recipients = append(recipients, r.User)
	}

	msg, err := NewMessage().
		WithKey(n.ID).
		WithValue(model.NotificationEvent{
			NotificationID: n.ID,
			Title:          n.Title,
			Message:        n.Message,
			Recipients:     recipients,
			Date:           n.Date,
		}).
		WithEventID("").
		WithEventType(EventNotificationCreated).
		WithSchemaVersion(NotificationSchemaV1).
		WithSource(p.source).
		WithTimestamp(n.Date).
		Build()
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, msg)
}
