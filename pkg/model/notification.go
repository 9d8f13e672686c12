package model

import "time"

type Notification struct {
	ID      string      `json:"id,omitempty" bson:"_id,omitempty"`
	Title   string      `json:"title" bson:"title"`
	Message string      `json:"msg" bson:"msg"`
	To      []Recipient `json:"to" bson:"to"`
	Date    time.Time   `json:"date" bson:"date"`
}

type Recipient struct {
	User string `json:"user" bson:"user"`
	Seen bool   `json:"seen" bson:"seen"`
}

func (n *Notification) Recipient(userID string) *Recipient {
	for i := range n.To {
		if n.To[i].User == userID {
			return &n.To[i]
		}
	}
	return nil
}

// NotificationEvent is the payload published to the notification event feed.
type NotificationEvent struct {
	NotificationID string    `json:"notification_id"`
	Title          string    `json:"title"`
	Message        string    `json:"msg"`
	Recipients     []string  `json:"recipients"`
	Date           time.Time `json:"date"`
}
