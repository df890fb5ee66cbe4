// Package notify delivers lead notifications by email, either inline or
// through a redis stream drained by the notify-worker command.
package notify

import (
	"context"
	"time"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/mail"
)

// EventType names a notification
type EventType string

const (
	EventLeadCreated EventType = "lead_created"
	EventLeadLost    EventType = "lead_lost"
)

// template returns the mail template rendered for the event
func (t EventType) template() string {
	switch t {
	case EventLeadLost:
		return mail.TemplateLeadLost
	default:
		return mail.TemplateLeadCreated
	}
}

// Event is one notification with its recipients already resolved
type Event struct {
	Type       EventType        `json:"type"`
	Lead       *database.Lead   `json:"lead"`
	ChangedBy  string           `json:"changedBy,omitempty"`
	Recipients []mail.Recipient `json:"recipients"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Queue accepts events for delivery
type Queue interface {
	Publish(ctx context.Context, ev *Event) error
}

// Mailer is the part of mail.Mailer the notifier needs
type Mailer interface {
	Send(ctx context.Context, name string, to mail.Recipient, data map[string]any) error
}

// Notifier is what the lead service calls
type Notifier interface {
	QueueLeadCreationNotification(ctx context.Context, lead *database.Lead) error
	QueueLeadLostNotification(ctx context.Context, lead *database.Lead) error
}
