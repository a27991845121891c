package port

import (
	"context"

	"github.com/MikeRez0/storefront/internal/core/domain"
)

//go:generate mockgen -source=events.go -destination=mock/events.go -package=mock

// EventPublisher hands order lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OrderEvent) error
}

// CommitJournal is an append-only trail of order commit transitions.
type CommitJournal interface {
	Save(ctx context.Context, entry *domain.JournalEntry) error
}
