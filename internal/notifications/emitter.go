package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"strive/internal/middleware"
	"strive/internal/models"
	"strive/internal/observability"
	"strive/internal/repository"
)

// Emitter persists notifications and publishes them for real-time delivery.
// Emission is strictly post-commit: services call Emit only after the
// originating write has committed, and a failed emission never propagates
// back into the business operation.
type Emitter struct {
	repo     repository.NotificationRepository
	notifier *Notifier
}

// NewEmitter returns a new Emitter.
func NewEmitter(repo repository.NotificationRepository, notifier *Notifier) *Emitter {
	return &Emitter{repo: repo, notifier: notifier}
}

// Emit stores the notification row and publishes it to the recipient's
// channel. Failures are logged, not returned.
func (e *Emitter) Emit(ctx context.Context, n *models.Notification) {
	if err := e.repo.Create(ctx, n); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to persist notification",
			slog.String("kind", string(n.Kind)),
			slog.Uint64("recipient_id", uint64(n.RecipientID)),
			slog.String("error", err.Error()))
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal notification",
			slog.String("kind", string(n.Kind)),
			slog.String("error", err.Error()))
		return
	}
	if err := e.notifier.PublishUser(ctx, n.RecipientID, string(payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.String("kind", string(n.Kind)),
			slog.Uint64("recipient_id", uint64(n.RecipientID)),
			slog.String("error", err.Error()))
	}

	observability.NotificationsPublished.WithLabelValues(string(n.Kind)).Inc()
}
